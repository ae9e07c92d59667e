package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/naming"
	"github.com/agentx-labs/monogen/internal/platform"
	"github.com/agentx-labs/monogen/internal/scaffold"
)

var (
	promptFile string
	promptText string
)

func init() {
	promptSaveCmd.Flags().StringVar(&promptFile, "file", "", "Read the prompt from a file")
	promptSaveCmd.Flags().StringVar(&promptText, "text", "", "Prompt text")
	promptCmd.AddCommand(promptSaveCmd)
	promptCmd.AddCommand(promptShowCmd)
	promptCmd.AddCommand(promptEditCmd)
	rootCmd.AddCommand(promptCmd)
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Manage an agent's system prompt",
}

var promptSaveCmd = &cobra.Command{
	Use:   "save <unit>",
	Short: "Replace a unit's prompt.txt",
	Long: `Replace the system prompt of an existing unit. The text comes from --text,
from --file, or from standard input.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if promptFile != "" && promptText != "" {
			return errors.New(errors.EUsage, "--file and --text are mutually exclusive")
		}
		text := promptText
		switch {
		case promptFile != "":
			data, err := os.ReadFile(promptFile)
			if err != nil {
				return errors.Wrap(errors.EIO, "reading "+promptFile, err)
			}
			text = string(data)
		case !cmd.Flags().Changed("text"):
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return errors.Wrap(errors.EIO, "reading prompt from stdin", err)
			}
			text = string(data)
		}

		path, err := env.generator().SavePrompt(args[0], text)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", relToRoot(path))
		return nil
	},
}

var promptShowCmd = &cobra.Command{
	Use:   "show <unit>",
	Short: "Print a unit's prompt.txt",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := promptPath(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(errors.EIO, "reading "+path, err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var promptEditCmd = &cobra.Command{
	Use:   "edit <unit>",
	Short: "Open a unit's prompt.txt in $EDITOR",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := promptPath(args[0])
		if err != nil {
			return err
		}
		return platform.OpenEditor(cmd.Context(), path)
	},
}

// promptPath returns the prompt file of an existing unit.
func promptPath(raw string) (string, error) {
	slug := naming.Slugify(raw)
	path := filepath.Join(env.unitsDir(), slug, scaffold.PromptFile)
	if _, err := os.Stat(path); err != nil {
		return "", errors.NewWithDetails(errors.EUnknownUnit,
			fmt.Sprintf("unit %q has no %s", slug, scaffold.PromptFile),
			map[string]string{"unit": slug})
	}
	return path, nil
}

func relToRoot(path string) string {
	if rel, err := filepath.Rel(env.root, path); err == nil {
		return rel
	}
	return path
}
