package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/monogen/internal/branding"
	"github.com/agentx-labs/monogen/internal/config"
)

var (
	initName        string
	initDescription string
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Project name for pyproject.toml (default: directory name)")
	initCmd.Flags().StringVar(&initDescription, "description", "", "Project description for pyproject.toml")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a monorepo workspace",
	Long: `Create ` + branding.WorkspaceFile() + ` and, when missing, a root pyproject.toml in the
workspace root: --root, else the nearest directory above with pyproject.toml
or .git, else the current directory. Existing files are kept.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		changes, err := env.generator().InitWorkspace(initName, initDescription)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s workspace at %s\n", render(styleTitle, "Initialized"), env.root)
		printFileChanges(out, changes)

		// Pick up the new workspace file for the rest of this process.
		if err := config.Load(env.root); err != nil {
			return err
		}
		env.found = true
		env.settings = config.Current()
		return nil
	},
}
