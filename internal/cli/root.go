package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentx-labs/monogen/internal/branding"
	"github.com/agentx-labs/monogen/internal/errors"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagVerbose bool
	flagRoot    string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds subprojects and agentic chatbot projects inside a
Poetry-managed Python monorepo and keeps the shared pyproject.toml, Makefile
and CI pipeline in step with every generated unit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version needs no workspace.
		if cmd.Name() == "version" {
			return nil
		}
		return loadEnv(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print diagnostic output to stderr")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "Workspace root (default: discovered from the current directory)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable styled output")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(errors.EUsage, "invalid flags for "+cmd.CommandPath(), err)
	})
}

// Execute runs the root command with build info injected via ldflags and
// returns the process exit code.
func Execute(ctx context.Context, version, commit, date string) int {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run executes the command tree with explicit arguments and streams. Errors
// are printed to errOut with their code.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errors.Print(errOut, err)
		return errors.ExitCode(err)
	}
	return 0
}

// resetFlags restores every flag to its default so Run can be called more
// than once in a process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// usageArgs wraps a positional-argument validator so failures carry E_USAGE.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return errors.Wrap(errors.EUsage, cmd.CommandPath(), err)
		}
		return nil
	}
}
