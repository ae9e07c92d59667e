package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/monogen/internal/branding"
)

var depDryRun bool

func init() {
	depAddCmd.Flags().BoolVar(&depDryRun, "dry-run", false, "Print the dependency-manager command without running it")
	depCmd.AddCommand(depAddCmd)
	rootCmd.AddCommand(depCmd)
}

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage a unit's dependencies",
}

var depAddCmd = &cobra.Command{
	Use:   "add <unit> <package> [version]",
	Short: "Add a package to a unit's dependency group",
	Long: `Add a package to the dependency group of an existing unit by running the
configured dependency manager (poetry by default) in the workspace root.

The version may be an exact version, a PEP 440 specifier (==, ~=, >=,<) or a
Poetry caret or tilde constraint.

Examples:
  ` + branding.CLIName() + ` dep add data_pipeline pandas
  ` + branding.CLIName() + ` dep add weather httpx "^0.27"
  ` + branding.CLIName() + ` dep add weather requests "==2.32.3" --dry-run`,
	Args: usageArgs(cobra.RangeArgs(2, 3)),
	RunE: func(cmd *cobra.Command, args []string) error {
		var version string
		if len(args) == 3 {
			version = args[2]
		}
		registrar, err := env.registrar(cmd, depDryRun)
		if err != nil {
			return err
		}
		inv, err := registrar.Register(cmd.Context(), args[0], args[1], version)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if inv.DryRun {
			fmt.Fprintf(out, "Would run: %s\n", inv)
			fmt.Fprintf(out, "       in: %s\n", inv.Dir)
			return nil
		}
		fmt.Fprintf(out, "%s %s to %s\n", render(styleTitle, "Added"), inv.Package, render(styleTitle, inv.Unit))
		return nil
	},
}
