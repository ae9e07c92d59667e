package cli

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/monogen/internal/branding"
	"github.com/agentx-labs/monogen/internal/config"
	"github.com/agentx-labs/monogen/internal/ledger"
	"github.com/agentx-labs/monogen/internal/workspace"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the workspace, shared files and tools",
	Long: `Report the resolved workspace root, whether each shared file exists and
parses, whether every unit manifest is valid and whether the dependency
manager is on PATH. Problems are reported, not fixed.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		runWorkspaceCheck(out)
		runLedgerCheck(out)
		runUnitCheck(out)
		runToolCheck(out)
		return nil
	},
}

func runWorkspaceCheck(w io.Writer) {
	fmt.Fprintln(w, "Workspace check:")
	if env.found {
		fmt.Fprintf(w, "  %s root %s\n", status("OK"), env.root)
	} else {
		fmt.Fprintf(w, "  %s no %s or pyproject.toml found; using %s\n", status("WARN"), branding.WorkspaceFile(), env.root)
	}
	if ok, _ := fileExists(env, config.WorkspaceFilePath(env.root)); ok {
		fmt.Fprintf(w, "  %s %s present\n", status("OK"), branding.WorkspaceFile())
	} else {
		fmt.Fprintf(w, "  %s %s missing (run '%s init')\n", status("INFO"), branding.WorkspaceFile(), branding.CLIName())
	}
}

func runLedgerCheck(w io.Writer) {
	fmt.Fprintln(w, "Shared files check:")
	g := env.generator()
	for _, kind := range []ledger.Kind{ledger.KindManifest, ledger.KindBuild, ledger.KindCI} {
		l, err := g.Ledger(kind)
		if err != nil {
			fmt.Fprintf(w, "  %s %s seed: %v\n", status("FAIL"), kind, err)
			continue
		}
		exists, err := l.Verify()
		switch {
		case err != nil:
			fmt.Fprintf(w, "  %s %s: %v\n", status("FAIL"), relToRoot(l.Path()), err)
		case !exists:
			fmt.Fprintf(w, "  %s %s (created on first unit)\n", status("MISS"), relToRoot(l.Path()))
		default:
			fmt.Fprintf(w, "  %s %s\n", status("OK"), relToRoot(l.Path()))
		}
	}
}

func runUnitCheck(w io.Writer) {
	fmt.Fprintln(w, "Units check:")
	units, err := workspace.Units(env.fs, env.unitsDir())
	if err != nil {
		fmt.Fprintf(w, "  %s %v\n", status("FAIL"), err)
		return
	}
	if len(units) == 0 {
		fmt.Fprintf(w, "  %s no units yet\n", status("INFO"))
		return
	}
	manifestLedger, err := env.manifestLedger()
	if err != nil {
		fmt.Fprintf(w, "  %s %v\n", status("FAIL"), err)
		return
	}
	for _, u := range units {
		if u.Err != nil {
			fmt.Fprintf(w, "  %s %s: %v\n", status("FAIL"), u.Slug, u.Err)
			continue
		}
		if ok, err := manifestLedger.HasSection(u.Slug); err != nil || !ok {
			fmt.Fprintf(w, "  %s %s has no dependency group\n", status("WARN"), u.Slug)
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", status("OK"), u.Slug)
	}
}

func runToolCheck(w io.Writer) {
	fmt.Fprintln(w, "Tools check:")
	checkBinary(w, env.settings.DependencyManager)
	checkBinary(w, "python3")
	checkBinary(w, "git")
}

func checkBinary(w io.Writer, name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Fprintf(w, "  %s %s not found\n", status("MISS"), name)
		return
	}
	fmt.Fprintf(w, "  %s %s found at %s\n", status("OK"), name, path)
}

func fileExists(e *cliEnv, path string) (bool, error) {
	_, err := e.fs.Stat(path)
	if err != nil {
		return false, err
	}
	return true, nil
}
