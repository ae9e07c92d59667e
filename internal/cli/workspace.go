package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentx-labs/monogen/internal/config"
	"github.com/agentx-labs/monogen/internal/deps"
	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/ledger"
	"github.com/agentx-labs/monogen/internal/logging"
	"github.com/agentx-labs/monogen/internal/naming"
	"github.com/agentx-labs/monogen/internal/scaffold"
	"github.com/agentx-labs/monogen/internal/workspace"
)

// cliEnv is the resolved workspace and configuration for one invocation.
type cliEnv struct {
	fs       afero.Fs
	root     string
	found    bool // root came from a workspace marker
	settings config.Settings
}

var env *cliEnv

// loadEnv resolves the workspace root, loads configuration and sets up
// logging. The root is, in order: --root, the "root" setting, the nearest
// workspace marker above the current directory, the current directory.
func loadEnv(cmd *cobra.Command) error {
	fsys := afero.NewOsFs()
	start := flagRoot
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(errors.EIO, "resolving working directory", err)
		}
		start = wd
	}
	root, found, err := workspace.FindRoot(fsys, start)
	if err != nil {
		return err
	}
	if flagRoot != "" {
		if root, err = filepath.Abs(flagRoot); err != nil {
			return errors.Wrap(errors.EUsage, "resolving --root", err)
		}
	}

	if err := config.Load(root); err != nil {
		return err
	}
	settings := config.Current()
	if flagRoot == "" && settings.Root != "" {
		r := settings.Root
		if !filepath.IsAbs(r) {
			r = filepath.Join(root, r)
		}
		root = filepath.Clean(r)
	}

	logging.Init(logging.Options{
		Level:   settings.LogLevel,
		Verbose: flagVerbose,
		Out:     cmd.ErrOrStderr(),
		NoColor: flagNoColor,
	})
	logging.Debug().Str("root", root).Bool("marker", found).Msg("workspace resolved")

	env = &cliEnv{fs: fsys, root: root, found: found, settings: settings}
	return nil
}

func (e *cliEnv) unitsDir() string {
	return filepath.Join(e.root, e.settings.UnitsDir)
}

func (e *cliEnv) ledgerPaths() scaffold.LedgerPaths {
	return scaffold.LedgerPaths{
		Manifest: e.settings.LedgerManifest,
		Build:    e.settings.LedgerBuild,
		CI:       e.settings.LedgerCI,
	}
}

func (e *cliEnv) generator() *scaffold.Generator {
	var reserved []string
	if len(e.settings.Reserved) > 0 {
		reserved = append(reserved, e.settings.Reserved...)
		reserved = append(reserved, naming.DefaultReserved...)
	}
	return scaffold.NewGenerator(scaffold.Config{
		Fs:            e.fs,
		Root:          e.root,
		UnitsDir:      e.settings.UnitsDir,
		Ledgers:       e.ledgerPaths(),
		Reserved:      reserved,
		PythonVersion: e.settings.PythonVersion,
		Version:       stampVersion(buildVersion),
	})
}

func (e *cliEnv) manifestLedger() (*ledger.File, error) {
	return e.generator().Ledger(ledger.KindManifest)
}

func (e *cliEnv) registrar(cmd *cobra.Command, dryRun bool) (*deps.Registrar, error) {
	manifestLedger, err := e.manifestLedger()
	if err != nil {
		return nil, err
	}
	return &deps.Registrar{
		Manifest: manifestLedger,
		Runner:   &deps.ExecRunner{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()},
		Manager:  e.settings.DependencyManager,
		Dir:      e.root,
		DryRun:   dryRun,
	}, nil
}

// stampVersion returns the build version when it is valid semver, and a
// development version otherwise.
func stampVersion(v string) string {
	sv, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		return "0.0.0-dev"
	}
	return sv.String()
}
