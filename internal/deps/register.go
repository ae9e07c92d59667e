package deps

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/ledger"
	"github.com/agentx-labs/monogen/internal/logging"
	"github.com/agentx-labs/monogen/internal/naming"
)

// DefaultManager is the dependency manager binary.
const DefaultManager = "poetry"

// Registrar adds packages to a unit's dependency group.
type Registrar struct {
	Manifest ledger.Store // the manifest ledger; a unit without a section is unknown
	Runner   Runner
	Manager  string // binary name; defaults to DefaultManager
	Dir      string // working directory for the manager
	DryRun   bool
}

// Invocation describes one dependency-manager call.
type Invocation struct {
	Unit    string
	Package string
	Version string
	Dir     string
	Command []string
	DryRun  bool
	Output  *Output
}

// String renders the command line.
func (i *Invocation) String() string {
	return strings.Join(i.Command, " ")
}

// Register adds pkg (optionally pinned to version) to the dependency group of
// the unit named raw. The unit must already have a section in the manifest
// ledger; otherwise the call fails with E_UNKNOWN_UNIT before the manager is
// invoked.
func (r *Registrar) Register(ctx context.Context, raw, pkg, version string) (*Invocation, error) {
	slug := naming.Slugify(raw)
	if slug == "" {
		return nil, errors.Newf(errors.EInvalidIdentifier, "identifier %q normalizes to an empty name", raw)
	}
	ok, err := r.Manifest.HasSection(slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewWithDetails(errors.EUnknownUnit,
			fmt.Sprintf("unit %q has no dependency group in the manifest", slug),
			map[string]string{"unit": slug})
	}

	pkg = strings.TrimSpace(pkg)
	if err := ValidatePackageName(pkg); err != nil {
		return nil, err
	}
	version, err = NormalizeVersion(version)
	if err != nil {
		return nil, err
	}

	manager := r.Manager
	if manager == "" {
		manager = DefaultManager
	}
	req := pkg
	if version != "" {
		req += "@" + version
	}
	inv := &Invocation{
		Unit:    slug,
		Package: pkg,
		Version: version,
		Dir:     r.Dir,
		Command: []string{manager, "add", "--group", slug, req},
		DryRun:  r.DryRun,
	}
	if r.DryRun {
		logging.Debug().Str("cmd", inv.String()).Msg("dry run, not invoking dependency manager")
		return inv, nil
	}

	logging.Debug().Str("cmd", inv.String()).Str("dir", r.Dir).Msg("invoking dependency manager")
	out, err := r.Runner.Run(ctx, r.Dir, manager, inv.Command[1:]...)
	inv.Output = out
	if err != nil {
		return inv, errors.WrapWithDetails(errors.EExternalTool,
			fmt.Sprintf("running %s", inv), err, map[string]string{"unit": slug})
	}
	if out.ExitCode != 0 {
		details := map[string]string{"unit": slug, "exit_code": fmt.Sprint(out.ExitCode)}
		if s := strings.TrimSpace(out.Stderr); s != "" {
			details["stderr"] = s
		}
		return inv, errors.NewWithDetails(errors.EExternalTool,
			fmt.Sprintf("%s exited with status %d", inv, out.ExitCode), details)
	}
	return inv, nil
}
