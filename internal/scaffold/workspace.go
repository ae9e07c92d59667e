package scaffold

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/agentx-labs/monogen/internal/branding"
	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/naming"
)

const setWorkspace = "workspace"

// InitWorkspace writes the workspace settings file and a root manifest under
// the generator root. Existing files are left untouched and reported with
// action "kept".
func (g *Generator) InitWorkspace(name, description string) ([]FileChange, error) {
	slug := naming.Slugify(name)
	if slug == "" {
		slug = naming.Slugify(filepath.Base(g.cfg.Root))
	}
	if slug == "" {
		slug = "monorepo"
	}
	if description == "" {
		description = naming.Title(slug) + " monorepo"
	}
	values := map[string]string{
		"SLUG":           slug,
		"DESCRIPTION_PY": pyString(description),
		"PYTHON_VERSION": g.cfg.PythonVersion,
		"CLI_NAME":       branding.CLIName(),
		"ENV_PREFIX":     branding.EnvPrefix(),
	}

	set, err := newLayeredSet(g.cfg.Templates, setWorkspace)
	if err != nil {
		return nil, err
	}
	targets := []struct{ tmpl, out string }{
		{"workspace.yaml" + templateExt, branding.WorkspaceFile()},
		{"pyproject.toml" + templateExt, g.cfg.Ledgers.Manifest},
	}

	// Render both before writing either.
	rendered := make([]string, len(targets))
	for i, t := range targets {
		text, err := set.mustLookup(t.tmpl)
		if err != nil {
			return nil, err
		}
		if rendered[i], err = Render(t.tmpl, text, values); err != nil {
			return nil, err
		}
	}

	if err := g.cfg.Fs.MkdirAll(g.cfg.Root, 0o755); err != nil {
		return nil, errors.Wrap(errors.EIO, "creating "+g.cfg.Root, err)
	}
	var changes []FileChange
	for i, t := range targets {
		target := filepath.Join(g.cfg.Root, t.out)
		ok, err := afero.Exists(g.cfg.Fs, target)
		if err != nil {
			return changes, errors.Wrap(errors.EIO, "checking "+target, err)
		}
		if ok {
			changes = append(changes, FileChange{Path: t.out, Action: ActionKept})
			continue
		}
		if err := g.cfg.Fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return changes, errors.Wrap(errors.EIO, "creating "+filepath.Dir(target), err)
		}
		if err := afero.WriteFile(g.cfg.Fs, target, []byte(rendered[i]), 0o644); err != nil {
			return changes, errors.Wrap(errors.EIO, "writing "+target, err)
		}
		changes = append(changes, FileChange{Path: t.out, Action: ActionCreated})
	}
	return changes, nil
}
