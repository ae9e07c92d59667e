package scaffold

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/logging"
	"github.com/agentx-labs/monogen/internal/manifest"
	"github.com/agentx-labs/monogen/internal/naming"
)

// PromptFile is the system-prompt file of an agent project.
const PromptFile = "prompt.txt"

// SavePrompt replaces the prompt file of an existing agent project with text,
// byte for byte, and returns the path written. The unit is looked up by its
// normalized name and must carry an agent unit.yaml.
func (g *Generator) SavePrompt(raw, text string) (string, error) {
	id, err := naming.Normalize(raw, g.cfg.Reserved)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New(errors.EUsage, "prompt text is empty")
	}

	dir := g.UnitDir(id.Slug)
	m, err := manifest.LoadDir(g.cfg.Fs, dir)
	if err != nil {
		return "", errors.WrapWithDetails(errors.EUnknownUnit,
			fmt.Sprintf("no unit named %q under %s", id.Slug, filepath.Dir(dir)), err,
			map[string]string{"unit": id.Slug})
	}
	if m.Kind != manifest.KindAgent {
		return "", errors.NewWithDetails(errors.EUnknownUnit,
			fmt.Sprintf("%q is a %s, not an agent project", id.Slug, m.Kind),
			map[string]string{"unit": id.Slug, "kind": m.Kind})
	}

	target := filepath.Join(dir, PromptFile)
	if err := afero.WriteFile(g.cfg.Fs, target, []byte(text), 0o644); err != nil {
		return "", errors.Wrap(errors.EIO, "writing "+target, err)
	}
	logging.Debug().Str("unit", id.Slug).Str("file", target).Int("bytes", len(text)).Msg("prompt saved")
	return target, nil
}
