package ledger

import (
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/agentx-labs/monogen/internal/errors"
)

// pyproject models only the parts of pyproject.toml the tool reads.
type pyproject struct {
	Tool struct {
		Poetry struct {
			Group map[string]struct {
				Optional     bool           `toml:"optional"`
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func readPyproject(fsys afero.Fs, path string) (*pyproject, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return &pyproject{}, nil
		}
		return nil, errors.Wrap(errors.EIO, "reading "+path, err)
	}
	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ELedgerInvalid, "parsing "+path, err)
	}
	return &doc, nil
}

// Groups returns the dependency-group names declared in the manifest, sorted.
func Groups(fsys afero.Fs, path string) ([]string, error) {
	doc, err := readPyproject(fsys, path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Tool.Poetry.Group))
	for name := range doc.Tool.Poetry.Group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GroupDependencies returns the package names declared in the manifest
// group for slug, sorted. A group without dependencies yields an empty list;
// a missing group is E_UNKNOWN_UNIT.
func GroupDependencies(fsys afero.Fs, path, slug string) ([]string, error) {
	doc, err := readPyproject(fsys, path)
	if err != nil {
		return nil, err
	}
	group, ok := doc.Tool.Poetry.Group[slug]
	if !ok {
		return nil, errors.NewWithDetails(errors.EUnknownUnit,
			"no dependency group for "+slug, map[string]string{"manifest": path})
	}
	deps := make([]string, 0, len(group.Dependencies))
	for name := range group.Dependencies {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps, nil
}
