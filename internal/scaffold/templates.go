package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/agentx-labs/monogen/internal/errors"
)

//go:embed all:scaffolds
var embeddedFS embed.FS

// DefaultTemplates returns the built-in template sets rooted at the
// directory that holds one subdirectory per set.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embeddedFS, "scaffolds")
	if err != nil {
		panic(err) // the embed directive guarantees the directory
	}
	return sub
}

// Template file naming inside a set. Directories starting with "_" hold
// material that is not copied into the unit.
const (
	templateExt    = ".tmpl"
	ledgerDir      = "_ledger"
	seedDir        = "_seed"
	fragmentsDir   = "_fragments"
	testsDir       = "tests"
	starterScript  = "main.py"
	executableExt  = ".sh"
	setSubproject  = "subproject"
	setAgentCommon = "agent"
)

// layeredSet resolves template paths across an ordered list of sets; a later
// set overrides a file with the same relative path in an earlier one.
type layeredSet struct {
	fsys   fs.FS
	layers []string
}

func newLayeredSet(fsys fs.FS, layers ...string) (*layeredSet, error) {
	for _, l := range layers {
		info, err := fs.Stat(fsys, l)
		if err != nil || !info.IsDir() {
			return nil, errors.WrapWithDetails(errors.ETemplateSetNotFound,
				fmt.Sprintf("template set %q not found", l), err, map[string]string{"set": l})
		}
	}
	return &layeredSet{fsys: fsys, layers: layers}, nil
}

// lookup returns the content of rel from the last layer that defines it.
func (s *layeredSet) lookup(rel string) (string, bool, error) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		p := path.Join(s.layers[i], rel)
		data, err := fs.ReadFile(s.fsys, p)
		if err == nil {
			return string(data), true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", false, errors.Wrap(errors.EIO, "reading template "+p, err)
		}
	}
	return "", false, nil
}

// mustLookup is lookup that treats absence as an error.
func (s *layeredSet) mustLookup(rel string) (string, error) {
	text, ok, err := s.lookup(rel)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.NewWithDetails(errors.ETemplateSetNotFound,
			fmt.Sprintf("no template %s in sets %s", rel, strings.Join(s.layers, ", ")),
			map[string]string{"template": rel})
	}
	return text, nil
}

// unitFiles returns the relative paths (with the template extension) of every
// file copied into a unit, merged across layers and sorted.
func (s *layeredSet) unitFiles() ([]string, error) {
	seen := make(map[string]bool)
	for _, layer := range s.layers {
		err := fs.WalkDir(s.fsys, layer, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel := strings.TrimPrefix(strings.TrimPrefix(p, layer), "/")
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), "_") {
					return fs.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(rel, templateExt) {
				seen[rel] = true
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(errors.EIO, "listing template set "+layer, err)
		}
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}
