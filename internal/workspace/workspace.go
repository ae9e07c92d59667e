package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentx-labs/monogen/internal/branding"
	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/manifest"
)

// rootMarkers identify a workspace root, in priority order.
func rootMarkers() []string {
	return []string{branding.WorkspaceFile(), "pyproject.toml", ".git"}
}

// FindRoot walks up from start looking for a workspace marker. The first
// marker in priority order wins over a closer lower-priority one, so a
// nested pyproject.toml does not hide the workspace file above it. When
// nothing is found start is returned with found=false.
func FindRoot(fsys afero.Fs, start string) (root string, found bool, err error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", false, fmt.Errorf("resolving %s: %w", start, err)
	}
	for _, marker := range rootMarkers() {
		for dir := abs; ; dir = filepath.Dir(dir) {
			ok, err := afero.Exists(fsys, filepath.Join(dir, marker))
			if err != nil {
				return "", false, errors.Wrap(errors.EIO, "checking "+dir, err)
			}
			if ok {
				return dir, true, nil
			}
			if filepath.Dir(dir) == dir {
				break
			}
		}
	}
	return abs, false, nil
}

// Unit is one directory holding a unit manifest.
type Unit struct {
	Slug     string
	Dir      string
	Manifest *manifest.UnitManifest
	Err      error // set when unit.yaml exists but is unreadable or invalid
}

// Units lists the units directly under dir, sorted by slug. Directories
// without a unit manifest are ignored.
func Units(fsys afero.Fs, dir string) ([]Unit, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.EIO, "reading "+dir, err)
	}

	var units []Unit
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		unitDir := filepath.Join(dir, e.Name())
		ok, err := afero.Exists(fsys, filepath.Join(unitDir, manifest.FileName))
		if err != nil || !ok {
			continue
		}
		u := Unit{Slug: e.Name(), Dir: unitDir}
		u.Manifest, u.Err = LoadUnit(fsys, unitDir)
		if u.Manifest != nil {
			u.Slug = u.Manifest.Name
		}
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Slug < units[j].Slug })
	return units, nil
}

// LoadUnit parses and validates the manifest in unitDir.
func LoadUnit(fsys afero.Fs, unitDir string) (*manifest.UnitManifest, error) {
	path := filepath.Join(unitDir, manifest.FileName)
	result, err := manifest.ValidateFile(fsys, path)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		msgs := make([]string, len(result.Issues))
		for i, issue := range result.Issues {
			msgs[i] = issue.String()
		}
		return nil, errors.NewWithDetails(errors.EInvalidManifest,
			fmt.Sprintf("%s failed validation", path),
			map[string]string{"issues": strings.Join(msgs, "; ")})
	}
	return manifest.LoadDir(fsys, unitDir)
}

// Find returns the unit with the given slug.
func Find(fsys afero.Fs, dir, slug string) (*Unit, error) {
	unitDir := filepath.Join(dir, slug)
	ok, err := afero.Exists(fsys, filepath.Join(unitDir, manifest.FileName))
	if err != nil {
		return nil, errors.Wrap(errors.EIO, "checking "+unitDir, err)
	}
	if !ok {
		return nil, errors.NewWithDetails(errors.EUnknownUnit,
			fmt.Sprintf("no unit named %q in %s", slug, dir), map[string]string{"unit": slug})
	}
	m, err := LoadUnit(fsys, unitDir)
	if err != nil {
		return nil, err
	}
	return &Unit{Slug: slug, Dir: unitDir, Manifest: m}, nil
}
