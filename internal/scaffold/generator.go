package scaffold

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/agentx-labs/monogen/internal/branding"
	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/ledger"
	"github.com/agentx-labs/monogen/internal/logging"
	"github.com/agentx-labs/monogen/internal/manifest"
	"github.com/agentx-labs/monogen/internal/naming"
	"github.com/agentx-labs/monogen/internal/platform"
)

// LedgerPaths are the shared files, relative to the workspace root.
type LedgerPaths struct {
	Manifest string
	Build    string
	CI       string
}

// DefaultLedgerPaths returns the Poetry monorepo layout.
func DefaultLedgerPaths() LedgerPaths {
	return LedgerPaths{
		Manifest: "pyproject.toml",
		Build:    "Makefile",
		CI:       filepath.Join(".github", "workflows", "ci.yml"),
	}
}

// Config configures a Generator.
type Config struct {
	Fs            afero.Fs // defaults to the OS filesystem
	Root          string   // workspace root
	UnitsDir      string   // directory for units, relative to Root; empty means Root
	Ledgers       LedgerPaths
	Reserved      []string // nil means naming.DefaultReserved
	PythonVersion string
	Version       string // generator version stamped into unit.yaml
	Now           func() time.Time
	Templates     fs.FS // defaults to DefaultTemplates()
}

// Generator creates units and keeps the shared ledgers in step.
type Generator struct {
	cfg Config
}

// NewGenerator fills defaults and returns a Generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Ledgers == (LedgerPaths{}) {
		cfg.Ledgers = DefaultLedgerPaths()
	}
	if cfg.PythonVersion == "" {
		cfg.PythonVersion = "3.12"
	}
	if cfg.Version == "" {
		cfg.Version = "0.0.0-dev"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Templates == nil {
		cfg.Templates = DefaultTemplates()
	}
	return &Generator{cfg: cfg}
}

// Fs returns the filesystem the generator writes to.
func (g *Generator) Fs() afero.Fs { return g.cfg.Fs }

// Root returns the workspace root.
func (g *Generator) Root() string { return g.cfg.Root }

// UnitDir returns the directory a unit with the given slug lives in.
func (g *Generator) UnitDir(slug string) string {
	return filepath.Join(g.cfg.Root, g.cfg.UnitsDir, slug)
}

// Ledger returns the file-backed ledger of the given kind. It fails only when
// the embedded seed for a missing ledger cannot be rendered.
func (g *Generator) Ledger(kind ledger.Kind) (*ledger.File, error) {
	var rel string
	switch kind {
	case ledger.KindManifest:
		rel = g.cfg.Ledgers.Manifest
	case ledger.KindBuild:
		rel = g.cfg.Ledgers.Build
	default:
		rel = g.cfg.Ledgers.CI
	}
	seed, err := g.seed(kind)
	if err != nil {
		return nil, err
	}
	return ledger.New(g.cfg.Fs, kind, filepath.Join(g.cfg.Root, rel), ledger.WithSeed(seed)), nil
}

// seed is the content a missing ledger starts with.
func (g *Generator) seed(kind ledger.Kind) (string, error) {
	if kind != ledger.KindCI {
		return "", nil
	}
	set, err := newLayeredSet(g.cfg.Templates, setSubproject)
	if err != nil {
		return "", err
	}
	rel := seedDir + "/ci" + templateExt
	text, err := set.mustLookup(rel)
	if err != nil {
		return "", err
	}
	return Render(rel, text, map[string]string{"PYTHON_VERSION": g.cfg.PythonVersion})
}

// File actions reported in a Result.
const (
	ActionCreated     = "created"
	ActionOverwritten = "overwritten"
	ActionRemoved     = "removed"
	ActionKept        = "kept"
)

// FileChange is one file touched inside the unit directory.
type FileChange struct {
	Path   string // relative to the unit directory
	Action string
}

// LedgerChange reports what happened to one shared file.
type LedgerChange struct {
	Kind     ledger.Kind
	Path     string
	Appended bool // false when the section already existed
}

// Result describes a completed CreateUnit call.
type Result struct {
	Unit     naming.Identifier
	Kind     Kind
	Dir      string
	Files    []FileChange
	Ledgers  []LedgerChange
	Manifest *manifest.UnitManifest
}

// plannedFile is one rendered file waiting to be written.
type plannedFile struct {
	rel     string
	content string
	mode    os.FileMode
}

type plannedSection struct {
	store *ledger.File
	text  string
}

// plan is the complete in-memory rendering of a unit.
type plan struct {
	files    []plannedFile
	removed  []string
	sections []plannedSection
	manifest *manifest.UnitManifest
}

// CreateUnit generates one unit and records it in the shared ledgers.
// Every template and ledger section is rendered and checked before the first
// write; a failure after that point leaves already-written files in place.
func (g *Generator) CreateUnit(kind Kind, raw, description string, opts Options) (*Result, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if err := opts.validate(kind); err != nil {
		return nil, err
	}
	id, err := naming.Normalize(raw, g.cfg.Reserved)
	if err != nil {
		return nil, err
	}
	if err := checkFreeText("description", description); err != nil {
		return nil, err
	}

	dir := g.UnitDir(id.Slug)
	exists, err := afero.Exists(g.cfg.Fs, dir)
	if err != nil {
		return nil, errors.Wrap(errors.EIO, "checking "+dir, err)
	}
	if exists && !opts.Overwrite {
		return nil, errors.NewWithDetails(errors.EDuplicateUnit,
			fmt.Sprintf("unit %q already exists at %s", id.Slug, dir),
			map[string]string{"unit": id.Slug, "dir": dir})
	}

	p, err := g.plan(kind, id, description, opts)
	if err != nil {
		return nil, err
	}
	for _, s := range p.sections {
		if err := s.store.Check(id.Slug, s.text); err != nil {
			return nil, err
		}
	}

	res := &Result{Unit: id, Kind: kind, Dir: dir, Manifest: p.manifest}
	if err := g.apply(dir, p, res); err != nil {
		return res, err
	}
	for _, s := range p.sections {
		appended, err := s.store.Ensure(id.Slug, s.text)
		if err != nil {
			return res, err
		}
		res.Ledgers = append(res.Ledgers, LedgerChange{Kind: s.store.Kind(), Path: s.store.Path(), Appended: appended})
	}
	logging.Info().Str("unit", id.Slug).Str("kind", string(kind)).Int("files", len(res.Files)).Msg("unit generated")
	return res, nil
}

// plan renders every file, the unit manifest and every ledger section.
func (g *Generator) plan(kind Kind, id naming.Identifier, description string, opts Options) (*plan, error) {
	layers := []string{setSubproject}
	if kind == KindAgent {
		layers = append(layers, setAgentCommon, opts.Framework.templateSet())
	}
	set, err := newLayeredSet(g.cfg.Templates, layers...)
	if err != nil {
		return nil, err
	}

	m := &manifest.UnitManifest{
		Name:    id.Slug,
		Kind:    string(kind),
		Title:   id.Title,
		Version: "0.1.0",
		Tests:   opts.IncludeTests,
		Generator: manifest.GeneratorInfo{
			Name:      branding.CLIName(),
			Version:   g.cfg.Version,
			CreatedAt: g.cfg.Now().UTC().Format(time.RFC3339),
		},
	}
	if description == "" {
		description = id.Title + " module"
		if kind == KindAgent {
			description = id.Title + " agent"
		}
	}
	m.Description = description

	values := map[string]string{
		"SLUG":           id.Slug,
		"CLASS_NAME":     id.ClassName,
		"TITLE":          id.Title,
		"DESCRIPTION":    description,
		"DESCRIPTION_PY": pyString(description),
		"PYTHON_VERSION": g.cfg.PythonVersion,
	}

	if kind == KindAgent {
		tools, err := deriveToolArtifacts(set, opts.Tools)
		if err != nil {
			return nil, err
		}
		persistence, err := LookupPersistence(opts.Persistence)
		if err != nil {
			return nil, err
		}
		agentName := strings.TrimSpace(opts.AgentName)
		if agentName == "" {
			agentName = id.Title
		}
		values["AGENT_NAME"] = agentName
		values["AGENT_NAME_PY"] = pyString(agentName)
		values["PERSISTENCE_MODULE"] = persistence.Module
		values["PERSISTENCE_CLASS"] = persistence.Class
		values["PERSISTENCE_ARGS"] = persistence.Args
		for k, v := range toolValues(id.Slug, tools) {
			values[k] = v
		}

		m.Agent = &manifest.AgentSettings{
			Name:        agentName,
			Framework:   string(opts.Framework),
			Persistence: persistence.Name,
		}
		for _, t := range tools {
			m.Agent.Tools = append(m.Agent.Tools, manifest.Tool{Name: t.Name, Function: t.Function, Title: t.Title})
		}
	}

	p := &plan{manifest: m}
	rels, err := set.unitFiles()
	if err != nil {
		return nil, err
	}
	for _, rel := range rels {
		out := strings.TrimSuffix(rel, templateExt)
		if !opts.IncludeTests && (out == testsDir || strings.HasPrefix(out, testsDir+"/")) {
			continue
		}
		if kind == KindAgent && out == starterScript {
			p.removed = append(p.removed, out)
			continue
		}
		text, err := set.mustLookup(rel)
		if err != nil {
			return nil, err
		}
		content, err := Render(rel, text, values)
		if err != nil {
			return nil, err
		}
		mode := os.FileMode(0o644)
		if path.Ext(out) == executableExt {
			mode = 0o755
		}
		p.files = append(p.files, plannedFile{rel: out, content: content, mode: mode})
		logging.Debug().Str("template", rel).Msg("rendered")
	}

	data, err := manifest.Encode(m)
	if err != nil {
		return nil, err
	}
	p.files = append(p.files, plannedFile{rel: manifest.FileName, content: string(data), mode: 0o644})

	sections := []struct {
		kind  ledger.Kind
		parts []string
	}{
		{ledger.KindManifest, []string{"manifest"}},
		{ledger.KindBuild, []string{"build"}},
	}
	if opts.IncludeTests {
		sections[1].parts = append(sections[1].parts, "build_tests")
		sections = append(sections, struct {
			kind  ledger.Kind
			parts []string
		}{ledger.KindCI, []string{"ci"}})
	}
	for _, s := range sections {
		var texts []string
		for _, part := range s.parts {
			rel := ledgerDir + "/" + part + templateExt
			text, err := set.mustLookup(rel)
			if err != nil {
				return nil, err
			}
			rendered, err := Render(rel, text, values)
			if err != nil {
				return nil, err
			}
			texts = append(texts, strings.TrimRight(rendered, "\n"))
		}
		store, err := g.Ledger(s.kind)
		if err != nil {
			return nil, err
		}
		p.sections = append(p.sections, plannedSection{
			store: store,
			text:  strings.Join(texts, "\n") + "\n",
		})
	}
	return p, nil
}

// apply writes the planned files under dir.
func (g *Generator) apply(dir string, p *plan, res *Result) error {
	fsys := g.cfg.Fs
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.EIO, "creating "+dir, err)
	}
	for _, f := range p.files {
		target := filepath.Join(dir, filepath.FromSlash(f.rel))
		action := ActionCreated
		if ok, _ := afero.Exists(fsys, target); ok {
			action = ActionOverwritten
		}
		if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrap(errors.EIO, "creating "+filepath.Dir(target), err)
		}
		if err := afero.WriteFile(fsys, target, []byte(f.content), f.mode); err != nil {
			return errors.Wrap(errors.EIO, "writing "+target, err)
		}
		if f.mode&0o111 != 0 {
			if err := g.makeExecutable(target, f.mode); err != nil {
				return err
			}
		}
		res.Files = append(res.Files, FileChange{Path: f.rel, Action: action})
	}
	for _, rel := range p.removed {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if ok, _ := afero.Exists(fsys, target); ok {
			if err := fsys.Remove(target); err != nil {
				return errors.Wrap(errors.EIO, "removing "+target, err)
			}
		}
		res.Files = append(res.Files, FileChange{Path: rel, Action: ActionRemoved})
	}
	return nil
}

// makeExecutable sets the mode on the real filesystem through platform.Chmod
// and through the afero filesystem otherwise.
func (g *Generator) makeExecutable(target string, mode os.FileMode) error {
	var err error
	if _, ok := g.cfg.Fs.(*afero.OsFs); ok {
		err = platform.Chmod(target, mode)
	} else {
		err = g.cfg.Fs.Chmod(target, mode)
	}
	if err != nil {
		return errors.Wrap(errors.EIO, "setting mode on "+target, err)
	}
	return nil
}

// pyString makes s safe inside a double-quoted Python string literal.
func pyString(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
