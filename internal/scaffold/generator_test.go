package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/ledger"
	"github.com/agentx-labs/monogen/internal/manifest"
)

const root = "/ws"

const basePyproject = `[tool.poetry]
name = "monorepo"
version = "0.1.0"

[tool.poetry.dependencies]
python = "^3.11"
`

func newTestGenerator(t *testing.T) (*Generator, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, filepath.Join(root, "pyproject.toml"), []byte(basePyproject), 0o644); err != nil {
		t.Fatal(err)
	}
	g := NewGenerator(Config{
		Fs:      fsys,
		Root:    root,
		Version: "1.2.3",
		Now:     func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	return g, fsys
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// snapshot returns every file path and content under dir.
func snapshot(t *testing.T, fsys afero.Fs, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := afero.Walk(fsys, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			data, err := afero.ReadFile(fsys, p)
			if err != nil {
				return err
			}
			out[p] = string(data)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func assertNoPlaceholders(t *testing.T, files map[string]string) {
	t.Helper()
	for p, content := range files {
		if HasPlaceholder(content) {
			t.Errorf("%s still contains placeholders %v", p, Tokens(content))
		}
	}
}

func countLines(text, prefix string) int {
	n := 0
	for _, l := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), prefix) {
			n++
		}
	}
	return n
}

func TestCreateSubproject(t *testing.T) {
	g, fsys := newTestGenerator(t)

	res, err := g.CreateUnit(KindSubproject, "Data Pipeline", "", DefaultOptions())
	if err != nil {
		t.Fatalf("CreateUnit: %v", err)
	}
	if res.Unit.Slug != "data_pipeline" {
		t.Errorf("slug = %q", res.Unit.Slug)
	}
	dir := filepath.Join(root, "data_pipeline")
	if res.Dir != dir {
		t.Errorf("dir = %q, want %q", res.Dir, dir)
	}

	for _, rel := range []string{"__init__.py", "main.py", "tests/test_main.py", ".devcontainer/Dockerfile", manifest.FileName} {
		if ok, _ := afero.Exists(fsys, filepath.Join(dir, rel)); !ok {
			t.Errorf("missing %s", rel)
		}
	}
	assertNoPlaceholders(t, snapshot(t, fsys, dir))

	py := readFile(t, fsys, filepath.Join(root, "pyproject.toml"))
	if !strings.HasPrefix(py, basePyproject) {
		t.Error("existing pyproject content was modified")
	}
	if !strings.Contains(py, "[tool.poetry.group.data_pipeline]") {
		t.Errorf("pyproject missing group header:\n%s", py)
	}
	mk := readFile(t, fsys, filepath.Join(root, "Makefile"))
	if !strings.Contains(mk, "test-data_pipeline:") {
		t.Errorf("Makefile missing test target:\n%s", mk)
	}
	ci := readFile(t, fsys, filepath.Join(root, ".github", "workflows", "ci.yml"))
	if !strings.Contains(ci, "name: CI") || !strings.Contains(ci, "poetry run pytest data_pipeline/tests") {
		t.Errorf("ci.yml unexpected:\n%s", ci)
	}
	if len(res.Ledgers) != 3 {
		t.Fatalf("ledger changes = %d, want 3", len(res.Ledgers))
	}
	for _, lc := range res.Ledgers {
		if !lc.Appended {
			t.Errorf("%s ledger not appended", lc.Kind)
		}
	}

	m, err := manifest.LoadDir(fsys, dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if m.Description != "Data Pipeline module" || m.Generator.Version != "1.2.3" {
		t.Errorf("manifest = %+v", m)
	}
	if m.Generator.CreatedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("created_at = %q", m.Generator.CreatedAt)
	}
}

func TestCreateSubprojectWithoutTests(t *testing.T) {
	g, fsys := newTestGenerator(t)
	opts := DefaultOptions()
	opts.IncludeTests = false

	res, err := g.CreateUnit(KindSubproject, "etl", "Loads things", opts)
	if err != nil {
		t.Fatalf("CreateUnit: %v", err)
	}
	if ok, _ := afero.Exists(fsys, filepath.Join(root, "etl", "tests")); ok {
		t.Error("tests directory written with IncludeTests=false")
	}
	if ok, _ := afero.Exists(fsys, filepath.Join(root, ".github", "workflows", "ci.yml")); ok {
		t.Error("ci.yml written with IncludeTests=false")
	}
	if strings.Contains(readFile(t, fsys, filepath.Join(root, "Makefile")), "test-etl") {
		t.Error("Makefile has a test target with IncludeTests=false")
	}
	if len(res.Ledgers) != 2 {
		t.Errorf("ledger changes = %d, want 2", len(res.Ledgers))
	}
}

func TestCreateDuplicateWritesNothing(t *testing.T) {
	g, fsys := newTestGenerator(t)
	if _, err := g.CreateUnit(KindSubproject, "Data Pipeline", "", DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	before := snapshot(t, fsys, root)

	_, err := g.CreateUnit(KindSubproject, "data-pipeline", "", DefaultOptions())
	if !errors.HasCode(err, errors.EDuplicateUnit) {
		t.Fatalf("err = %v, want %s", err, errors.EDuplicateUnit)
	}
	if diff := cmp.Diff(before, snapshot(t, fsys, root)); diff != "" {
		t.Errorf("workspace changed (-before +after):\n%s", diff)
	}
}

func TestCreateOverwriteKeepsOneLedgerSection(t *testing.T) {
	g, fsys := newTestGenerator(t)
	if _, err := g.CreateUnit(KindSubproject, "svc", "", DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Overwrite = true
	res, err := g.CreateUnit(KindSubproject, "svc", "", opts)
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	for _, lc := range res.Ledgers {
		if lc.Appended {
			t.Errorf("%s ledger appended twice", lc.Kind)
		}
	}
	for _, fc := range res.Files {
		if fc.Action != ActionOverwritten {
			t.Errorf("%s action = %s", fc.Path, fc.Action)
		}
	}
	for _, f := range []struct{ path, marker string }{
		{"pyproject.toml", ledger.Marker(ledger.KindManifest, "svc")},
		{"Makefile", ledger.Marker(ledger.KindBuild, "svc")},
		{".github/workflows/ci.yml", ledger.Marker(ledger.KindCI, "svc")},
	} {
		content := readFile(t, fsys, filepath.Join(root, f.path))
		if n := countLines(content, f.marker); n != 1 {
			t.Errorf("%s has %d sections, want 1", f.path, n)
		}
	}
}

func TestCreateInvalidIdentifier(t *testing.T) {
	g, fsys := newTestGenerator(t)
	for _, raw := range []string{"", "!!!", "123abc", "tests", "class"} {
		_, err := g.CreateUnit(KindSubproject, raw, "", DefaultOptions())
		if !errors.HasCode(err, errors.EInvalidIdentifier) {
			t.Errorf("CreateUnit(%q) err = %v, want %s", raw, err, errors.EInvalidIdentifier)
		}
	}
	if ok, _ := afero.Exists(fsys, filepath.Join(root, "Makefile")); ok {
		t.Error("Makefile written for an invalid identifier")
	}
}

func TestCreateAgent(t *testing.T) {
	g, fsys := newTestGenerator(t)
	opts := DefaultOptions()
	opts.Tools = []string{"get_weather", "get_forecast", "lookup city"}
	opts.AgentName = "Weather Bot"

	res, err := g.CreateUnit(KindAgent, "weather", "Answers weather questions.", opts)
	if err != nil {
		t.Fatalf("CreateUnit: %v", err)
	}
	dir := filepath.Join(root, "weather")
	files := snapshot(t, fsys, dir)
	assertNoPlaceholders(t, files)

	if _, ok := files[filepath.Join(dir, "main.py")]; ok {
		t.Error("agent project kept the starter script")
	}
	var removed []string
	for _, fc := range res.Files {
		if fc.Action == ActionRemoved {
			removed = append(removed, fc.Path)
		}
	}
	if diff := cmp.Diff([]string{"main.py"}, removed); diff != "" {
		t.Errorf("removed files (-want +got):\n%s", diff)
	}

	tools := files[filepath.Join(dir, "tools.py")]
	agent := files[filepath.Join(dir, "agent.py")]
	prompt := files[filepath.Join(dir, "prompt.txt")]
	if n := countLines(tools, "def "); n != 3 {
		t.Errorf("tools.py has %d stubs, want 3", n)
	}
	if n := strings.Count(agent, "AbstractTool("); n != 3 {
		t.Errorf("agent.py has %d registrations, want 3", n)
	}
	if n := countLines(prompt, "* "); n != 3 {
		t.Errorf("prompt.txt has %d capability lines, want 3", n)
	}
	want := []string{"get_weather", "get_forecast", "lookup_city"}
	prev := -1
	for _, fn := range want {
		i := strings.Index(tools, "def "+fn+"(")
		if i <= prev {
			t.Errorf("stub %s out of order", fn)
		}
		prev = i
	}
	if !strings.Contains(agent, "from weather.tools import get_weather, get_forecast, lookup_city") {
		t.Errorf("agent.py import line missing:\n%s", agent)
	}
	if !strings.Contains(agent, "AbstractSemanticKernelAgent") || !strings.Contains(agent, "JsonFilePersistenceStrategy") {
		t.Errorf("agent.py not wired to defaults:\n%s", agent)
	}
	if !strings.Contains(prompt, "You are Weather Bot.") {
		t.Errorf("prompt.txt:\n%s", prompt)
	}

	info, err := fsys.Stat(filepath.Join(dir, "run.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("run.sh mode = %v, want executable", info.Mode())
	}

	m, err := manifest.LoadDir(fsys, dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if m.Agent == nil || m.Agent.Framework != string(FrameworkSemanticKernel) || len(m.Agent.Tools) != 3 {
		t.Errorf("agent manifest = %+v", m.Agent)
	}
	py := readFile(t, fsys, filepath.Join(root, "pyproject.toml"))
	if !strings.Contains(py, "semantic-kernel") {
		t.Errorf("pyproject missing framework dependency:\n%s", py)
	}
}

func TestCreateAgentLlamaIndexNoTools(t *testing.T) {
	g, fsys := newTestGenerator(t)
	opts := DefaultOptions()
	opts.Framework = FrameworkLlamaIndex
	opts.Persistence = PersistenceCosmos

	if _, err := g.CreateUnit(KindAgent, "helper", "", opts); err != nil {
		t.Fatalf("CreateUnit: %v", err)
	}
	dir := filepath.Join(root, "helper")
	files := snapshot(t, fsys, dir)
	assertNoPlaceholders(t, files)

	agent := files[filepath.Join(dir, "agent.py")]
	if !strings.Contains(agent, "AbstractLlamaIndexAgent") || !strings.Contains(agent, "CosmosDBPersistenceStrategy(") {
		t.Errorf("agent.py:\n%s", agent)
	}
	if strings.Contains(agent, "AbstractTool(") {
		t.Error("agent.py has registrations without tools")
	}
	if n := countLines(files[filepath.Join(dir, "tools.py")], "def "); n != 0 {
		t.Errorf("tools.py has %d stubs, want 0", n)
	}
	if !strings.Contains(files[filepath.Join(dir, "__init__.py")], "Helper agent") {
		t.Errorf("default agent description missing:\n%s", files[filepath.Join(dir, "__init__.py")])
	}
}

func TestCreateAgentInvalidToolsWritesNothing(t *testing.T) {
	tests := map[string][]string{
		"duplicate":      {"Get Weather", "get_weather"},
		"python keyword": {"get_weather", "class", "import"},
		"shadows import": {"os"},
	}
	for name, tools := range tests {
		t.Run(name, func(t *testing.T) {
			g, fsys := newTestGenerator(t)
			opts := DefaultOptions()
			opts.Tools = tools

			_, err := g.CreateUnit(KindAgent, "weather", "", opts)
			if !errors.HasCode(err, errors.EInvalidIdentifier) {
				t.Fatalf("err = %v, want %s", err, errors.EInvalidIdentifier)
			}
			if ok, _ := afero.Exists(fsys, filepath.Join(root, "weather")); ok {
				t.Error("unit directory created despite invalid tools")
			}
		})
	}
}

func TestCreateRejectsPlaceholderInput(t *testing.T) {
	g, _ := newTestGenerator(t)
	_, err := g.CreateUnit(KindSubproject, "svc", "uses {{SECRET}}", DefaultOptions())
	if !errors.HasCode(err, errors.EUsage) {
		t.Errorf("err = %v, want %s", err, errors.EUsage)
	}
}

func TestCreateRejectsMultilineText(t *testing.T) {
	tests := []struct {
		name        string
		agentName   string
		description string
	}{
		{"newline in agent name", "Bob\nrm -rf ~", ""},
		{"carriage return in description", "", "first\rsecond"},
		{"tab in agent name", "Bob\tBot", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, fsys := newTestGenerator(t)
			before := snapshot(t, fsys, root)
			opts := DefaultOptions()
			opts.AgentName = tt.agentName
			_, err := g.CreateUnit(KindAgent, "bob", tt.description, opts)
			if !errors.HasCode(err, errors.EUsage) {
				t.Fatalf("err = %v, want %s", err, errors.EUsage)
			}
			if diff := cmp.Diff(before, snapshot(t, fsys, root)); diff != "" {
				t.Errorf("files changed (-before +after):\n%s", diff)
			}
		})
	}
}

func TestCreateAgentEscapesQuotesInDocstrings(t *testing.T) {
	g, fsys := newTestGenerator(t)
	opts := DefaultOptions()
	opts.AgentName = `Bob""" x`
	if _, err := g.CreateUnit(KindAgent, "bob", `Says "hi" \o/`, opts); err != nil {
		t.Fatalf("CreateUnit: %v", err)
	}
	for _, rel := range []string{"__init__.py", "tools.py", "app.py", "agent.py"} {
		got := readFile(t, fsys, filepath.Join(root, "bob", rel))
		if strings.Contains(got, `Bob"""`) {
			t.Errorf("%s has an unescaped agent name:\n%s", rel, got)
		}
	}
	tools := readFile(t, fsys, filepath.Join(root, "bob", "tools.py"))
	if !strings.HasPrefix(tools, `"""Tools available to Bob\"\"\" x.`) {
		t.Errorf("tools.py docstring:\n%s", tools)
	}
	pkgInit := readFile(t, fsys, filepath.Join(root, "bob", "__init__.py"))
	if !strings.Contains(pkgInit, `Says \"hi\" \\o/`) {
		t.Errorf("__init__.py docstring:\n%s", pkgInit)
	}
}

func TestCreateMissingTokenWritesNothing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	templates := fstest.MapFS{
		"subproject/main.py.tmpl":          {Data: []byte("print('{{SLUG}} {{UNDEFINED}}')\n")},
		"subproject/_ledger/manifest.tmpl": {Data: []byte("[tool.poetry.group.{{SLUG}}]\n")},
		"subproject/_ledger/build.tmpl":    {Data: []byte("# --- {{SLUG}} ---\n")},
	}
	g := NewGenerator(Config{Fs: fsys, Root: root, Templates: templates})
	opts := DefaultOptions()
	opts.IncludeTests = false

	_, err := g.CreateUnit(KindSubproject, "svc", "", opts)
	if !errors.HasCode(err, errors.ETemplateMissingToken) {
		t.Fatalf("err = %v, want %s", err, errors.ETemplateMissingToken)
	}
	if files := snapshot(t, fsys, "/"); len(files) != 0 {
		t.Errorf("files written: %v", files)
	}
}

func TestCreateBrokenCISeedWritesNothing(t *testing.T) {
	base := fstest.MapFS{
		"subproject/main.py.tmpl":             {Data: []byte("print('{{SLUG}}')\n")},
		"subproject/_ledger/manifest.tmpl":    {Data: []byte("[tool.poetry.group.{{SLUG}}]\n")},
		"subproject/_ledger/build.tmpl":       {Data: []byte("# --- {{SLUG}} ---\n")},
		"subproject/_ledger/build_tests.tmpl": {Data: []byte("test-{{SLUG}}:\n")},
		"subproject/_ledger/ci.tmpl":          {Data: []byte("      # --- {{SLUG}} ---\n")},
	}
	tests := []struct {
		name string
		seed *fstest.MapFile
		code errors.Code
	}{
		{"seed missing", nil, errors.ETemplateSetNotFound},
		{"seed with unknown token", &fstest.MapFile{Data: []byte("python: {{PYTHON}}\n")}, errors.ETemplateMissingToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			templates := fstest.MapFS{}
			for k, v := range base {
				templates[k] = v
			}
			if tt.seed != nil {
				templates["subproject/_seed/ci.tmpl"] = tt.seed
			}
			fsys := afero.NewMemMapFs()
			g := NewGenerator(Config{Fs: fsys, Root: root, Templates: templates})

			_, err := g.CreateUnit(KindSubproject, "svc", "", DefaultOptions())
			if !errors.HasCode(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if files := snapshot(t, fsys, "/"); len(files) != 0 {
				t.Errorf("files written: %v", files)
			}
		})
	}
}

func TestCreateInvalidLedgerWritesNothing(t *testing.T) {
	g, fsys := newTestGenerator(t)
	broken := basePyproject + "\n[tool.poetry.group.svc\n"
	if err := afero.WriteFile(fsys, filepath.Join(root, "pyproject.toml"), []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := g.CreateUnit(KindSubproject, "svc", "", DefaultOptions())
	if !errors.HasCode(err, errors.ELedgerInvalid) {
		t.Fatalf("err = %v, want %s", err, errors.ELedgerInvalid)
	}
	if ok, _ := afero.Exists(fsys, filepath.Join(root, "svc")); ok {
		t.Error("unit directory created despite invalid ledger")
	}
}

func TestSavePrompt(t *testing.T) {
	g, fsys := newTestGenerator(t)
	if _, err := g.CreateUnit(KindAgent, "helper", "", DefaultOptions()); err != nil {
		t.Fatal(err)
	}

	path, err := g.SavePrompt("Helper", "Be brief.")
	if err != nil {
		t.Fatalf("SavePrompt: %v", err)
	}
	if got := readFile(t, fsys, path); got != "Be brief." {
		t.Errorf("prompt = %q, want the text unchanged", got)
	}

	if _, err := g.SavePrompt("missing", "x"); !errors.HasCode(err, errors.EUnknownUnit) {
		t.Errorf("unknown unit err = %v", err)
	}
	if _, err := g.SavePrompt("helper", "  "); !errors.HasCode(err, errors.EUsage) {
		t.Errorf("empty prompt err = %v", err)
	}
}

func TestSavePromptRejectsNonAgentDirs(t *testing.T) {
	g, fsys := newTestGenerator(t)
	if _, err := g.CreateUnit(KindSubproject, "etl", "", DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if err := fsys.MkdirAll(g.UnitDir("core"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := fsys.MkdirAll(g.UnitDir("notes"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		unit string
		code errors.Code
	}{
		{"reserved directory", "core", errors.EInvalidIdentifier},
		{"subproject", "etl", errors.EUnknownUnit},
		{"directory without unit.yaml", "notes", errors.EUnknownUnit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.SavePrompt(tt.unit, "hijack"); !errors.HasCode(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if ok, _ := afero.Exists(fsys, filepath.Join(g.UnitDir(tt.unit), PromptFile)); ok {
				t.Errorf("%s was written", PromptFile)
			}
		})
	}
}

func TestPyString(t *testing.T) {
	if got := pyString("say \"hi\"\nto C:\\dir"); got != `say \"hi\" to C:\\dir` {
		t.Errorf("pyString = %q", got)
	}
}

func TestInitWorkspace(t *testing.T) {
	fsys := afero.NewMemMapFs()
	g := NewGenerator(Config{Fs: fsys, Root: "/repos/acme-platform"})

	changes, err := g.InitWorkspace("", "")
	if err != nil {
		t.Fatalf("InitWorkspace: %v", err)
	}
	want := []FileChange{
		{Path: ".monogen.yaml", Action: ActionCreated},
		{Path: "pyproject.toml", Action: ActionCreated},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
	py := readFile(t, fsys, "/repos/acme-platform/pyproject.toml")
	if !strings.Contains(py, `name = "acme_platform"`) || !strings.Contains(py, `python = "^3.12"`) {
		t.Errorf("pyproject.toml:\n%s", py)
	}

	// A unit can be generated straight into the new workspace.
	if _, err := g.CreateUnit(KindSubproject, "etl", "", DefaultOptions()); err != nil {
		t.Fatalf("CreateUnit after init: %v", err)
	}

	changes, err = g.InitWorkspace("", "")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range changes {
		if c.Action != ActionKept {
			t.Errorf("%s action = %s on second init", c.Path, c.Action)
		}
	}
}
