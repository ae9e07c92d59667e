//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// TestFullFlow drives the CLI through a typical session:
// init workspace -> create subproject and agent -> add dependency -> save prompt -> list/show/doctor.
func TestFullFlow(t *testing.T) {
	env := setupTestEnv(t)
	logPath := installFakePoetry(t, env, 0)
	ws := env.WorkspaceDir

	// Step 1: Initialize the workspace.
	mustRun(t, env, "init", "--name", "acme")
	assertFileExists(t, filepath.Join(ws, ".monogen.yaml"))
	assertFileExists(t, filepath.Join(ws, "pyproject.toml"))

	// Step 2: Create a subproject and an agent.
	mustRun(t, env, "create", "subproject", "Data Pipeline")
	mustRun(t, env, "create", "agent", "weather", "--tools", "get_weather, get_forecast", "--persistence", "memory")

	for _, rel := range []string{
		"data_pipeline/main.py",
		"data_pipeline/tests/test_main.py",
		"weather/agent.py",
		"weather/tools.py",
		"weather/prompt.txt",
		"weather/run.sh",
		"weather/unit.yaml",
	} {
		assertFileExists(t, filepath.Join(ws, rel))
	}
	assertNotExists(t, filepath.Join(ws, "weather", "main.py"))

	info, err := os.Stat(filepath.Join(ws, "weather", "run.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Errorf("run.sh mode = %v, want executable", info.Mode())
	}

	// Step 3: Shared files stay parseable and carry one section per unit.
	py := readFile(t, filepath.Join(ws, "pyproject.toml"))
	var doc map[string]any
	if err := toml.Unmarshal([]byte(py), &doc); err != nil {
		t.Fatalf("pyproject.toml does not parse: %v\n%s", err, py)
	}
	ci := readFile(t, filepath.Join(ws, ".github", "workflows", "ci.yml"))
	var wf map[string]any
	if err := yaml.Unmarshal([]byte(ci), &wf); err != nil {
		t.Fatalf("ci.yml does not parse: %v\n%s", err, ci)
	}
	for _, slug := range []string{"data_pipeline", "weather"} {
		if n := countMarker(py, "[tool.poetry.group."+slug+"]"); n != 1 {
			t.Errorf("pyproject.toml has %d %s groups", n, slug)
		}
		if n := countMarker(ci, "# --- "+slug+" ---"); n != 1 {
			t.Errorf("ci.yml has %d %s sections", n, slug)
		}
	}

	// Step 4: Add a dependency through the (fake) dependency manager.
	res := mustRun(t, env, "dep", "add", "weather", "httpx", "^0.27")
	if !strings.Contains(res.Stdout, "Added httpx to weather") {
		t.Errorf("dep add stdout:\n%s", res.Stdout)
	}
	if got := strings.TrimSpace(readFile(t, logPath)); got != "add --group weather httpx@^0.27" {
		t.Errorf("poetry invoked with %q", got)
	}

	// Step 5: Replace the prompt.
	mustRun(t, env, "prompt", "save", "weather", "--text", "You only talk about weather.")
	if got := readFile(t, filepath.Join(ws, "weather", "prompt.txt")); got != "You only talk about weather." {
		t.Errorf("prompt.txt = %q", got)
	}

	// Step 6: Inspect.
	res = mustRun(t, env, "list")
	for _, want := range []string{"data_pipeline", "weather", "semantic-kernel"} {
		if !strings.Contains(res.Stdout, want) {
			t.Errorf("list output missing %q:\n%s", want, res.Stdout)
		}
	}
	res = mustRun(t, env, "show", "weather")
	for _, want := range []string{"Get Weather (get_weather)", "Persistence: memory", "streamlit"} {
		if !strings.Contains(res.Stdout, want) {
			t.Errorf("show output missing %q:\n%s", want, res.Stdout)
		}
	}
	res = mustRun(t, env, "doctor")
	if strings.Contains(res.Stdout, "FAIL") {
		t.Errorf("doctor reported failures:\n%s", res.Stdout)
	}

	// Step 7: Re-creating is refused and leaves the shared files untouched.
	res = runCLI(t, env, "", "create", "subproject", "data-pipeline")
	if res.Code != 1 || !strings.Contains(res.Stderr, "E_DUPLICATE_UNIT") {
		t.Errorf("duplicate create: exit %d\n%s", res.Code, res.Stderr)
	}
	if readFile(t, filepath.Join(ws, "pyproject.toml")) != py {
		t.Error("pyproject.toml changed by a refused create")
	}
}

func TestDepAddExternalFailure(t *testing.T) {
	env := setupTestEnv(t)
	installFakePoetry(t, env, 1)
	mustRun(t, env, "create", "subproject", "etl", "--no-tests")

	res := runCLI(t, env, "", "dep", "add", "etl", "requests")
	if res.Code != 1 || !strings.Contains(res.Stderr, "E_EXTERNAL_TOOL") {
		t.Fatalf("exit %d, stderr:\n%s", res.Code, res.Stderr)
	}
	if !strings.Contains(res.Stderr, "resolver failed") {
		t.Errorf("stderr does not pass through the tool output:\n%s", res.Stderr)
	}
}

func TestConfigWorkspaceOverride(t *testing.T) {
	env := setupTestEnv(t)
	mustRun(t, env, "config", "set", "ledger.build", "build.mk", "--workspace")
	mustRun(t, env, "create", "subproject", "etl")

	assertFileExists(t, filepath.Join(env.WorkspaceDir, "build.mk"))
	assertNotExists(t, filepath.Join(env.WorkspaceDir, "Makefile"))

	res := mustRun(t, env, "config", "get", "ledger.build")
	if strings.TrimSpace(res.Stdout) != "build.mk" {
		t.Errorf("config get = %q", res.Stdout)
	}
}
