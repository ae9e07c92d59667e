//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/agentx-labs/monogen/internal/cli"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir      string // HOME, holds ~/.monogen/config.yaml
	WorkspaceDir string // monorepo root passed with --root
	BinDir       string // prepended to PATH, holds fake tools
}

// setupTestEnv creates isolated temp directories and points HOME and PATH at
// them so no real user configuration or tool is touched.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:      t.TempDir(),
		WorkspaceDir: t.TempDir(),
		BinDir:       t.TempDir(),
	}
	t.Setenv("HOME", env.HomeDir)
	t.Setenv("USERPROFILE", env.HomeDir)
	t.Setenv("PATH", env.BinDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return env
}

// installFakePoetry writes a poetry script that records its arguments to
// poetry.log in the workspace and exits with exitCode.
func installFakePoetry(t *testing.T, env *testEnv, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	logPath := filepath.Join(env.WorkspaceDir, "poetry.log")
	script := "#!/bin/sh\necho \"$@\" >> \"" + logPath + "\"\n"
	if exitCode != 0 {
		script += "echo 'resolver failed' >&2\n"
	}
	script += "exit " + string(rune('0'+exitCode)) + "\n"
	writeFile(t, filepath.Join(env.BinDir, "poetry"), script)
	if err := os.Chmod(filepath.Join(env.BinDir, "poetry"), 0755); err != nil {
		t.Fatal(err)
	}
	return logPath
}

type result struct {
	Code   int
	Stdout string
	Stderr string
}

// runCLI executes the command tree in-process against the test workspace.
func runCLI(t *testing.T, env *testEnv, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--root", env.WorkspaceDir, "--no-color"}, args...)
	code := cli.Run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return result{Code: code, Stdout: out.String(), Stderr: errOut.String()}
}

// mustRun is runCLI that fails the test on a non-zero exit.
func mustRun(t *testing.T, env *testEnv, args ...string) result {
	t.Helper()
	res := runCLI(t, env, "", args...)
	if res.Code != 0 {
		t.Fatalf("%v: exit %d\nstdout:\n%s\nstderr:\n%s", args, res.Code, res.Stdout, res.Stderr)
	}
	return res
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file %s to exist: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s not to exist", path)
	}
}

func countMarker(content, marker string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == marker {
			n++
		}
	}
	return n
}
