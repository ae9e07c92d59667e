package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Editor returns the user's editor command: $VISUAL, then $EDITOR, then the
// platform default. The value may carry arguments ("code --wait").
func Editor() []string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	if runtime.GOOS == "windows" {
		return []string{"notepad"}
	}
	return []string{"vi"}
}

// OpenEditor opens filePath in the user's editor attached to the terminal
// and waits for it to exit.
func OpenEditor(ctx context.Context, filePath string) error {
	editor := Editor()
	args := append(editor[1:], filePath)
	cmd := exec.CommandContext(ctx, editor[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running editor %s: %w", editor[0], err)
	}
	return nil
}
