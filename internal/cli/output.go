package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentx-labs/monogen/internal/scaffold"
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleAdded   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleRemoved = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// render applies style unless --no-color is set.
func render(style lipgloss.Style, s string) string {
	if flagNoColor {
		return s
	}
	return style.Render(s)
}

// status renders a doctor-style status tag.
func status(tag string) string {
	switch tag {
	case "OK":
		return "[" + render(styleAdded, " OK ") + "]"
	case "FAIL":
		return "[" + render(styleRemoved, "FAIL") + "]"
	case "MISS":
		return "[" + render(styleWarn, "MISS") + "]"
	default:
		return "[" + render(styleMuted, tag) + "]"
	}
}

func fileMark(action string) string {
	switch action {
	case scaffold.ActionRemoved:
		return render(styleRemoved, "-")
	case scaffold.ActionOverwritten:
		return render(styleWarn, "~")
	case scaffold.ActionKept:
		return render(styleMuted, "=")
	default:
		return render(styleAdded, "+")
	}
}

func printFileChanges(w io.Writer, changes []scaffold.FileChange) {
	for _, f := range changes {
		line := fmt.Sprintf("  %s %s", fileMark(f.Action), f.Path)
		if f.Action != scaffold.ActionCreated {
			line += " " + render(styleMuted, "("+f.Action+")")
		}
		fmt.Fprintln(w, line)
	}
}

func printResult(w io.Writer, root string, result *scaffold.Result) {
	dir := result.Dir
	if rel, err := filepath.Rel(root, result.Dir); err == nil {
		dir = rel
	}
	fmt.Fprintf(w, "%s %s %s at %s/\n",
		render(styleTitle, "Created"), result.Kind, render(styleTitle, result.Unit.Slug), dir)
	printFileChanges(w, result.Files)

	if len(result.Ledgers) > 0 {
		fmt.Fprintln(w, "\nShared files:")
		for _, l := range result.Ledgers {
			path := l.Path
			if rel, err := filepath.Rel(root, l.Path); err == nil {
				path = rel
			}
			if l.Appended {
				fmt.Fprintf(w, "  %s %s section added\n", render(styleAdded, "+"), path)
			} else {
				fmt.Fprintf(w, "  %s %s %s\n", render(styleMuted, "="), path, render(styleMuted, "(section already present)"))
			}
		}
	}
}
