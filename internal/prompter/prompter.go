// Package prompter asks for missing command inputs on a line-oriented
// terminal: free text, yes/no and numbered menus.
package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/agentx-labs/monogen/internal/errors"
)

// Prompter reads answers from r and writes questions to w.
type Prompter struct {
	r *bufio.Reader
	w io.Writer
}

// New returns a Prompter over r and w.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{r: bufio.NewReader(r), w: w}
}

// readLine returns the next trimmed line. End of input yields "" so that
// callers fall back to their defaults.
func (p *Prompter) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(errors.EIO, "reading answer", err)
	}
	return strings.TrimSpace(line), nil
}

// Ask prints label and returns the answer, or def when the answer is empty.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.w, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.w, "%s: ", label)
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// AskRequired is Ask without a default that rejects an empty answer.
func (p *Prompter) AskRequired(label string) (string, error) {
	answer, err := p.Ask(label, "")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", errors.Newf(errors.EUsage, "%s is required", strings.ToLower(label))
	}
	return answer, nil
}

// AskYesNo asks a y/n question. An empty answer returns def.
func (p *Prompter) AskYesNo(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.w, "%s (%s): ", label, hint)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, errors.Newf(errors.EUsage, "invalid answer %q: answer y or n", line)
}

// Select presents a numbered list and returns the selected index. Items may
// also be chosen by letter (a, b, ...). An empty answer returns def.
func (p *Prompter) Select(label string, items []string, def int) (int, error) {
	fmt.Fprintf(p.w, "\n%s\n", label)
	for i, item := range items {
		fmt.Fprintf(p.w, "  %d) %s\n", i+1, item)
	}
	fmt.Fprintf(p.w, "Enter number [1-%d] (default %d): ", len(items), def+1)

	line, err := p.readLine()
	if err != nil {
		return 0, err
	}
	if line == "" {
		return def, nil
	}
	if len(line) == 1 {
		c := strings.ToLower(line)[0]
		if c >= 'a' && int(c-'a') < len(items) {
			return int(c - 'a'), nil
		}
	}
	num, err := strconv.Atoi(line)
	if err != nil || num < 1 || num > len(items) {
		return 0, errors.Newf(errors.EUsage, "invalid selection %q: choose 1-%d", line, len(items))
	}
	return num - 1, nil
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
