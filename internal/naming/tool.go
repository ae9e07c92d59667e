package naming

import (
	"strings"

	"github.com/agentx-labs/monogen/internal/errors"
)

// ToolName is the derived naming for one agent tool.
type ToolName struct {
	Name     string // trimmed input
	Function string // python function identifier, e.g. get_weather
	Title    string // registration and capability title, e.g. Get Weather
}

// shadowedNames are lowercase names the generated agent module and tool stubs
// rely on; a tool function with one of these names would replace them.
var shadowedNames = []string{"os", "int", "str", "super", "query"}

// SplitList splits a comma-separated list, trimming whitespace and dropping
// empty entries. Order is preserved.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ToolNames derives function identifiers and titles for an ordered list of
// tool names. Entries that are blank after trimming are skipped; a name that
// does not yield a valid identifier, is a Python keyword, shadows a name the
// generated code uses, or collides with another entry is an error.
func ToolNames(names []string) ([]ToolName, error) {
	seen := make(map[string]string, len(names))
	out := make([]ToolName, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		fn := Slugify(n)
		if fn == "" || fn[0] < 'a' || fn[0] > 'z' {
			return nil, errors.Newf(errors.EInvalidIdentifier,
				"tool name %q does not produce a valid function identifier", n)
		}
		if IsReserved(fn, pythonKeywords) {
			return nil, errors.Newf(errors.EInvalidIdentifier,
				"tool name %q maps to the Python keyword %q", n, fn)
		}
		if IsReserved(fn, shadowedNames) {
			return nil, errors.Newf(errors.EInvalidIdentifier,
				"tool name %q maps to %q, which the generated agent code already uses", n, fn)
		}
		if prev, ok := seen[fn]; ok {
			return nil, errors.Newf(errors.EInvalidIdentifier,
				"tool names %q and %q both map to function %q", prev, n, fn)
		}
		seen[fn] = n
		out = append(out, ToolName{Name: n, Function: fn, Title: Title(fn)})
	}
	return out, nil
}
