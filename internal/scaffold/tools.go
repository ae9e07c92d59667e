package scaffold

import (
	"strings"

	"github.com/agentx-labs/monogen/internal/naming"
)

// ToolArtifact is everything generated for one declared tool. All three
// snippets are rendered together so a tool is never partially emitted.
type ToolArtifact struct {
	naming.ToolName
	Stub         string // function stub in tools.py
	Registration string // entry in the agent's tool mapping
	Capability   string // line in prompt.txt
}

// DeriveToolArtifacts renders the stub, registration entry and capability
// line for each tool name using the built-in templates. Input order is kept;
// blank names are dropped and colliding names are E_INVALID_IDENTIFIER.
func DeriveToolArtifacts(names []string) ([]ToolArtifact, error) {
	set, err := newLayeredSet(DefaultTemplates(), setAgentCommon)
	if err != nil {
		return nil, err
	}
	return deriveToolArtifacts(set, names)
}

func deriveToolArtifacts(set *layeredSet, names []string) ([]ToolArtifact, error) {
	tools, err := naming.ToolNames(names)
	if err != nil {
		return nil, err
	}
	fragments := make(map[string]string, 3)
	for _, name := range []string{"tool_function", "tool_registration", "capability"} {
		text, err := set.mustLookup(fragmentsDir + "/" + name + templateExt)
		if err != nil {
			return nil, err
		}
		fragments[name] = text
	}

	out := make([]ToolArtifact, 0, len(tools))
	for _, t := range tools {
		values := map[string]string{
			"TOOL_FUNCTION": t.Function,
			"TOOL_TITLE":    t.Title,
		}
		a := ToolArtifact{ToolName: t}
		if a.Stub, err = Render("tool_function", fragments["tool_function"], values); err != nil {
			return nil, err
		}
		if a.Registration, err = Render("tool_registration", fragments["tool_registration"], values); err != nil {
			return nil, err
		}
		if a.Capability, err = Render("capability", fragments["capability"], values); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// toolValues returns the aggregate placeholder values for a list of tools.
func toolValues(slug string, tools []ToolArtifact) map[string]string {
	if len(tools) == 0 {
		return map[string]string{
			"CAPABILITIES":        "(no tools declared yet)",
			"TOOL_FUNCTIONS":      "",
			"TOOL_FUNCTION_NAMES": "",
			"TOOL_IMPORT_LINE":    "",
			"TOOL_REGISTRATIONS":  "",
		}
	}
	var stubs, regs, caps, fns, quoted []string
	for _, t := range tools {
		stubs = append(stubs, strings.TrimRight(t.Stub, "\n"))
		regs = append(regs, strings.TrimRight(t.Registration, "\n"))
		caps = append(caps, strings.TrimRight(t.Capability, "\n"))
		fns = append(fns, t.Function)
		quoted = append(quoted, `"`+t.Function+`"`)
	}
	return map[string]string{
		"CAPABILITIES":        strings.Join(caps, "\n"),
		"TOOL_FUNCTIONS":      strings.Join(stubs, "\n"),
		"TOOL_FUNCTION_NAMES": strings.Join(quoted, ", "),
		"TOOL_IMPORT_LINE":    "from " + slug + ".tools import " + strings.Join(fns, ", "),
		"TOOL_REGISTRATIONS":  strings.Join(regs, "\n"),
	}
}
