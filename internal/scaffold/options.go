package scaffold

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/manifest"
)

// Kind selects which unit is generated.
type Kind string

const (
	KindSubproject Kind = manifest.KindSubproject
	KindAgent      Kind = manifest.KindAgent
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSubproject:
		return KindSubproject, nil
	case KindAgent:
		return KindAgent, nil
	}
	return "", errors.Newf(errors.EUsage, "unknown unit kind %q: use %q or %q", s, KindSubproject, KindAgent)
}

// Framework is the agent SDK an agent project is wired to.
type Framework string

const (
	FrameworkSemanticKernel Framework = "semantic-kernel"
	FrameworkLlamaIndex     Framework = "llama-index"
)

// Frameworks lists the supported frameworks in menu order.
var Frameworks = []Framework{FrameworkSemanticKernel, FrameworkLlamaIndex}

// ParseFramework accepts a framework name, a short alias, or its menu
// position ("1"/"a" for Semantic Kernel, "2"/"b" for LlamaIndex).
func ParseFramework(s string) (Framework, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "a", "sk", "semantic-kernel", "semantic_kernel", "semantickernel":
		return FrameworkSemanticKernel, nil
	case "2", "b", "li", "llama-index", "llama_index", "llamaindex":
		return FrameworkLlamaIndex, nil
	}
	return "", errors.Newf(errors.EUsage, "unknown framework %q: use %q or %q",
		s, FrameworkSemanticKernel, FrameworkLlamaIndex)
}

// templateSet returns the name of the framework-specific template set.
func (f Framework) templateSet() string {
	return "agent-" + string(f)
}

// Persistence names one conversation persistence strategy that generated
// agent code instantiates.
type Persistence struct {
	Name   string
	Module string
	Class  string
	Args   string
}

// Persistence strategy names.
const (
	PersistenceJSON   = "json"
	PersistenceMemory = "memory"
	PersistenceCosmos = "cosmos"
)

var persistenceStrategies = map[string]Persistence{
	PersistenceJSON: {
		Name:   PersistenceJSON,
		Module: "core.persistence.json_file_persistence_strategy",
		Class:  "JsonFilePersistenceStrategy",
		Args:   `base_dir=os.environ.get("CONVERSATIONS_DIR", "./.tmp")`,
	},
	PersistenceMemory: {
		Name:   PersistenceMemory,
		Module: "core.persistence.in_memory_persistence_strategy",
		Class:  "InMemoryPersistenceStrategy",
	},
	PersistenceCosmos: {
		Name:   PersistenceCosmos,
		Module: "core.persistence.cosmosdb_persistence_strategy",
		Class:  "CosmosDBPersistenceStrategy",
		Args: `cosmos_endpoint=os.environ["COSMOS_ENDPOINT"], ` +
			`database_name=os.environ["COSMOS_DATABASE"], ` +
			`conversation_container_name="conversations", ` +
			`messages_container_name="messages"`,
	},
}

// LookupPersistence returns the named strategy; empty means json.
func LookupPersistence(name string) (Persistence, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = PersistenceJSON
	}
	p, ok := persistenceStrategies[name]
	if !ok {
		return Persistence{}, errors.Newf(errors.EUsage,
			"unknown persistence strategy %q: use %s, %s or %s",
			name, PersistenceJSON, PersistenceMemory, PersistenceCosmos)
	}
	return p, nil
}

// Options configures one CreateUnit call. Start from DefaultOptions; the
// zero value disables tests.
type Options struct {
	IncludeTests bool
	Overwrite    bool

	// Agent projects only.
	Framework   Framework
	Tools       []string
	AgentName   string
	Persistence string
}

// DefaultOptions returns options with tests enabled, Semantic Kernel and
// JSON-file persistence.
func DefaultOptions() Options {
	return Options{
		IncludeTests: true,
		Framework:    FrameworkSemanticKernel,
		Persistence:  PersistenceJSON,
	}
}

// validate rejects agent-only options on a subproject and fills defaults.
func (o *Options) validate(kind Kind) error {
	if kind == KindSubproject {
		if len(o.Tools) > 0 {
			return errors.New(errors.EUsage, "tools can only be declared for agent projects")
		}
		return nil
	}
	fw, err := ParseFramework(string(o.Framework))
	if err != nil {
		return err
	}
	o.Framework = fw
	if _, err := LookupPersistence(o.Persistence); err != nil {
		return err
	}
	if err := checkFreeText("agent name", o.AgentName); err != nil {
		return err
	}
	return nil
}

// checkFreeText rejects user text that would break out of the single line
// or placeholder-free context it is rendered into.
func checkFreeText(field, s string) error {
	if HasPlaceholder(s) {
		return errors.Newf(errors.EUsage, "%s must not contain {{...}} placeholders", field)
	}
	if i := strings.IndexFunc(s, unicode.IsControl); i >= 0 {
		return errors.NewWithDetails(errors.EUsage,
			fmt.Sprintf("%s must be a single line without control characters", field),
			map[string]string{"offset": strconv.Itoa(i)})
	}
	return nil
}
