package manifest

// FileName is the manifest file name inside a unit directory.
const FileName = "unit.yaml"

// Unit kinds.
const (
	KindSubproject = "subproject"
	KindAgent      = "agent"
)

// ValidKinds contains all valid unit kinds.
var ValidKinds = []string{KindSubproject, KindAgent}

// UnitManifest describes one generated unit.
type UnitManifest struct {
	Name        string         `yaml:"name" json:"name"`
	Kind        string         `yaml:"kind" json:"kind"`
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Version     string         `yaml:"version" json:"version"`
	Tests       bool           `yaml:"tests" json:"tests"`
	Generator   GeneratorInfo  `yaml:"generator" json:"generator"`
	Agent       *AgentSettings `yaml:"agent,omitempty" json:"agent,omitempty"`
}

// GeneratorInfo records which tool build produced the unit and when.
type GeneratorInfo struct {
	Name      string `yaml:"name" json:"name"`
	Version   string `yaml:"version" json:"version"`
	CreatedAt string `yaml:"created_at" json:"created_at"` // RFC 3339
}

// AgentSettings holds the agent-project choices.
type AgentSettings struct {
	Name        string `yaml:"name" json:"name"`
	Framework   string `yaml:"framework" json:"framework"`
	Persistence string `yaml:"persistence" json:"persistence"`
	Tools       []Tool `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// Tool is one registered agent tool.
type Tool struct {
	Name     string `yaml:"name" json:"name"`
	Function string `yaml:"function" json:"function"`
	Title    string `yaml:"title" json:"title"`
}
