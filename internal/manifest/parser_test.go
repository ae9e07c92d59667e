package manifest

import (
	"testing"
)

func TestParseFile(t *testing.T) {
	m, err := ParseFile(testFs(), "valid-agent.yaml")
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if m.Name != "weather_bot" {
		t.Errorf("Name = %q, want %q", m.Name, "weather_bot")
	}
	if m.Kind != KindAgent {
		t.Errorf("Kind = %q, want %q", m.Kind, KindAgent)
	}
	if m.Agent == nil {
		t.Fatal("Agent should be set")
	}
	if m.Agent.Framework != "llama-index" {
		t.Errorf("Framework = %q", m.Agent.Framework)
	}
	if len(m.Agent.Tools) != 2 || m.Agent.Tools[1].Title != "Get Forecast" {
		t.Errorf("Tools = %+v", m.Agent.Tools)
	}
}

func TestParseSubprojectHasNoAgent(t *testing.T) {
	m, err := ParseFile(testFs(), "valid-subproject.yaml")
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if m.Agent != nil {
		t.Errorf("Agent = %+v, want nil", m.Agent)
	}
	if !m.Tests {
		t.Error("Tests should be true")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("kind: [")); err == nil {
		t.Error("expected parse error")
	}
}
