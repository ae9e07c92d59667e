// Package manifest handles the unit.yaml record written into every generated
// unit. It provides the typed model, YAML parsing and serialization, and
// validation against an embedded JSON Schema.
package manifest
