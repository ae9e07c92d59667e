// Package cli defines the Cobra command tree for the monogen CLI. Each file
// in this package registers one top-level command (create, dep, prompt, list,
// etc.) with the root command. Command implementations delegate to internal
// packages for generation logic and only handle flag parsing, prompting and
// output formatting.
package cli
