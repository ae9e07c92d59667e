// Package naming normalizes free-form identifiers into the forms used across
// generated files: a lowercase underscore slug for directories, ledger keys and
// Python modules, a capitalized concatenation for class names, and a
// space-joined title for human-readable text.
package naming
