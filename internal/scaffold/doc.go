// Package scaffold generates units from embedded template sets. It powers the
// "create" commands: it normalizes the unit identifier, renders every
// {{TOKEN}} placeholder in memory, refuses to touch an existing unit
// directory, then writes the unit's files and appends its sections to the
// shared ledgers. Agent projects layer framework-specific templates over the
// generic subproject set.
package scaffold
