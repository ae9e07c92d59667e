// Package ledger manages the shared configuration files that accumulate one
// section per generated unit: the dependency manifest, the build file and the
// CI pipeline. Sections are located by a marker line unique to the unit's
// slug. Appends are textual and idempotent: a ledger that already carries a
// unit's marker is never written again for that unit, and existing content is
// never rewritten or reformatted.
package ledger
