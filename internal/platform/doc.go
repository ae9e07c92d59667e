// Package platform holds the few operations that differ between operating
// systems: setting file modes on generated scripts and launching the user's
// editor.
package platform
