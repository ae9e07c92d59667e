// Package workspace locates the monorepo root and the units generated in it.
package workspace
