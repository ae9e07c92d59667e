// Package deps registers third-party packages against one generated unit by
// invoking the workspace's dependency manager scoped to the unit's group.
package deps
