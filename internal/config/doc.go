// Package config manages monogen settings. Values come, lowest precedence
// first, from built-in defaults, the user file ~/.monogen/config.yaml, the
// workspace file .monogen.yaml, a .env file and MONOGEN_* environment
// variables.
package config
