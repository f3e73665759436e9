// Package scenario loads the static catalog of conversation scenarios. The
// catalog is read-only at runtime: built-in scenarios ship embedded, and a
// configured directory of TOML files can add or override entries by id.
package scenario
