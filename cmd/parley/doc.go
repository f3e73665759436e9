// Package main hosts the parley CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the daemon (serve), queries it over its
// HTTP API (status, sessions, scenarios), and scaffolds configuration. It
// centralizes configuration resolution so subcommands can focus on user
// experience instead of wiring.
package main
