// Package daemon hosts the session HTTP API and owns the lifecycle of its
// collaborators: the SQLite store, the scenario catalog, the conversation
// engine, the background analysis runner, and the speech services. A lock
// file enforces a single running instance; shutdown stops the listener and
// drains in-flight analysis runs before the store closes.
package daemon
