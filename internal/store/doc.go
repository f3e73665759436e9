// Package store persists sessions, their ordered transcripts, and analysis
// results in SQLite. Transcript replacement and session creation are
// transactional; the analysis write is a native upsert keyed by session id.
package store
