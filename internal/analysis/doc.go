// Package analysis evaluates session transcripts against a fixed
// communication rubric using the model client, persisting the structured
// result (or a raw fallback) through the store's analysis upsert. Runs are
// fire-and-forget: callers get an immediate acknowledgement and observe
// completion through the presence of an analysis row.
package analysis
