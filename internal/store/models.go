package store

import (
	"strings"
	"time"
)

// Role identifies who spoke a transcript message.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleAssistant   Role = "assistant"
)

// ValidRole reports whether a role value is one of the two known speakers.
func ValidRole(value string) bool {
	switch Role(strings.TrimSpace(value)) {
	case RoleParticipant, RoleAssistant:
		return true
	}
	return false
}

// Session is one end-to-end assessment conversation instance. Immutable once
// created; its transcript and analysis are owned rows keyed by its id.
type Session struct {
	ID         string
	ScenarioID string
	CreatedAt  time.Time
}

// Message is a single transcript turn. Position defines the total order of the
// conversation within a session.
type Message struct {
	Role     Role
	Content  string
	Position int
}

// Analysis is the rubric-scored evaluation of a session transcript. Payload is
// an opaque JSON document; its schema is a contract with the scoring engine,
// not enforced here.
type Analysis struct {
	SessionID string
	Payload   string
	UpdatedAt time.Time
}

// SessionSummary is the staff-dashboard listing row: the session plus a
// derived one-line summary (first participant message).
type SessionSummary struct {
	ID        string
	CreatedAt time.Time
	Summary   string
	Analyzed  bool
}

// Stats aggregates store contents for diagnostics.
type Stats struct {
	Sessions int
	Messages int
	Analyzed int
}
