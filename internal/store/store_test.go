package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"parley/internal/store"
	"parley/internal/testsupport"
)

func TestCreateSessionInsertsOpeningMessage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session, err := st.CreateSession(ctx, "workplace-conflict", "Hey, can we chat?")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected generated session id")
	}

	messages, err := st.Transcript(ctx, session.ID)
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected single opening message, got %d", len(messages))
	}
	if messages[0].Role != store.RoleAssistant || messages[0].Content != "Hey, can we chat?" || messages[0].Position != 0 {
		t.Fatalf("unexpected opening message: %#v", messages[0])
	}
}

func TestGetSessionAbsentReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	session, err := st.GetSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session != nil {
		t.Fatalf("expected nil for absent session, got %#v", session)
	}
}

func TestReplaceTranscriptRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session := testsupport.NewSession(t, st, "workplace-conflict", "Hey, can we chat?")

	want := []store.Message{
		{Role: store.RoleAssistant, Content: "Hey, can we chat?"},
		{Role: store.RoleParticipant, Content: "Sure."},
		{Role: store.RoleAssistant, Content: "I wanted to talk about the project."},
	}
	if err := st.ReplaceTranscript(ctx, session.ID, want); err != nil {
		t.Fatalf("ReplaceTranscript: %v", err)
	}

	got, err := st.Transcript(ctx, session.ID)
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i, msg := range got {
		if msg.Role != want[i].Role || msg.Content != want[i].Content {
			t.Fatalf("message %d mismatch: %#v", i, msg)
		}
		if msg.Position != i {
			t.Fatalf("message %d has position %d", i, msg.Position)
		}
	}
}

func TestReplaceTranscriptIsAllOrNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session := testsupport.NewSession(t, st, "workplace-conflict", "Hey, can we chat?")

	first := []store.Message{
		{Role: store.RoleAssistant, Content: "A0"},
		{Role: store.RoleParticipant, Content: "A1"},
	}
	second := []store.Message{
		{Role: store.RoleAssistant, Content: "B0"},
		{Role: store.RoleParticipant, Content: "B1"},
		{Role: store.RoleAssistant, Content: "B2"},
	}
	if err := st.ReplaceTranscript(ctx, session.ID, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := st.ReplaceTranscript(ctx, session.ID, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := st.Transcript(ctx, session.ID)
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(got) != len(second) {
		t.Fatalf("expected %d messages, got %d", len(second), len(got))
	}
	for i, msg := range got {
		if msg.Content != second[i].Content {
			t.Fatalf("expected no mixing of payloads, message %d = %q", i, msg.Content)
		}
	}
}

func TestReplaceTranscriptUnknownSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	err := st.ReplaceTranscript(context.Background(), "missing", []store.Message{
		{Role: store.RoleAssistant, Content: "hello"},
	})
	if !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestTranscriptUnknownSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, err := st.Transcript(context.Background(), "missing"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpsertAnalysisConvergesToOneRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session := testsupport.NewSession(t, st, "workplace-conflict", "Hey, can we chat?")

	if err := st.UpsertAnalysis(ctx, session.ID, `{"summary":"first"}`); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	firstRow, err := st.Analysis(ctx, session.ID)
	if err != nil {
		t.Fatalf("Analysis: %v", err)
	}
	if firstRow == nil {
		t.Fatal("expected analysis row after first upsert")
	}

	time.Sleep(2 * time.Millisecond)
	if err := st.UpsertAnalysis(ctx, session.ID, `{"summary":"second"}`); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	secondRow, err := st.Analysis(ctx, session.ID)
	if err != nil {
		t.Fatalf("Analysis: %v", err)
	}
	var payload struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(secondRow.Payload), &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload.Summary != "second" {
		t.Fatalf("expected later write to win, got %q", payload.Summary)
	}
	if !secondRow.UpdatedAt.After(firstRow.UpdatedAt) {
		t.Fatalf("expected updated_at bump, first=%v second=%v", firstRow.UpdatedAt, secondRow.UpdatedAt)
	}
}

func TestUpsertAnalysisUnknownSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	err := st.UpsertAnalysis(context.Background(), "missing", `{}`)
	if !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAnalysisAbsentReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	session := testsupport.NewSession(t, st, "workplace-conflict", "Hey, can we chat?")
	analysis, err := st.Analysis(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Analysis: %v", err)
	}
	if analysis != nil {
		t.Fatalf("expected nil analysis, got %#v", analysis)
	}
}

func TestListSessionsNewestFirstWithSummary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	older := testsupport.NewSession(t, st, "workplace-conflict", "Hey, can we chat?")
	time.Sleep(2 * time.Millisecond)
	newer := testsupport.NewSession(t, st, "missed-deadline", "Oh hey.")

	if err := st.ReplaceTranscript(ctx, older.ID, []store.Message{
		{Role: store.RoleAssistant, Content: "Hey, can we chat?"},
		{Role: store.RoleParticipant, Content: "Sure, what is up?"},
	}); err != nil {
		t.Fatalf("ReplaceTranscript: %v", err)
	}
	if err := st.UpsertAnalysis(ctx, older.ID, `{"summary":"done"}`); err != nil {
		t.Fatalf("UpsertAnalysis: %v", err)
	}

	summaries, err := st.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(summaries))
	}
	if summaries[0].ID != newer.ID || summaries[1].ID != older.ID {
		t.Fatalf("expected newest first, got %s then %s", summaries[0].ID, summaries[1].ID)
	}
	if summaries[1].Summary != "Sure, what is up?" {
		t.Fatalf("expected first participant message as summary, got %q", summaries[1].Summary)
	}
	if summaries[0].Summary != "" {
		t.Fatalf("expected empty summary for session with no participant turns, got %q", summaries[0].Summary)
	}
	if !summaries[1].Analyzed || summaries[0].Analyzed {
		t.Fatalf("analyzed flags wrong: %#v", summaries)
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session := testsupport.NewSession(t, st, "workplace-conflict", "Hey, can we chat?")
	if err := st.UpsertAnalysis(ctx, session.ID, `{}`); err != nil {
		t.Fatalf("UpsertAnalysis: %v", err)
	}

	removed, err := st.DeleteSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if !removed {
		t.Fatal("expected session to be removed")
	}

	if _, err := st.Transcript(ctx, session.ID); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected transcript gone, got %v", err)
	}

	stats, err := st.CollectStats(ctx)
	if err != nil {
		t.Fatalf("CollectStats: %v", err)
	}
	if stats.Sessions != 0 || stats.Messages != 0 || stats.Analyzed != 0 {
		t.Fatalf("expected cascade to clear rows, got %#v", stats)
	}
}
