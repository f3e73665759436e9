package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"parley/internal/scenario"
	"parley/internal/services"
	"parley/internal/store"
)

type messagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sessionResponse struct {
	SessionID  string           `json:"session_id"`
	ScenarioID string           `json:"scenario_id"`
	CreatedAt  time.Time        `json:"created_at"`
	Transcript []messagePayload `json:"transcript"`
	Analysis   json.RawMessage  `json:"analysis"`
}

func toMessagePayloads(messages []store.Message) []messagePayload {
	out := make([]messagePayload, 0, len(messages))
	for _, msg := range messages {
		out = append(out, messagePayload{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}

func (s *apiServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ScenarioID = strings.TrimSpace(req.ScenarioID)
	if !scenario.ValidID(req.ScenarioID) {
		s.writeError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}
	sc, ok := s.daemon.catalog.Get(req.ScenarioID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "scenario not found")
		return
	}

	session, err := s.daemon.store.CreateSession(r.Context(), sc.ID, sc.OpeningMessage)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, struct {
		SessionID  string           `json:"session_id"`
		Scenario   scenario.Scenario `json:"scenario"`
		Transcript []messagePayload `json:"transcript"`
	}{
		SessionID: session.ID,
		Scenario:  sc,
		Transcript: []messagePayload{
			{Role: string(store.RoleAssistant), Content: sc.OpeningMessage},
		},
	})
}

func (s *apiServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session, err := s.daemon.store.GetSession(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if session == nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	messages, err := s.daemon.store.Transcript(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := sessionResponse{
		SessionID:  session.ID,
		ScenarioID: session.ScenarioID,
		CreatedAt:  session.CreatedAt,
		Transcript: toMessagePayloads(messages),
	}
	if analysis, err := s.daemon.store.Analysis(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	} else if analysis != nil {
		resp.Analysis = json.RawMessage(analysis.Payload)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleReplaceTranscript(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		Messages []messagePayload `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Every session starts with the scenario opening line; an empty replacement
	// would silently strip it, so reject it outright.
	if len(req.Messages) == 0 {
		s.writeError(w, http.StatusBadRequest, "transcript requires at least one message")
		return
	}

	messages := make([]store.Message, 0, len(req.Messages))
	for i, msg := range req.Messages {
		if !store.ValidRole(msg.Role) {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("message %d: invalid role %q", i, msg.Role))
			return
		}
		if strings.TrimSpace(msg.Content) == "" {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("message %d: empty content", i))
			return
		}
		messages = append(messages, store.Message{Role: store.Role(msg.Role), Content: msg.Content})
	}

	if err := s.daemon.store.ReplaceTranscript(r.Context(), id, messages); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session, err := s.daemon.store.GetSession(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if session == nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	s.daemon.runner.Run(id)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *apiServer) handleConverse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message required")
		return
	}

	session, err := s.daemon.store.GetSession(r.Context(), req.SessionID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if session == nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	sc, ok := s.daemon.catalog.Get(session.ScenarioID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "scenario not found")
		return
	}

	ctx := services.WithSessionID(r.Context(), session.ID)
	r = r.WithContext(ctx)
	prior, err := s.daemon.store.Transcript(ctx, session.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	reply, err := s.daemon.engine.NextTurn(ctx, &sc, prior, req.Message)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	updated := append(prior, store.Message{Role: store.RoleParticipant, Content: req.Message})
	if strings.TrimSpace(reply) != "" {
		updated = append(updated, store.Message{Role: store.RoleAssistant, Content: reply})
	}
	if err := s.daemon.store.ReplaceTranscript(ctx, session.ID, updated); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *apiServer) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, struct {
		Scenarios []scenario.Scenario `json:"scenarios"`
	}{Scenarios: s.daemon.catalog.List()})
}
