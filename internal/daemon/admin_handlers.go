package daemon

import (
	"net/http"
	"time"
)

// summaryLimit truncates the derived one-line summary in the staff listing.
const summaryLimit = 80

type sessionListEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Summary   string    `json:"summary"`
	Analyzed  bool      `json:"analyzed"`
}

func truncateSummary(text string) string {
	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}
	return string(runes[:summaryLimit]) + "..."
}

func (s *apiServer) handleAdminListSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.daemon.store.ListSessions(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	entries := make([]sessionListEntry, 0, len(summaries))
	for _, summary := range summaries {
		entries = append(entries, sessionListEntry{
			ID:        summary.ID,
			CreatedAt: summary.CreatedAt,
			Summary:   truncateSummary(summary.Summary),
			Analyzed:  summary.Analyzed,
		})
	}
	s.writeJSON(w, http.StatusOK, struct {
		Sessions []sessionListEntry `json:"sessions"`
	}{Sessions: entries})
}

func (s *apiServer) handleAdminGetSession(w http.ResponseWriter, r *http.Request) {
	// Staff get the same full view as participants.
	s.handleGetSession(w, r)
}

func (s *apiServer) handleAdminDeleteSession(w http.ResponseWriter, r *http.Request) {
	removed, err := s.daemon.store.DeleteSession(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
