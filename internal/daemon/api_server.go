package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"parley/internal/config"
	"parley/internal/logging"
	"parley/internal/services"
	"parley/internal/store"
)

type apiServer struct {
	bind       string
	adminToken string
	logger     *slog.Logger
	daemon     *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address required")
	}

	srv := &apiServer{
		bind:       bind,
		adminToken: strings.TrimSpace(cfg.Admin.Token),
		logger:     logger,
		daemon:     d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("POST /api/sessions", srv.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", srv.handleGetSession)
	mux.HandleFunc("PUT /api/sessions/{id}/transcript", srv.handleReplaceTranscript)
	mux.HandleFunc("POST /api/sessions/{id}/analyze", srv.handleAnalyze)
	mux.HandleFunc("POST /api/converse", srv.handleConverse)
	mux.HandleFunc("POST /api/transcribe", srv.handleTranscribe)
	mux.HandleFunc("POST /api/speak", srv.handleSpeak)
	mux.HandleFunc("GET /api/scenarios", srv.handleListScenarios)
	mux.HandleFunc("GET /api/admin/sessions", srv.requireStaff(srv.handleAdminListSessions))
	mux.HandleFunc("GET /api/admin/sessions/{id}", srv.requireStaff(srv.handleAdminGetSession))
	mux.HandleFunc("DELETE /api/admin/sessions/{id}", srv.requireStaff(srv.handleAdminDeleteSession))

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type statusResponse struct {
	Running       bool   `json:"running"`
	DatabasePath  string `json:"database_path"`
	Scenarios     int    `json:"scenarios"`
	LLMConfigured bool   `json:"llm_configured"`
	Sessions      int    `json:"sessions"`
	Messages      int    `json:"messages"`
	Analyzed      int    `json:"analyzed"`
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, statusResponse{
		Running:       status.Running,
		DatabasePath:  status.DatabasePath,
		Scenarios:     status.Scenarios,
		LLMConfigured: status.LLMConfigured,
		Sessions:      status.Stats.Sessions,
		Messages:      status.Stats.Messages,
		Analyzed:      status.Stats.Analyzed,
	})
}

// withRequestID stamps every request with a correlation id so log lines
// emitted while serving it can be tied back to the response the client saw.
func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps classified service errors onto HTTP statuses. Store
// sentinel errors are normalized to not-found first.
func (s *apiServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(r.Context(), s.log()).Error("request failed", logging.Error(err))
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
