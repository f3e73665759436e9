package daemon

import (
	"net/http"
	"strings"
)

// requireStaff guards the staff endpoints with the shared bearer token. An
// empty configured token disables the feature entirely (503) rather than
// defaulting open; a missing or wrong credential is rejected with 401.
func (s *apiServer) requireStaff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			s.writeError(w, http.StatusServiceUnavailable, "staff access not configured")
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.adminToken {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}
