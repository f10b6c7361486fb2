package server

import (
	"net/http"

	"blogsmith/internal/config"
)

// requireAuth protects the generation API with a bearer token when token
// auth is configured. In open mode every request passes.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Server.AuthMode == config.AuthModeOpen {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.respondError(w, r, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		if authHeader != "Bearer "+s.cfg.Server.APISecret {
			s.log.Warn("Rejected request with invalid API secret", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			s.respondError(w, r, http.StatusUnauthorized, "Invalid API secret")
			return
		}

		next.ServeHTTP(w, r)
	})
}
