package server

import (
	"crypto/subtle"
	"net/http"
)

// requireCronSecret protects the trigger endpoints with the shared cron
// secret. An unset secret disables the endpoints entirely; a mismatch is
// rejected before any side effect happens.
func (s *Server) requireCronSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cronSecret == "" {
			s.log.Warn("Cron endpoint hit but CRON_SECRET not set")
			s.respondError(w, http.StatusForbidden, "Cron triggers are disabled. Set CRON_SECRET to enable.")
			return
		}

		expected := "Bearer " + s.cronSecret
		auth := r.Header.Get("Authorization")
		if subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) != 1 {
			s.log.Warn("Invalid cron secret attempt", "remote_addr", r.RemoteAddr)
			s.respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// securityHeaders adds baseline security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
