package admin

import (
	"net/http"
	"strings"

	"github.com/catalogd/catalogd/cfg"
)

// AuthMiddleware validates PSK authentication for admin endpoints. Auth is
// skipped entirely when no PSK is configured, matching the teacher's
// cluster-auth-optional posture for a single-tenant service.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		psk := cfg.Config.Admin.PSK
		if psk == "" {
			next.ServeHTTP(w, r)
			return
		}

		provided := r.Header.Get("X-Catalogd-Secret")
		if provided == "" {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authentication header")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}
			provided = parts[1]
		}

		if provided != psk {
			writeError(w, http.StatusUnauthorized, "invalid secret")
			return
		}

		next.ServeHTTP(w, r)
	})
}
