package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"reviewd/internal/domain/user"
	"reviewd/internal/usecase/auth"
)

type ctxUserKey struct{}

func userFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(ctxUserKey{}).(user.User)
	return u, ok
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}

	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// requireUser resolves the bearer token to an active user and stashes it in
// the request context. Blacklist, signature and expiry failures are all 401;
// an inactive principal is 400, matching the login path.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		current, err := s.authenticator.CurrentUser(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInactiveUser):
				writeError(w, http.StatusBadRequest, "inactive user")
			case errors.Is(err, auth.ErrUnauthorized):
				writeError(w, http.StatusUnauthorized, "could not validate credentials")
			default:
				writeError(w, http.StatusInternalServerError, "authentication failed")
			}
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey{}, current)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors honors the configured allow-origins list; "*" allows everything.
func cors(allowOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, origin := range allowOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "*" {
			allowAll = true
			continue
		}
		if trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else if _, ok := allowed[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
