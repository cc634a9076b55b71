package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fkilld/tokenguard"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity injected by [Guard], if any.
func IdentityFromContext(ctx context.Context) (*tokenguard.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*tokenguard.Identity)
	return id, ok
}

// Guard returns middleware that rejects requests lacking a valid access
// token. The token location is taken from the engine's transport config
// (Authorization header with a Bearer prefix by default).
func Guard(engine *tokenguard.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			transport := engine.Transport()
			token, ok := extractToken(r.Header.Get(transport.HeaderName), transport.SchemePrefix)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := engine.VerifyAccess(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(value, scheme string) (string, bool) {
	if scheme != "" {
		prefix := scheme + " "
		if !strings.HasPrefix(value, prefix) {
			return "", false
		}
		value = value[len(prefix):]
	}
	if value == "" {
		return "", false
	}
	return value, true
}
