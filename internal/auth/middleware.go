package auth

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Middleware rejects requests without a resolvable identity and stores
// the identity on the request context for handlers downstream.
func Middleware(resolver *Resolver, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			who, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected request")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"type":   "unauthorized",
					"detail": "missing or invalid credentials",
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), who)))
		})
	}
}
