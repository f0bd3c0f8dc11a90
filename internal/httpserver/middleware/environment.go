package middleware

import (
	"context"
	"net/http"
	"strings"
)

type environmentContextKey struct{}

const defaultEnvironment = "local"

// Environment attaches the deployment environment label to the request
// context. Empty values default to "local".
func Environment(value string) func(http.Handler) http.Handler {
	label := strings.ToLower(strings.TrimSpace(value))
	if label == "" {
		label = defaultEnvironment
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), environmentContextKey{}, label)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EnvironmentFromContext returns the environment label for the request.
func EnvironmentFromContext(ctx context.Context) string {
	if ctx == nil {
		return defaultEnvironment
	}
	if value, ok := ctx.Value(environmentContextKey{}).(string); ok && value != "" {
		return value
	}
	return defaultEnvironment
}

// IsProduction reports whether the request is served by the production deployment.
func IsProduction(ctx context.Context) bool {
	switch EnvironmentFromContext(ctx) {
	case "prod", "production":
		return true
	default:
		return false
	}
}
