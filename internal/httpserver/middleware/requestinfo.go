package middleware

import (
	"context"
	"net/http"
	"strings"
)

type requestInfoKeyType int

const requestInfoKey requestInfoKeyType = iota

// RequestInfo holds lightweight request metadata exposed to templates.
type RequestInfo struct {
	Path     string
	BasePath string
}

// RequestInfoMiddleware annotates the context with the request path and the
// gallery base path.
func RequestInfoMiddleware(basePath string) func(http.Handler) http.Handler {
	base := NormalizeBasePath(basePath)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := &RequestInfo{Path: r.URL.Path, BasePath: base}
			ctx := context.WithValue(r.Context(), requestInfoKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BasePathFromContext returns the gallery base path or "/" when unavailable.
func BasePathFromContext(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey).(*RequestInfo); ok && info != nil && info.BasePath != "" {
		return info.BasePath
	}
	return "/"
}

// NormalizeBasePath returns base with a leading slash and no trailing slash.
func NormalizeBasePath(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "/"
	}
	return base
}

// JoinBasePath appends suffix to base without doubling slashes.
func JoinBasePath(base, suffix string) string {
	base = NormalizeBasePath(base)
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	if base == "/" {
		return suffix
	}
	return base + suffix
}
