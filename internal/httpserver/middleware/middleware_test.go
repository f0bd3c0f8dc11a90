package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMXCapturesHeaders(t *testing.T) {
	t.Parallel()

	var got HTMXInfo
	handler := HTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = HTMXInfoFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/fragments/gallery", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", "http://example.com/?version=6.7.2")
	req.Header.Set("HX-Trigger-Name", "font")
	req.Header.Set("HX-Target", "gallery-view")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, got.IsHTMX)
	require.Equal(t, "http://example.com/?version=6.7.2", got.CurrentURL)
	require.Equal(t, "font", got.TriggerName)
	require.Equal(t, "gallery-view", got.Target)

	query, ok := got.CurrentQuery()
	require.True(t, ok)
	require.Equal(t, "6.7.2", query.Get("version"))

	_, ok = HTMXInfo{}.CurrentQuery()
	require.False(t, ok)
}

func TestRequireHTMX(t *testing.T) {
	t.Parallel()

	handler := HTMX()(RequireHTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{name: "plain navigation", want: http.StatusNotFound},
		{name: "htmx", headers: map[string]string{"HX-Request": "true"}, want: http.StatusNoContent},
		{name: "history restore", headers: map[string]string{"HX-Request": "true", "HX-History-Restore-Request": "true"}, want: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/fragments/gallery", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestEnvironment(t *testing.T) {
	t.Parallel()

	var env string
	var prod bool
	handler := Environment(" PROD ")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env = EnvironmentFromContext(r.Context())
		prod = IsProduction(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, "prod", env)
	require.True(t, prod)
	require.Equal(t, "local", EnvironmentFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestBasePathHelpers(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/", NormalizeBasePath(""))
	require.Equal(t, "/", NormalizeBasePath("///"))
	require.Equal(t, "/packs", NormalizeBasePath("packs/"))
	require.Equal(t, "/fragments/gallery", JoinBasePath("/", "fragments/gallery"))
	require.Equal(t, "/packs/api/items", JoinBasePath("/packs/", "/api/items"))

	var base string
	handler := RequestInfoMiddleware("packs")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base = BasePathFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/packs", nil))
	require.Equal(t, "/packs", base)
}
