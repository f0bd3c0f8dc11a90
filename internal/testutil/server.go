package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"finitefield.org/iconpack-gallery/internal/gallery"
	"finitefield.org/iconpack-gallery/internal/httpserver"
	"finitefield.org/iconpack-gallery/internal/httpserver/ui"
)

// SetsCatalog is a version-sets catalog with two versions sharing the solid font.
const SetsCatalog = `{
  "6.7.2": {"fonts": {"solid": "Solid", "thin": "Thin"}, "colors": {"white": "White", "blue": "Blue"}},
  "6.5.0": {"fonts": {"solid": "Solid"}, "colors": {"red": "Red"}}
}`

// CardTemplate renders one card per item.
const CardTemplate = `<article class="card" data-pack="{{font.pack_id}}">{{version}} {{font.font_name}} {{font.color_name}}</article>`

// Files maps resource locations to their contents.
type Files map[string]string

// Fetch implements gallery.Fetcher.
func (f Files) Fetch(_ context.Context, location string) ([]byte, error) {
	body, ok := f[location]
	if !ok {
		return nil, fmt.Errorf("%s: not found", location)
	}
	return []byte(body), nil
}

// DefaultFiles returns the catalog and template used by NewServer.
func DefaultFiles() Files {
	return Files{
		"packs.json":    SetsCatalog,
		"card.mustache": CardTemplate,
		"intro.md":      "Browse **every** pack.",
	}
}

// NewGallery builds a gallery over files and loads it. Load failures are
// kept on the gallery so callers can exercise the failed state.
func NewGallery(t testing.TB, files Files) *gallery.Gallery {
	t.Helper()

	g := gallery.New(files, gallery.Sources{
		Catalog:  "packs.json",
		Template: "card.mustache",
		Intro:    "intro.md",
	})
	_ = g.Load(context.Background())
	return g
}

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithBasePath sets a custom base path for the gallery routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithGallery overrides the gallery service.
func WithGallery(svc ui.GalleryService) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Gallery = svc
	}
}

// NewServer constructs an httptest server running the gallery HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := httpserver.Config{
		Address:     ":0",
		BasePath:    "/",
		Environment: "test",
		Title:       "Icon Pack Gallery",
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Gallery == nil {
		cfg.Gallery = NewGallery(t, DefaultFiles())
	}

	srv := httpserver.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
