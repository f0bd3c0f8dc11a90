package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.BasePath != "/" {
		t.Errorf("expected default base path /, got %s", cfg.Server.BasePath)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.Environment != "local" {
		t.Errorf("expected local environment, got %s", cfg.Server.Environment)
	}
	if cfg.Gallery.CatalogSource != "data/packs.json" {
		t.Errorf("unexpected catalog source: %s", cfg.Gallery.CatalogSource)
	}
	if cfg.Gallery.TemplateSource != "templates/card.mustache" {
		t.Errorf("unexpected template source: %s", cfg.Gallery.TemplateSource)
	}
	if cfg.Gallery.IntroSource != "" {
		t.Errorf("expected no intro source, got %s", cfg.Gallery.IntroSource)
	}
	if cfg.Gallery.FetchTimeout != 30*time.Second {
		t.Errorf("unexpected fetch timeout: %s", cfg.Gallery.FetchTimeout)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("unexpected log level: %s", cfg.Observability.LogLevel)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"GALLERY_HTTP_ADDR":         "127.0.0.1:9090",
		"GALLERY_BASE_PATH":         "packs/",
		"GALLERY_READ_TIMEOUT":      "5s",
		"GALLERY_ENVIRONMENT":       "PROD",
		"GALLERY_CATALOG_SOURCE":    "gs://assets/gallery/packs.yaml",
		"GALLERY_TEMPLATE_SOURCE":   "https://cdn.example.com/card.mustache",
		"GALLERY_INTRO_SOURCE":      "content/intro.md",
		"GALLERY_TITLE":             "Stream Deck Packs",
		"GALLERY_FETCH_TIMEOUT":     "10s",
		"GALLERY_SANITIZE_CARDS":    "true",
		"GALLERY_STORAGE_ENDPOINT":  "http://localhost:4443/storage/v1/",
		"GALLERY_STORAGE_ANONYMOUS": "true",
		"GALLERY_PROJECT_ID":        "packs-prod",
		"LOG_LEVEL":                 "DEBUG",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Server.BasePath != "/packs" {
		t.Errorf("expected normalised base path /packs, got %s", cfg.Server.BasePath)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.Environment != "prod" {
		t.Errorf("expected lowercased environment, got %s", cfg.Server.Environment)
	}
	if cfg.Gallery.CatalogSource != "gs://assets/gallery/packs.yaml" {
		t.Errorf("unexpected catalog source: %s", cfg.Gallery.CatalogSource)
	}
	if cfg.Gallery.Title != "Stream Deck Packs" {
		t.Errorf("unexpected title: %s", cfg.Gallery.Title)
	}
	if !cfg.Gallery.SanitizeCards {
		t.Errorf("expected card sanitising to be enabled")
	}
	if !cfg.Storage.Anonymous || cfg.Storage.Endpoint == "" {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Observability.LogLevel != "debug" || cfg.Observability.ProjectID != "packs-prod" {
		t.Errorf("unexpected observability config: %+v", cfg.Observability)
	}
}

func TestLoadValidationError(t *testing.T) {
	env := map[string]string{
		"GALLERY_READ_TIMEOUT":      "soon",
		"GALLERY_FETCH_TIMEOUT":     "-1s",
		"GALLERY_STORAGE_ANONYMOUS": "maybe",
		"LOG_LEVEL":                 "chatty",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	want := []string{"GALLERY_READ_TIMEOUT", "GALLERY_FETCH_TIMEOUT", "GALLERY_STORAGE_ANONYMOUS", "LOG_LEVEL"}
	if !reflect.DeepEqual(vErr.Fields(), want) {
		t.Errorf("unexpected fields: %v", vErr.Fields())
	}
}

func TestLoadDotEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# local overrides\nGALLERY_TITLE=\"Dotenv Title\"\nexport GALLERY_HTTP_ADDR=:7070\nGALLERY_CATALOG_SOURCE=data/local.yaml\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(context.Background(),
		WithEnvFile(envPath),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{"GALLERY_CATALOG_SOURCE": "data/override.json"}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Gallery.Title != "Dotenv Title" {
		t.Errorf("expected title from .env, got %s", cfg.Gallery.Title)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("expected addr from .env, got %s", cfg.Server.Addr)
	}
	if cfg.Gallery.CatalogSource != "data/override.json" {
		t.Errorf("expected explicit map to win over .env, got %s", cfg.Gallery.CatalogSource)
	}
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(context.Background(), WithEnvFile(filepath.Join(t.TempDir(), "missing.env")), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
