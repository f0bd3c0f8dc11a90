package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile        = ".env"
	defaultAddr           = ":8080"
	defaultBasePath       = "/"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultEnvironment    = "local"
	defaultTitle          = "Icon Pack Gallery"
	defaultCatalogSource  = "data/packs.json"
	defaultTemplateSource = "templates/card.mustache"
	defaultFetchTimeout   = 30 * time.Second
	defaultLogLevel       = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server        ServerConfig
	Gallery       GalleryConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr         string
	BasePath     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
}

// GalleryConfig locates the gallery resources.
type GalleryConfig struct {
	Title          string
	CatalogSource  string
	TemplateSource string
	IntroSource    string
	FetchTimeout   time.Duration
	SanitizeCards  bool
}

// StorageConfig configures gs:// resource access.
type StorageConfig struct {
	Endpoint  string
	Anonymous bool
}

// ObservabilityConfig configures logging and trace correlation.
type ObservabilityConfig struct {
	LogLevel  string
	ProjectID string
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path. An empty path skips the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over the system environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, the .env file, the process
// environment and explicit overrides, in increasing precedence.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	var invalid []string
	duration := func(key string, fallback time.Duration) time.Duration {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			return fallback
		}
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil || d <= 0 {
			invalid = append(invalid, key)
			return fallback
		}
		return d
	}
	boolean := func(key string, fallback bool) bool {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			return fallback
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			invalid = append(invalid, key)
			return fallback
		}
		return parsed
	}

	cfg := Config{
		Server: ServerConfig{
			Addr:         stringWithDefault(lookup, "GALLERY_HTTP_ADDR", defaultAddr),
			BasePath:     normalizeBasePath(stringWithDefault(lookup, "GALLERY_BASE_PATH", defaultBasePath)),
			ReadTimeout:  duration("GALLERY_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: duration("GALLERY_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  duration("GALLERY_IDLE_TIMEOUT", defaultIdleTimeout),
			Environment:  strings.ToLower(stringWithDefault(lookup, "GALLERY_ENVIRONMENT", defaultEnvironment)),
		},
		Gallery: GalleryConfig{
			Title:          stringWithDefault(lookup, "GALLERY_TITLE", defaultTitle),
			CatalogSource:  stringWithDefault(lookup, "GALLERY_CATALOG_SOURCE", defaultCatalogSource),
			TemplateSource: stringWithDefault(lookup, "GALLERY_TEMPLATE_SOURCE", defaultTemplateSource),
			IntroSource:    stringWithDefault(lookup, "GALLERY_INTRO_SOURCE", ""),
			FetchTimeout:   duration("GALLERY_FETCH_TIMEOUT", defaultFetchTimeout),
			SanitizeCards:  boolean("GALLERY_SANITIZE_CARDS", false),
		},
		Storage: StorageConfig{
			Endpoint:  stringWithDefault(lookup, "GALLERY_STORAGE_ENDPOINT", ""),
			Anonymous: boolean("GALLERY_STORAGE_ANONYMOUS", false),
		},
		Observability: ObservabilityConfig{
			LogLevel:  strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
			ProjectID: stringWithDefault(lookup, "GALLERY_PROJECT_ID", ""),
		},
	}

	if err := cfg.validate(invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate(invalid []string) error {
	fields := append([]string(nil), invalid...)
	if strings.TrimSpace(c.Server.Addr) == "" {
		fields = append(fields, "GALLERY_HTTP_ADDR")
	}
	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		fields = append(fields, "LOG_LEVEL")
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{fields: fields}
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func normalizeBasePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(path, "/")
}
