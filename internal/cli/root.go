// Package cli wires the gallery commands: serve, render and validate.
package cli

import (
	"context"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/iconpack-gallery/internal/gallery"
	"finitefield.org/iconpack-gallery/internal/gallery/render"
	"finitefield.org/iconpack-gallery/internal/gallery/source"
	"finitefield.org/iconpack-gallery/internal/platform/config"
	"finitefield.org/iconpack-gallery/internal/platform/observability"
	"finitefield.org/iconpack-gallery/internal/platform/storage"
)

type app struct {
	configOpts []config.Option

	envFile  string
	catalog  string
	template string
	intro    string
	logLevel string
}

// NewRootCmd builds the command tree. opts are applied after the defaults
// whenever a command loads its configuration.
func NewRootCmd(opts ...config.Option) *cobra.Command {
	a := &app{configOpts: opts}

	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Browse icon pack catalogs by version, font, color and background",
		Long: `Gallery loads an icon pack catalog and an item template, then serves a
filterable gallery over HTTP or renders it from the command line.

Resources may be plain paths, file://, http(s):// or gs:// locations.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file read before the process environment")
	flags.StringVar(&a.catalog, "catalog", "", "catalog location (overrides GALLERY_CATALOG_SOURCE)")
	flags.StringVar(&a.template, "template", "", "item template location (overrides GALLERY_TEMPLATE_SOURCE)")
	flags.StringVar(&a.intro, "intro", "", "Markdown introduction location (overrides GALLERY_INTRO_SOURCE)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newRenderCmd(a))
	cmd.AddCommand(newValidateCmd(a))

	return cmd
}

func (a *app) loadConfig(ctx context.Context) (config.Config, error) {
	opts := append([]config.Option{config.WithEnvFile(a.envFile)}, a.configOpts...)
	cfg, err := config.Load(ctx, opts...)
	if err != nil {
		return config.Config{}, err
	}
	if v := strings.TrimSpace(a.catalog); v != "" {
		cfg.Gallery.CatalogSource = v
	}
	if v := strings.TrimSpace(a.template); v != "" {
		cfg.Gallery.TemplateSource = v
	}
	if v := strings.TrimSpace(a.intro); v != "" {
		cfg.Gallery.IntroSource = v
	}
	if v := strings.TrimSpace(a.logLevel); v != "" {
		cfg.Observability.LogLevel = v
	}
	return cfg, nil
}

func (a *app) newLogger(cfg config.Config, outputs ...string) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Observability.LogLevel, observability.WithOutputPaths(outputs...))
}

// newGallery builds an unloaded gallery reading from disk, HTTP and Cloud
// Storage. The returned reader must be closed once the gallery is done.
func newGallery(cfg config.Config, logger *zap.Logger) (*gallery.Gallery, *storage.Reader) {
	readerOpts := []storage.ReaderOption{storage.WithEndpoint(cfg.Storage.Endpoint)}
	if cfg.Storage.Anonymous {
		readerOpts = append(readerOpts, storage.WithoutAuthentication())
	}
	objects := storage.NewReader(readerOpts...)

	fetcher := source.NewFetcher(
		source.WithObjectReader(objects),
		source.WithHTTPClient(&http.Client{Timeout: cfg.Gallery.FetchTimeout}),
	)
	galleryLogger := logger.Named("gallery")
	renderOpts := []render.Option{render.WithLogger(galleryLogger)}
	if cfg.Gallery.SanitizeCards {
		renderOpts = append(renderOpts, render.WithPolicy(render.CardPolicy()))
	}
	g := gallery.New(fetcher, gallery.Sources{
		Catalog:  cfg.Gallery.CatalogSource,
		Template: cfg.Gallery.TemplateSource,
		Intro:    cfg.Gallery.IntroSource,
	},
		gallery.WithLogger(galleryLogger),
		gallery.WithFetchTimeout(cfg.Gallery.FetchTimeout),
		gallery.WithRenderer(render.NewRenderer(renderOpts...)),
	)
	return g, objects
}
