package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/iconpack-gallery/internal/gallery"
	"finitefield.org/iconpack-gallery/internal/httpserver"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gallery over HTTP",
		Long: `Starts the HTTP server immediately and loads the catalog, template and
introduction in the background. Pages answer 503 until loading finishes.
A failed load stops the server with a non-zero exit status.`,
		Example: `  # Serve the bundled sample data on :8080
  gallery serve --catalog data/packs.json --template templates/card.mustache

  # Serve a catalog published to Cloud Storage
  gallery serve --catalog gs://packs/catalog.yaml --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := a.loadConfig(ctx)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger, err := a.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			g, objects := newGallery(cfg, logger)
			defer func() { _ = objects.Close() }()

			server := httpserver.New(httpserver.Config{
				Address:      cfg.Server.Addr,
				BasePath:     cfg.Server.BasePath,
				Environment:  cfg.Server.Environment,
				ProjectID:    cfg.Observability.ProjectID,
				Title:        cfg.Gallery.Title,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  cfg.Server.IdleTimeout,
				Gallery:      g,
				Logger:       logger,
			})
			return run(ctx, server, g, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides GALLERY_HTTP_ADDR)")

	return cmd
}

// run serves until ctx is cancelled, the listener fails or the gallery fails
// to load, then drains in-flight requests.
func run(ctx context.Context, server *http.Server, g *gallery.Gallery, logger *zap.Logger) error {
	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))

	serverErr := make(chan error, 1)
	go func() {
		serverLogger.Info("gallery listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	loaded := make(chan error, 1)
	go func() {
		loaded <- g.Load(ctx)
	}()

	var runErr error
wait:
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal received; draining requests")
			break wait
		case err := <-serverErr:
			runErr = fmt.Errorf("http server: %w", err)
			break wait
		case err := <-loaded:
			if err != nil {
				runErr = err
				break wait
			}
			loaded = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	return runErr
}
