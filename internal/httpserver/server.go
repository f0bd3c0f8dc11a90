package httpserver

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	custommw "finitefield.org/iconpack-gallery/internal/httpserver/middleware"
	"finitefield.org/iconpack-gallery/internal/httpserver/ui"
	"finitefield.org/iconpack-gallery/internal/platform/observability"
	"finitefield.org/iconpack-gallery/public"
)

// Config holds runtime options for the gallery HTTP server.
type Config struct {
	Address      string
	BasePath     string
	Environment  string
	ProjectID    string
	Title        string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Gallery      ui.GalleryService
	Logger       *zap.Logger
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      NewHandler(cfg),
		ReadTimeout:  durationOr(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 120*time.Second),
	}
}

// NewHandler builds the router serving the gallery under cfg.BasePath.
func NewHandler(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpLogger := logger.Named("http")

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(httpLogger))
	router.Use(observability.TraceMiddleware())
	router.Use(observability.RecoveryMiddleware(httpLogger))
	router.Use(observability.RequestLoggerMiddleware(cfg.ProjectID))
	router.Use(chimw.Timeout(60 * time.Second))

	staticContent, err := public.StaticFS()
	if err != nil {
		log.Fatalf("embed static: %v", err)
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))

	health := newHealthHandlers(cfg.Gallery)
	router.Get("/healthz", health.Live)
	router.Get("/readyz", health.Ready)

	handlers := ui.NewHandlers(ui.Dependencies{
		Gallery: cfg.Gallery,
		Title:   cfg.Title,
	})
	mountGalleryRoutes(router, custommw.NormalizeBasePath(cfg.BasePath), cfg.Environment, handlers)
	return router
}

func mountGalleryRoutes(router chi.Router, base, environment string, handlers *ui.Handlers) {
	middlewares := chi.Middlewares{
		custommw.HTMX(),
		custommw.RequestInfoMiddleware(base),
		custommw.Environment(environment),
	}

	if base != "/" {
		router.With(middlewares...).Get(base, handlers.GalleryPage)
	}
	router.Route(base, func(r chi.Router) {
		r.Use(middlewares...)

		r.Get("/", handlers.GalleryPage)
		RegisterFragment(r, ui.FragmentPath, handlers.GalleryFragment)
		r.Get("/api/filters", handlers.FiltersAPI)
		r.Get("/api/items", handlers.ItemsAPI)
	})
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
