// Package gallery loads the catalog and item template once and serves
// filtered, rendered views of them.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/iconpack-gallery/internal/gallery/catalog"
	"finitefield.org/iconpack-gallery/internal/gallery/filter"
	"finitefield.org/iconpack-gallery/internal/gallery/render"
	"finitefield.org/iconpack-gallery/internal/gallery/source"
)

const instrumentationName = "finitefield.org/iconpack-gallery/internal/gallery"

var (
	// ErrNotReady is returned while resources are still loading.
	ErrNotReady = errors.New("gallery: not ready")
	// ErrLoadFailed is returned after loading failed. The gallery never retries.
	ErrLoadFailed = errors.New("gallery: load failed")
)

// State is the load state of a Gallery.
type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

// String returns the state name used in logs and API payloads.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Fetcher reads a resource by location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Sources locates the gallery resources. Intro is optional.
type Sources struct {
	Catalog  string
	Template string
	Intro    string
}

// Gallery holds the loaded resources. After Load succeeds it is read-only
// and safe for concurrent use.
type Gallery struct {
	fetcher      Fetcher
	sources      Sources
	renderer     *render.Renderer
	logger       *zap.Logger
	fetchTimeout time.Duration
	tracer       trace.Tracer
	views        metric.Int64Counter
	resets       metric.Int64Counter

	once     sync.Once
	mu       sync.RWMutex
	state    State
	err      error
	catalog  *catalog.Catalog
	template *render.Template
	intro    string
}

// Option customises a Gallery.
type Option func(*Gallery)

// WithLogger sets the gallery logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gallery) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRenderer overrides the item renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(g *Gallery) {
		if r != nil {
			g.renderer = r
		}
	}
}

// WithFetchTimeout bounds the whole load. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(g *Gallery) {
		g.fetchTimeout = d
	}
}

// WithMeterProvider records view and reset counters on provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(g *Gallery) {
		if provider != nil {
			g.initMetrics(provider.Meter(instrumentationName))
		}
	}
}

// New constructs a gallery in the Loading state.
func New(fetcher Fetcher, sources Sources, opts ...Option) *Gallery {
	g := &Gallery{
		fetcher: fetcher,
		sources: sources,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(instrumentationName),
		state:   StateLoading,
	}
	g.initMetrics(otel.Meter(instrumentationName))
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.renderer == nil {
		g.renderer = render.NewRenderer(render.WithLogger(g.logger))
	}
	return g
}

func (g *Gallery) initMetrics(meter metric.Meter) {
	views, err := meter.Int64Counter("gallery.views",
		metric.WithDescription("Rendered gallery views."))
	if err == nil {
		g.views = views
	}
	resets, err := meter.Int64Counter("gallery.selection.resets",
		metric.WithDescription("Selection values reset because their dimension no longer offers them."))
	if err == nil {
		g.resets = resets
	}
}

// Load fetches and parses the catalog, template and optional intro. It runs at
// most once; later calls return the first result.
func (g *Gallery) Load(ctx context.Context) error {
	g.once.Do(func() {
		err := g.load(ctx)

		g.mu.Lock()
		defer g.mu.Unlock()
		if err != nil {
			g.state = StateFailed
			g.err = err
			return
		}
		g.state = StateReady
	})
	return g.Err()
}

func (g *Gallery) load(ctx context.Context) (err error) {
	ctx, span := g.tracer.Start(ctx, "gallery.Load", trace.WithAttributes(
		attribute.String("gallery.catalog_source", g.sources.Catalog),
		attribute.String("gallery.template_source", g.sources.Template),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load failed")
		}
		span.End()
	}()

	if g.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	format := catalog.FormatFromLocation(g.sources.Catalog)
	g.logger.Info("gallery loading",
		zap.String("catalog_source", g.sources.Catalog),
		zap.String("catalog_format", string(format)),
		zap.String("template_source", g.sources.Template),
	)

	var (
		cat   *catalog.Catalog
		tpl   *render.Template
		intro string
	)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		data, err := g.fetch(gctx, "catalog", g.sources.Catalog)
		if err != nil {
			return err
		}
		cat, err = catalog.Decode(data, format)
		if err != nil {
			return &source.LoadError{Resource: "catalog", Location: g.sources.Catalog, Err: err}
		}
		return nil
	})
	group.Go(func() error {
		data, err := g.fetch(gctx, "template", g.sources.Template)
		if err != nil {
			return err
		}
		tpl, err = render.ParseTemplate(string(data))
		if err != nil {
			return &source.LoadError{Resource: "template", Location: g.sources.Template, Err: err}
		}
		return nil
	})
	if g.sources.Intro != "" {
		group.Go(func() error {
			data, err := g.fetch(gctx, "intro", g.sources.Intro)
			if err != nil {
				return err
			}
			intro, err = render.Markdown(data)
			if err != nil {
				return &source.LoadError{Resource: "intro", Location: g.sources.Intro, Err: err}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		g.logger.Error("gallery load failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return err
	}

	g.mu.Lock()
	g.catalog = cat
	g.template = tpl
	g.intro = intro
	g.mu.Unlock()

	span.SetAttributes(
		attribute.String("gallery.shape", cat.Shape.String()),
		attribute.Int("gallery.versions", len(cat.Versions)),
	)
	g.logger.Info("gallery ready",
		zap.String("shape", cat.Shape.String()),
		zap.Strings("versions", cat.VersionNames()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (g *Gallery) fetch(ctx context.Context, resource, location string) ([]byte, error) {
	if g.fetcher == nil {
		return nil, &source.LoadError{Resource: resource, Location: location, Err: errors.New("no fetcher configured")}
	}
	data, err := g.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, &source.LoadError{Resource: resource, Location: location, Err: err}
	}
	return data, nil
}

// State reports the current load state.
func (g *Gallery) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Err returns the load failure, ErrNotReady while loading, or nil when ready.
func (g *Gallery) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	switch g.state {
	case StateReady:
		return nil
	case StateFailed:
		return fmt.Errorf("%w: %w", ErrLoadFailed, g.err)
	default:
		return ErrNotReady
	}
}

// Catalog returns the loaded catalog.
func (g *Gallery) Catalog() (*catalog.Catalog, error) {
	if err := g.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog, nil
}

// Intro returns the sanitised introduction HTML, empty when none was configured.
func (g *Gallery) Intro() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.intro
}

// NewController creates a filter controller over the loaded catalog.
func (g *Gallery) NewController() (*filter.Controller, error) {
	cat, err := g.Catalog()
	if err != nil {
		return nil, err
	}
	return filter.NewController(cat), nil
}

// Change is a single filter change applied on top of a URL selection.
type Change struct {
	Dimension filter.Dimension
	Value     string
}

// View is everything a page needs to show one selection.
type View struct {
	Selection filter.Selection
	Options   filter.Options
	Items     []catalog.Item
	Total     int
	Markup    string
	Resets    []filter.Reset
	Query     url.Values
}

// Resolve applies the selection carried by query, then change if given,
// renders the visible items and returns the canonical query.
func (g *Gallery) Resolve(ctx context.Context, query url.Values, change *Change) (View, error) {
	c, err := g.NewController()
	if err != nil {
		return View{}, err
	}
	g.mu.RLock()
	tpl := g.template
	g.mu.RUnlock()

	resets := c.SyncFromURL(query)
	if change != nil {
		resets = append(resets, c.OnFilterChange(change.Dimension, change.Value)...)
	}
	sel := c.Selection()
	items := c.VisibleItems()
	view := View{
		Selection: sel,
		Options:   c.Options(),
		Items:     items,
		Total:     len(c.Items()),
		Markup:    g.renderer.Render(tpl, sel.Version, items),
		Resets:    resets,
		Query:     c.SyncToURL(query),
	}

	versionAttr := metric.WithAttributes(attribute.String("version", sel.Version))
	if g.views != nil {
		g.views.Add(ctx, 1, versionAttr)
	}
	if g.resets != nil && len(resets) > 0 {
		g.resets.Add(ctx, int64(len(resets)), versionAttr)
	}
	return view, nil
}

// Render renders items of version with the loaded template.
func (g *Gallery) Render(version string, items []catalog.Item) (string, error) {
	if err := g.Err(); err != nil {
		return "", err
	}
	g.mu.RLock()
	tpl := g.template
	g.mu.RUnlock()
	return g.renderer.Render(tpl, version, items), nil
}
