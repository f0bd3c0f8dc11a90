package ui

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/iconpack-gallery/internal/gallery"
	"finitefield.org/iconpack-gallery/internal/gallery/catalog"
	"finitefield.org/iconpack-gallery/internal/gallery/filter"
	custommw "finitefield.org/iconpack-gallery/internal/httpserver/middleware"
	"finitefield.org/iconpack-gallery/internal/platform/httpx"
	"finitefield.org/iconpack-gallery/internal/platform/requestctx"
	gallerytpl "finitefield.org/iconpack-gallery/internal/templates/gallery"
	"finitefield.org/iconpack-gallery/internal/templates/helpers"
)

// FragmentPath is the gallery fragment route relative to the base path.
const FragmentPath = "/fragments/gallery"

const retryAfterSeconds = "5"

// GalleryService is the part of the gallery the handlers depend on.
type GalleryService interface {
	State() gallery.State
	Err() error
	Intro() string
	Resolve(ctx context.Context, query url.Values, change *gallery.Change) (gallery.View, error)
}

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Gallery GalleryService
	Title   string
}

// Handlers exposes the gallery page, its htmx fragment and the JSON API.
type Handlers struct {
	gallery GalleryService
	title   string
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	title := deps.Title
	if title == "" {
		title = "Icon Pack Gallery"
	}
	return &Handlers{
		gallery: deps.Gallery,
		title:   title,
	}
}

// GalleryPage renders the full gallery for the selection in the query string.
// When stale values had to be reset the browser is sent to the canonical URL.
func (h *Handlers) GalleryPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	view, err := h.resolve(ctx, query, nil)
	if err != nil {
		h.renderUnavailable(w, r, err)
		return
	}

	base := custommw.BasePathFromContext(ctx)
	if len(view.Resets) > 0 && view.Query.Encode() != query.Encode() {
		http.Redirect(w, r, helpers.URLWithQuery(base, view.Query), http.StatusFound)
		return
	}

	data := gallerytpl.BuildPageData(
		h.title,
		custommw.EnvironmentFromContext(ctx),
		h.gallery.Intro(),
		base,
		custommw.JoinBasePath(base, FragmentPath),
		view,
	)
	templ.Handler(gallerytpl.Page(data)).ServeHTTP(w, r)
}

// GalleryFragment re-renders the filter form and grid after a select changes.
// The page state comes from HX-Current-URL and the changed select is named by
// HX-Trigger-Name, so a version switch is applied before font and color are
// validated against it.
func (h *Handlers) GalleryFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	info := custommw.HTMXInfoFromContext(ctx)
	submitted := r.URL.Query()

	query := submitted
	var change *gallery.Change
	if d, ok := filter.ParseDimension(info.TriggerName); ok {
		if current, ok := info.CurrentQuery(); ok {
			query = current
		}
		change = &gallery.Change{Dimension: d, Value: submitted.Get(string(d))}
	}

	view, err := h.resolve(ctx, query, change)
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, gallery.ErrNotReady) {
			w.Header().Set("Retry-After", retryAfterSeconds)
		}
		http.Error(w, unavailableMessage(err), status)
		return
	}

	base := custommw.BasePathFromContext(ctx)
	w.Header().Set("HX-Push-Url", helpers.URLWithQuery(base, view.Query))
	data := gallerytpl.BuildViewData(base, custommw.JoinBasePath(base, FragmentPath), view)
	templ.Handler(gallerytpl.View(data)).ServeHTTP(w, r)
}

type filtersResponse struct {
	State     string           `json:"state"`
	Selection filter.Selection `json:"selection"`
	Options   filter.Options   `json:"options"`
	Query     string           `json:"query"`
	Resets    []filter.Reset   `json:"resets"`
}

// FiltersAPI returns the resolved selection and the options of every dimension.
func (h *Handlers) FiltersAPI(w http.ResponseWriter, r *http.Request) {
	view, err := h.resolve(r.Context(), r.URL.Query(), nil)
	if err != nil {
		writeAPIUnavailable(r.Context(), w, err)
		return
	}
	resets := view.Resets
	if resets == nil {
		resets = []filter.Reset{}
	}
	httpx.WriteJSON(w, http.StatusOK, filtersResponse{
		State:     h.gallery.State().String(),
		Selection: view.Selection,
		Options:   view.Options,
		Query:     view.Query.Encode(),
		Resets:    resets,
	})
}

type itemsResponse struct {
	Version string           `json:"version"`
	Count   int              `json:"count"`
	Total   int              `json:"total"`
	Items   []map[string]any `json:"items"`
}

// ItemsAPI returns the visible items for the selection in the query string.
func (h *Handlers) ItemsAPI(w http.ResponseWriter, r *http.Request) {
	view, err := h.resolve(r.Context(), r.URL.Query(), nil)
	if err != nil {
		writeAPIUnavailable(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, itemsResponse{
		Version: view.Selection.Version,
		Count:   len(view.Items),
		Total:   view.Total,
		Items:   itemFields(view.Items),
	})
}

func (h *Handlers) resolve(ctx context.Context, query url.Values, change *gallery.Change) (gallery.View, error) {
	if h.gallery == nil {
		return gallery.View{}, gallery.ErrNotReady
	}
	view, err := h.gallery.Resolve(ctx, query, change)
	if err != nil {
		return gallery.View{}, err
	}
	if len(view.Resets) > 0 {
		logger := requestctx.Logger(ctx)
		for _, reset := range view.Resets {
			logger.Info("gallery selection reset",
				zap.String("dimension", string(reset.Dimension)),
				zap.String("value", reset.Value),
				zap.String("version", view.Selection.Version),
			)
		}
	}
	return view, nil
}

func (h *Handlers) renderUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	loading := errors.Is(err, gallery.ErrNotReady)
	if loading {
		w.Header().Set("Retry-After", retryAfterSeconds)
	} else {
		requestctx.Logger(r.Context()).Error("gallery unavailable", zap.Error(err))
	}
	component := gallerytpl.Unavailable(gallerytpl.UnavailableData{
		Title:   h.title,
		Message: unavailableMessage(err),
		Loading: loading,
	})
	templ.Handler(component, templ.WithStatus(http.StatusServiceUnavailable)).ServeHTTP(w, r)
}

func writeAPIUnavailable(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, gallery.ErrNotReady) {
		httpx.WriteError(ctx, w, httpx.NewError("gallery_loading", unavailableMessage(err), http.StatusServiceUnavailable).
			WithRetryAfter(retryAfterSeconds))
		return
	}
	requestctx.Logger(ctx).Error("gallery unavailable", zap.Error(err))
	httpx.WriteError(ctx, w, httpx.NewError("gallery_unavailable", unavailableMessage(err), http.StatusServiceUnavailable))
}

func unavailableMessage(err error) string {
	if errors.Is(err, gallery.ErrNotReady) {
		return "The gallery is loading. This page refreshes automatically."
	}
	return "The gallery could not be loaded."
}

func itemFields(items []catalog.Item) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, item.Fields())
	}
	return out
}
