package httpserver

import (
	"net/http"
	"time"

	"finitefield.org/iconpack-gallery/internal/gallery"
	"finitefield.org/iconpack-gallery/internal/httpserver/ui"
	"finitefield.org/iconpack-gallery/internal/platform/httpx"
)

type healthHandlers struct {
	gallery ui.GalleryService
	started time.Time
}

func newHealthHandlers(svc ui.GalleryService) *healthHandlers {
	return &healthHandlers{gallery: svc, started: time.Now()}
}

// Live reports that the process is serving requests.
func (h *healthHandlers) Live(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready answers 200 once the gallery has loaded and 503 otherwise.
func (h *healthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	state := gallery.StateLoading
	if h.gallery != nil {
		state = h.gallery.State()
	}
	status := http.StatusOK
	if state != gallery.StateReady {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, map[string]any{
		"status": state.String(),
	})
}
