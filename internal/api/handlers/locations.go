package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nimbus/internal/core"
	"nimbus/internal/db"
	"nimbus/internal/types"
)

// clientIDHeader names the header carrying the browser's anonymous client
// identifier for the recents list.
const clientIDHeader = "X-Client-ID"

// defaultClientID groups requests that do not send a client identifier.
const defaultClientID = "default"

// GeocoderInterface is the geocoding contract for the locations handler.
type GeocoderInterface interface {
	Search(ctx context.Context, query string) (*types.NamedLocation, error)
	Suggest(ctx context.Context, query string) ([]types.NamedLocation, error)
	Reverse(ctx context.Context, lat, lon float64) (*types.NamedLocation, error)
}

// RecentsStore is the recents persistence contract for the locations handler.
type RecentsStore interface {
	Touch(ctx context.Context, clientID string, loc types.NamedLocation, viewedAt time.Time) (*db.RecentLocation, error)
	List(ctx context.Context, clientID string) ([]*db.RecentLocation, error)
	Delete(ctx context.Context, clientID, id string) error
}

// LocationsHandler serves location search and the recently viewed list.
type LocationsHandler struct {
	geocoder GeocoderInterface
	recents  RecentsStore
	clock    types.Clock
	logger   *slog.Logger
}

// NewLocationsHandler creates a LocationsHandler. The recents store is
// optional; a nil store disables the recents endpoints.
func NewLocationsHandler(geocoder GeocoderInterface, recents RecentsStore, clock types.Clock, logger *slog.Logger) *LocationsHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationsHandler{
		geocoder: geocoder,
		recents:  recents,
		clock:    clock,
		logger:   logger,
	}
}

// RegisterRoutes mounts the location endpoints onto the mux.
func (h *LocationsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/locations", func(r chi.Router) {
		r.Get("/search", h.HandleSearch)
		r.Get("/suggest", h.HandleSuggest)
		r.Get("/reverse", h.HandleReverse)
		if h.recents != nil {
			r.Get("/recents", h.HandleListRecents)
			r.Post("/recents", h.HandleAddRecent)
			r.Delete("/recents/{id}", h.HandleDeleteRecent)
		}
	})
}

// clientID resolves the caller's recents bucket from the request headers.
func clientID(r *http.Request) string {
	if id := r.Header.Get(clientIDHeader); id != "" {
		return id
	}
	return defaultClientID
}

// HandleSearch handles GET /v1/locations/search?q=.
func (h *LocationsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	loc, err := h.geocoder.Search(r.Context(), query)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	core.OK(w, r, loc)
}

// HandleSuggest handles GET /v1/locations/suggest?q=.
func (h *LocationsHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	suggestions, err := h.geocoder.Suggest(r.Context(), query)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []types.NamedLocation{}
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	core.OK(w, r, suggestions)
}

// HandleReverse handles GET /v1/locations/reverse?lat=&lon=.
func (h *LocationsHandler) HandleReverse(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseCoordinates(r.URL.Query())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	loc, err := h.geocoder.Reverse(r.Context(), lat, lon)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	core.OK(w, r, loc)
}

// HandleListRecents handles GET /v1/locations/recents.
func (h *LocationsHandler) HandleListRecents(w http.ResponseWriter, r *http.Request) {
	recents, err := h.recents.List(r.Context(), clientID(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if recents == nil {
		recents = []*db.RecentLocation{}
	}
	core.OK(w, r, recents)
}

// addRecentRequest is the POST /v1/locations/recents body.
type addRecentRequest struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// HandleAddRecent handles POST /v1/locations/recents.
func (h *LocationsHandler) HandleAddRecent(w http.ResponseWriter, r *http.Request) {
	var req addRecentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	loc := types.NamedLocation{
		Location: types.Location{Lat: req.Lat, Lon: req.Lon},
		Name:     req.Name,
	}
	entry, err := h.recents.Touch(r.Context(), clientID(r), loc, h.clock.Now())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: entry})
}

// HandleDeleteRecent handles DELETE /v1/locations/recents/{id}.
func (h *LocationsHandler) HandleDeleteRecent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.recents.Delete(r.Context(), clientID(r), id); err != nil {
		core.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
