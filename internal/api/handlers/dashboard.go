// Package handlers contains the HTTP handler implementations for the weather
// dashboard API. Handlers parse and validate request parameters, delegate to
// the service layer, and write responses through the core envelope helpers.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"nimbus/internal/core"
	"nimbus/internal/dashboard"
	"nimbus/internal/types"
)

// dateLayout is the calendar-day parameter format for day and historical
// queries.
const dateLayout = "2006-01-02"

// DashboardServiceInterface is the service contract for the dashboard
// handler, defined locally to keep the coupling one-way.
type DashboardServiceInterface interface {
	GetDashboard(ctx context.Context, lat, lon float64) (*dashboard.Dashboard, error)
	GetDayDetail(ctx context.Context, lat, lon float64, day time.Time) (*dashboard.DayDetail, error)
	GetHistorical(ctx context.Context, lat, lon float64, day time.Time) (*dashboard.HistoricalView, error)
}

// SnapshotReader loads previously archived dashboards.
type SnapshotReader interface {
	Load(ctx context.Context, lat, lon float64, at time.Time) (*dashboard.Dashboard, error)
}

// DashboardHandler maps HTTP requests to dashboard service methods.
type DashboardHandler struct {
	service   DashboardServiceInterface
	snapshots SnapshotReader
	logger    *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler. The snapshot reader is
// optional; a nil reader disables the replay endpoint.
func NewDashboardHandler(svc DashboardServiceInterface, snapshots SnapshotReader, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:   svc,
		snapshots: snapshots,
		logger:    logger,
	}
}

// RegisterRoutes mounts the dashboard endpoints onto the mux.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", h.HandleGetDashboard)
		r.Get("/day", h.HandleGetDay)
		if h.snapshots != nil {
			r.Get("/snapshot", h.HandleGetSnapshot)
		}
	})
	r.Get("/historical", h.HandleGetHistorical)
}

// parseCoordinates extracts and parses the required lat/lon query params.
// Range validation happens in the service layer.
func parseCoordinates(q url.Values) (lat, lon float64, err error) {
	latStr := q.Get("lat")
	if latStr == "" {
		return 0, 0, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"lat query parameter is required",
			nil,
		)
	}
	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, types.NewAppError(
			types.ErrCodeValidationInvalidLat,
			"lat must be a valid number",
			nil,
		)
	}

	lonStr := q.Get("lon")
	if lonStr == "" {
		return 0, 0, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"lon query parameter is required",
			nil,
		)
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, types.NewAppError(
			types.ErrCodeValidationInvalidLon,
			"lon must be a valid number",
			nil,
		)
	}

	return lat, lon, nil
}

// parseDate extracts a required YYYY-MM-DD query parameter as a UTC midnight
// timestamp.
func parseDate(q url.Values, param string) (time.Time, error) {
	dateStr := q.Get(param)
	if dateStr == "" {
		return time.Time{}, types.NewAppError(
			types.ErrCodeValidationMissingField,
			param+" query parameter is required",
			nil,
		)
	}
	day, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, types.NewAppError(
			types.ErrCodeValidationInvalidDate,
			param+" must be a YYYY-MM-DD date",
			nil,
		)
	}
	return day, nil
}

// HandleGetDashboard handles GET /v1/dashboard?lat=&lon=.
func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseCoordinates(r.URL.Query())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	dash, err := h.service.GetDashboard(r.Context(), lat, lon)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Header().Set("Last-Modified", dash.GeneratedAt.UTC().Format(http.TimeFormat))
	core.OK(w, r, dash)
}

// HandleGetDay handles GET /v1/dashboard/day?lat=&lon=&date=.
func (h *DashboardHandler) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, lon, err := parseCoordinates(q)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	day, err := parseDate(q, "date")
	if err != nil {
		core.Error(w, r, err)
		return
	}

	detail, err := h.service.GetDayDetail(r.Context(), lat, lon, day)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	core.OK(w, r, detail)
}

// HandleGetHistorical handles GET /v1/historical?lat=&lon=&date=. Past days
// are finalized, so responses cache for a day.
func (h *DashboardHandler) HandleGetHistorical(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, lon, err := parseCoordinates(q)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	day, err := parseDate(q, "date")
	if err != nil {
		core.Error(w, r, err)
		return
	}

	view, err := h.service.GetHistorical(r.Context(), lat, lon, day)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	core.OK(w, r, view)
}

// HandleGetSnapshot handles GET /v1/dashboard/snapshot?lat=&lon=&at=,
// replaying an archived dashboard for the hour containing at.
func (h *DashboardHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, lon, err := parseCoordinates(q)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	atStr := q.Get("at")
	if atStr == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"at query parameter is required",
			nil,
		))
		return
	}
	at, err := time.Parse(time.RFC3339, atStr)
	if err != nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidDate,
			"at must be a valid RFC3339 timestamp",
			nil,
		))
		return
	}

	dash, err := h.snapshots.Load(r.Context(), lat, lon, at)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	core.OK(w, r, dash)
}
