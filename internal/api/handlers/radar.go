package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nimbus/internal/core"
	"nimbus/internal/types"
	"nimbus/internal/upstream"
)

// RadarInterface is the radar index contract for the radar handler.
type RadarInterface interface {
	FetchFrames(ctx context.Context, now int64) ([]upstream.RadarFrame, error)
}

// RadarHandler serves the trimmed radar frame index for the map overlay.
type RadarHandler struct {
	radar  RadarInterface
	clock  types.Clock
	logger *slog.Logger
}

// NewRadarHandler creates a RadarHandler.
func NewRadarHandler(radar RadarInterface, clock types.Clock, logger *slog.Logger) *RadarHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RadarHandler{
		radar:  radar,
		clock:  clock,
		logger: logger,
	}
}

// RegisterRoutes mounts the radar endpoints onto the mux.
func (h *RadarHandler) RegisterRoutes(r chi.Router) {
	r.Get("/radar/frames", h.HandleGetFrames)
}

// radarResponse pairs the frame list with the tile path template so clients
// can construct tile URLs.
type radarResponse struct {
	TileTemplate string                `json:"tile_template"`
	Frames       []upstream.RadarFrame `json:"frames"`
}

// HandleGetFrames handles GET /v1/radar/frames.
func (h *RadarHandler) HandleGetFrames(w http.ResponseWriter, r *http.Request) {
	frames, err := h.radar.FetchFrames(r.Context(), h.clock.Now().Unix())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	core.OK(w, r, radarResponse{
		TileTemplate: upstream.RadarTileTemplate,
		Frames:       frames,
	})
}
