package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nimbus/internal/types"
	"nimbus/internal/upstream"
)

type mockRadar struct {
	frames  []upstream.RadarFrame
	err     error
	lastNow int64
}

func (m *mockRadar) FetchFrames(_ context.Context, now int64) ([]upstream.RadarFrame, error) {
	m.lastNow = now
	return m.frames, m.err
}

func newRadarRouter(radar RadarInterface, clock types.Clock) *chi.Mux {
	h := NewRadarHandler(radar, clock, nil)
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	return r
}

func TestHandleGetFrames(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	radar := &mockRadar{
		frames: []upstream.RadarFrame{
			{Time: now.Add(-10 * time.Minute).Unix(), Path: "/v2/radar/1"},
			{Time: now.Add(10 * time.Minute).Unix(), Path: "/v2/radar/2", Nowcast: true},
		},
	}
	router := newRadarRouter(radar, fixedClock{now: now})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/radar/frames", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now.Unix(), radar.lastNow)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	var resp struct {
		Data radarResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, upstream.RadarTileTemplate, resp.Data.TileTemplate)
	require.Len(t, resp.Data.Frames, 2)
	assert.True(t, resp.Data.Frames[1].Nowcast)
}

func TestHandleGetFramesUpstreamError(t *testing.T) {
	radar := &mockRadar{
		err: types.NewAppError(types.ErrCodeUpstreamRadar, "radar index unavailable", nil),
	}
	router := newRadarRouter(radar, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/radar/frames", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, string(types.ErrCodeUpstreamRadar), errorCode(t, rec))
}
