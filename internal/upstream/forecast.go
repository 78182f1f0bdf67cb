package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"nimbus/internal/meteo"
	"nimbus/internal/types"
)

// GridRef identifies one forecast grid cell: the issuing office plus integer
// grid coordinates. It is resolved once per location from the points endpoint
// and can be cached indefinitely; grid assignments do not move.
type GridRef struct {
	Office string `json:"office"`
	GridX  int    `json:"grid_x"`
	GridY  int    `json:"grid_y"`

	// TimeZone is the IANA zone of the grid cell, used to anchor
	// calendar-day windows to local midnight.
	TimeZone string `json:"time_zone"`
}

// Alert is one active weather alert for a point.
type Alert struct {
	ID          string     `json:"id"`
	Event       string     `json:"event"`
	Headline    string     `json:"headline"`
	Severity    string     `json:"severity"`
	Description string     `json:"description"`
	Onset       *time.Time `json:"onset"`
	Ends        *time.Time `json:"ends"`
}

// ForecastClient talks to the gridded forecast provider. One grid resolution
// (ResolvePoint) followed by gridpoint, periods, and alerts fetches covers a
// full dashboard render.
type ForecastClient struct {
	base    *BaseClient
	baseURL string
}

// NewForecastClient creates a ForecastClient against baseURL.
func NewForecastClient(httpClient *http.Client, baseURL, userAgent string, retry RetryPolicy, opts ...BaseClientOption) *ForecastClient {
	return &ForecastClient{
		base:    NewBaseClient(httpClient, "forecast", retry, userAgent, opts...),
		baseURL: baseURL,
	}
}

// pointsResponse is the subset of the points payload we consume.
type pointsResponse struct {
	Properties struct {
		GridID   string `json:"gridId"`
		GridX    int    `json:"gridX"`
		GridY    int    `json:"gridY"`
		TimeZone string `json:"timeZone"`
	} `json:"properties"`
}

// ResolvePoint maps a coordinate to its forecast grid cell. Coordinates are
// truncated to four decimals; the provider rejects higher precision with a
// redirect loop.
func (c *ForecastClient) ResolvePoint(ctx context.Context, lat, lon float64) (*GridRef, error) {
	if err := types.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)
	var resp pointsResponse
	if err := c.base.getJSON(ctx, u, &resp, types.ErrCodeUpstreamWeather); err != nil {
		return nil, err
	}
	if resp.Properties.GridID == "" {
		return nil, types.NewAppError(types.ErrCodeNotFoundLocation,
			"coordinate is outside the forecast coverage area", nil)
	}

	return &GridRef{
		Office:   resp.Properties.GridID,
		GridX:    resp.Properties.GridX,
		GridY:    resp.Properties.GridY,
		TimeZone: resp.Properties.TimeZone,
	}, nil
}

// gridpointResponse wraps the raw property series bundle.
type gridpointResponse struct {
	Properties meteo.GridpointBundle `json:"properties"`
}

// FetchGridpoint retrieves the raw interval series bundle for a grid cell.
func (c *ForecastClient) FetchGridpoint(ctx context.Context, grid GridRef) (*meteo.GridpointBundle, error) {
	u := fmt.Sprintf("%s/gridpoints/%s/%d,%d", c.baseURL, grid.Office, grid.GridX, grid.GridY)
	var resp gridpointResponse
	if err := c.base.getJSON(ctx, u, &resp, types.ErrCodeUpstreamWeather); err != nil {
		return nil, err
	}
	return &resp.Properties, nil
}

// periodsResponse wraps the half-day forecast periods.
type periodsResponse struct {
	Properties struct {
		Periods []meteo.ForecastPeriod `json:"periods"`
	} `json:"properties"`
}

// FetchForecastPeriods retrieves the published half-day forecast product.
func (c *ForecastClient) FetchForecastPeriods(ctx context.Context, grid GridRef) ([]meteo.ForecastPeriod, error) {
	u := fmt.Sprintf("%s/gridpoints/%s/%d,%d/forecast", c.baseURL, grid.Office, grid.GridX, grid.GridY)
	var resp periodsResponse
	if err := c.base.getJSON(ctx, u, &resp, types.ErrCodeUpstreamWeather); err != nil {
		return nil, err
	}
	return resp.Properties.Periods, nil
}

// alertsResponse is the GeoJSON feature collection of active alerts.
type alertsResponse struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			Event       string     `json:"event"`
			Headline    string     `json:"headline"`
			Severity    string     `json:"severity"`
			Description string     `json:"description"`
			Onset       *time.Time `json:"onset"`
			Ends        *time.Time `json:"ends"`
		} `json:"properties"`
	} `json:"features"`
}

// FetchAlerts retrieves the active alerts covering a point. An empty slice
// means no active alerts, which is the common case.
func (c *ForecastClient) FetchAlerts(ctx context.Context, lat, lon float64) ([]Alert, error) {
	q := url.Values{}
	q.Set("point", fmt.Sprintf("%.4f,%.4f", lat, lon))
	u := fmt.Sprintf("%s/alerts/active?%s", c.baseURL, q.Encode())

	var resp alertsResponse
	if err := c.base.getJSON(ctx, u, &resp, types.ErrCodeUpstreamWeather); err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0, len(resp.Features))
	for _, f := range resp.Features {
		alerts = append(alerts, Alert{
			ID:          f.ID,
			Event:       f.Properties.Event,
			Headline:    f.Properties.Headline,
			Severity:    f.Properties.Severity,
			Description: f.Properties.Description,
			Onset:       f.Properties.Onset,
			Ends:        f.Properties.Ends,
		})
	}
	return alerts, nil
}
