package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nimbus/internal/meteo"
	"nimbus/internal/types"
)

// archiveHourlyFields and archiveDailyFields select the variables requested
// from the historical archive; they must stay in sync with the parallel-array
// fields of meteo.HistoricalBundle.
var (
	archiveHourlyFields = []string{
		"temperature_2m",
		"apparent_temperature",
		"precipitation_probability",
		"precipitation",
		"weather_code",
		"cloud_cover",
		"wind_speed_10m",
		"wind_direction_10m",
		"relative_humidity_2m",
	}
	archiveDailyFields = []string{
		"temperature_2m_max",
		"temperature_2m_min",
		"precipitation_sum",
		"weather_code",
	}
)

// ArchiveClient fetches finalized historical weather days from the archive
// provider. Data is requested in display units (Fahrenheit, mph, inches) so
// no normalization pass is needed downstream.
type ArchiveClient struct {
	base    *BaseClient
	baseURL string
	clock   types.Clock
}

// NewArchiveClient creates an ArchiveClient against baseURL. A nil clock
// defaults to the real clock.
func NewArchiveClient(httpClient *http.Client, baseURL, userAgent string, retry RetryPolicy, clock types.Clock, opts ...BaseClientOption) *ArchiveClient {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &ArchiveClient{
		base:    NewBaseClient(httpClient, "archive", retry, userAgent, opts...),
		baseURL: baseURL,
		clock:   clock,
	}
}

// archiveResponse adds the provider's inline error envelope to the bundle.
type archiveResponse struct {
	meteo.HistoricalBundle
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// FetchDay retrieves one archived day for a coordinate. The date must fall
// within the provider's availability window (1940-01-01 through three days
// ago); out-of-range dates are rejected locally before any network call.
func (c *ArchiveClient) FetchDay(ctx context.Context, lat, lon float64, day time.Time) (*meteo.HistoricalBundle, error) {
	if err := types.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}

	minDay, maxDay := meteo.ValidArchiveRange(c.clock.Now())
	if day.Before(minDay) || day.After(maxDay.Add(24*time.Hour-time.Nanosecond)) {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeValidationDateRange,
			"date is outside the archive availability window", nil,
			map[string]any{
				"min": minDay.Format("2006-01-02"),
				"max": maxDay.Format("2006-01-02"),
			})
	}

	dateStr := day.Format("2006-01-02")
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("start_date", dateStr)
	q.Set("end_date", dateStr)
	q.Set("hourly", strings.Join(archiveHourlyFields, ","))
	q.Set("daily", strings.Join(archiveDailyFields, ","))
	q.Set("temperature_unit", "fahrenheit")
	q.Set("wind_speed_unit", "mph")
	q.Set("precipitation_unit", "inch")
	q.Set("timezone", "auto")

	u := c.baseURL + "?" + q.Encode()
	var resp archiveResponse
	if err := c.base.getJSON(ctx, u, &resp, types.ErrCodeUpstreamHistorical); err != nil {
		return nil, err
	}
	if resp.Error {
		reason := resp.Reason
		if reason == "" {
			reason = "historical data not available"
		}
		return nil, types.NewAppError(types.ErrCodeUpstreamHistorical, reason, nil)
	}

	return &resp.HistoricalBundle, nil
}
