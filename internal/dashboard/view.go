package dashboard

import (
	"time"

	"nimbus/internal/meteo"
	"nimbus/internal/types"
	"nimbus/internal/upstream"
)

// CurrentConditions is the "right now" block at the top of the dashboard.
// Pointer fields are omitted when the gridpoint has no usable value.
type CurrentConditions struct {
	Temperature       *int                  `json:"temperature,omitempty"`
	FeelsLike         *int                  `json:"feels_like,omitempty"`
	Dewpoint          *int                  `json:"dewpoint,omitempty"`
	Humidity          *int                  `json:"humidity,omitempty"`
	WindSpeed         *int                  `json:"wind_speed,omitempty"`
	WindGust          *int                  `json:"wind_gust,omitempty"`
	WindDirection     *float64              `json:"wind_direction,omitempty"`
	SkyCover          *int                  `json:"sky_cover,omitempty"`
	PrecipProbability *int                  `json:"precip_probability,omitempty"`
	Condition         string                `json:"condition"`
	Icon              string                `json:"icon"`
	NextHour          string                `json:"next_hour"`
	PrecipNext12h     meteo.PrecipAggregate `json:"precip_next_12h"`
}

// Dashboard is the full view served by GET /v1/dashboard.
type Dashboard struct {
	Location    types.Location     `json:"location"`
	GeneratedAt time.Time          `json:"generated_at"`
	Current     CurrentConditions  `json:"current"`
	Hourly      []meteo.HourSample `json:"hourly"`
	HourlySpans []meteo.SpanKind   `json:"hourly_spans"`
	Days        []meteo.DaySummary `json:"days"`
	Alerts      []upstream.Alert   `json:"alerts"`
}

// DayDetail is the hour-by-hour breakdown of one forecast day.
type DayDetail struct {
	Date  string             `json:"date"`
	Hours []meteo.HourSample `json:"hours"`
	Spans []meteo.SpanKind   `json:"spans"`
}

// HistoricalView is the archived view of one past day.
type HistoricalView struct {
	Date    string                     `json:"date"`
	Summary meteo.HistoricalDaySummary `json:"summary"`
	Hours   []meteo.HourSample         `json:"hours"`
	Spans   []meteo.SpanKind           `json:"spans"`
}
