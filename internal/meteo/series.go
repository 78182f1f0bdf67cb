// Package meteo implements the time-windowed meteorological reduction engine.
// It takes sparse, interval-stamped gridpoint time series (temperature,
// precipitation probability, sky cover, weather phenomena) and day-resolution
// historical archives, and reduces them into current conditions, per-hour
// display series, categorical condition classifications with contiguous-span
// detection, and natural-language precipitation summaries.
//
// Everything in this package is pure: no I/O, no clocks, no shared mutable
// state. Every computation receives its reference instant explicitly, so the
// same payload can be reduced at many instants and the results are
// reproducible. Missing series and unknown codes degrade to absent signals
// rather than errors; sparse upstream data must never hard-fail a render.
package meteo

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// hourDurationPattern matches the hour component of a compact ISO-8601
// duration token, e.g. "PT3H". Gridpoint validity periods are commonly
// whole-hour; anything else falls back to a single hour.
var hourDurationPattern = regexp.MustCompile(`PT(\d+)H`)

// ParseDuration resolves a compact duration token to a time.Duration.
// Unrecognized or absent tokens default to exactly one hour. The default is
// load-bearing: many upstream validity periods omit the duration entirely for
// single-hour granularity.
func ParseDuration(token string) time.Duration {
	m := hourDurationPattern.FindStringSubmatch(token)
	if m == nil {
		return time.Hour
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil || hours <= 0 {
		return time.Hour
	}
	return time.Duration(hours) * time.Hour
}

// ParseValidTime splits a gridpoint validity stamp ("start/duration") into the
// half-open interval [start, end). A malformed start time yields ok=false and
// the caller must skip the interval.
func ParseValidTime(validTime string) (start, end time.Time, ok bool) {
	stampEnd := len(validTime)
	for i := 0; i < len(validTime); i++ {
		if validTime[i] == '/' {
			stampEnd = i
			break
		}
	}

	start, err := time.Parse(time.RFC3339, validTime[:stampEnd])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	var token string
	if stampEnd < len(validTime) {
		token = validTime[stampEnd+1:]
	}
	return start, start.Add(ParseDuration(token)), true
}

// IntervalValue is a single interval-stamped scalar observation within a
// PropertySeries. ValidTime carries the raw "start/duration" stamp as
// received; it is parsed on every lookup so the series stays immutable and
// lookups stay reentrant.
type IntervalValue struct {
	ValidTime string   `json:"validTime"`
	Value     *float64 `json:"value"`
}

// PropertySeries is the named ordered sequence of interval-stamped values for
// one physical quantity, plus its unit-of-measure tag. Intervals are ordered
// by start but may be irregular in length, and minor overlaps or gaps from
// upstream are tolerated: the first containing interval wins.
type PropertySeries struct {
	UOM    string          `json:"uom,omitempty"`
	Values []IntervalValue `json:"values"`
}

// ValueAt returns the value of the interval whose [start, end) range contains
// t, or nil if no interval covers t. Safe to call on a nil series.
func (s *PropertySeries) ValueAt(t time.Time) *float64 {
	if s == nil {
		return nil
	}
	for _, iv := range s.Values {
		start, end, ok := ParseValidTime(iv.ValidTime)
		if !ok {
			continue
		}
		if !t.Before(start) && t.Before(end) {
			return iv.Value
		}
	}
	return nil
}

// CurrentValue resolves the value at t for "current condition" queries.
// When t falls outside every interval it falls back to the first interval's
// value (the FallbackToFirst policy): series frequently begin slightly in the
// future of the wall clock, and a hero display showing the imminent value
// beats showing nothing. Returns nil only for an empty or nil series.
func (s *PropertySeries) CurrentValue(t time.Time) *float64 {
	if s == nil || len(s.Values) == 0 {
		return nil
	}
	if v := s.ValueAt(t); v != nil {
		return v
	}
	return s.Values[0].Value
}

// PhenomenonEvent is one coded weather descriptor (e.g. rain, thunderstorms,
// freezing drizzle) attached to a validity interval. A single interval may
// carry zero or more events.
type PhenomenonEvent struct {
	Coverage  *string `json:"coverage"`
	Weather   *string `json:"weather"`
	Intensity *string `json:"intensity"`
}

// Text returns the phenomenon name in lower case, or "" when absent.
func (e PhenomenonEvent) Text() string {
	if e.Weather == nil {
		return ""
	}
	return strings.ToLower(*e.Weather)
}

// WeatherInterval is an interval-stamped list of phenomenon events.
type WeatherInterval struct {
	ValidTime string            `json:"validTime"`
	Value     []PhenomenonEvent `json:"value"`
}

// WeatherSeries is the phenomenon-event series of a gridpoint.
type WeatherSeries struct {
	Values []WeatherInterval `json:"values"`
}

// EventsAt returns the phenomenon events whose interval contains t, or nil
// when no interval covers t. Safe to call on a nil series.
func (s *WeatherSeries) EventsAt(t time.Time) []PhenomenonEvent {
	if s == nil {
		return nil
	}
	for _, wi := range s.Values {
		start, end, ok := ParseValidTime(wi.ValidTime)
		if !ok {
			continue
		}
		if !t.Before(start) && t.Before(end) {
			return wi.Value
		}
	}
	return nil
}

// GridpointBundle is the full set of property series for one forecast grid
// cell, as returned by the gridpoint endpoint. Any field may be absent;
// every consumer treats a nil series as "no signal".
type GridpointBundle struct {
	Temperature                *PropertySeries `json:"temperature"`
	ApparentTemperature        *PropertySeries `json:"apparentTemperature"`
	Dewpoint                   *PropertySeries `json:"dewpoint"`
	RelativeHumidity           *PropertySeries `json:"relativeHumidity"`
	ProbabilityOfPrecipitation *PropertySeries `json:"probabilityOfPrecipitation"`
	QuantitativePrecipitation  *PropertySeries `json:"quantitativePrecipitation"`
	SnowfallAmount             *PropertySeries `json:"snowfallAmount"`
	SkyCover                   *PropertySeries `json:"skyCover"`
	WindSpeed                  *PropertySeries `json:"windSpeed"`
	WindDirection              *PropertySeries `json:"windDirection"`
	WindGust                   *PropertySeries `json:"windGust"`
	Weather                    *WeatherSeries  `json:"weather"`
}
