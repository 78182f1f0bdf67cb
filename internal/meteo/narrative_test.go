package meteo

import (
	"testing"
	"time"
)

// narrativeBundle builds a bundle whose precipitation probability is defined
// minute-by-minute via short intervals, plus optional QPF and phenomena
// covering the whole hour.
func narrativeBundle(now time.Time, probsByMinute map[int]float64, qpf *float64, events []PhenomenonEvent) *GridpointBundle {
	hourStamp := now.Format(time.RFC3339) + "/PT1H"

	b := &GridpointBundle{ProbabilityOfPrecipitation: &PropertySeries{}}
	// Each defined minute opens a one-hour interval. Inserting in descending
	// start order makes the nearest preceding interval win the first-match
	// scan, so undefined minutes carry the last defined value forward.
	for m := 60; m >= 0; m -= 10 {
		prob, ok := probsByMinute[m]
		if !ok {
			continue
		}
		stamp := now.Add(time.Duration(m)*time.Minute).Format(time.RFC3339) + "/PT1H"
		b.ProbabilityOfPrecipitation.Values = append(b.ProbabilityOfPrecipitation.Values,
			IntervalValue{ValidTime: stamp, Value: f64(prob)})
	}

	if qpf != nil {
		b.QuantitativePrecipitation = &PropertySeries{UOM: "wmoUnit:mm",
			Values: []IntervalValue{{ValidTime: hourStamp, Value: qpf}}}
	}
	if events != nil {
		b.Weather = &WeatherSeries{Values: []WeatherInterval{{ValidTime: hourStamp, Value: events}}}
	}
	return b
}

func TestSummarizeNextHour(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		probs  map[int]float64
		qpf    *float64
		events []PhenomenonEvent
		want   string
	}{
		{
			name:  "rain starting",
			probs: map[int]float64{0: 10, 10: 15, 20: 55, 30: 80},
			want:  "Rain starting in 20 min.",
		},
		{
			name:  "rain stopping",
			probs: map[int]float64{0: 80, 10: 60, 20: 40, 30: 20},
			want:  "Rain stopping in 30 min.",
		},
		{
			name:  "heavy rain continuing",
			probs: map[int]float64{0: 90, 10: 90, 20: 90, 30: 90, 40: 90, 50: 90, 60: 90},
			qpf:   f64(6),
			want:  "Heavy rain for the next hour.",
		},
		{
			name:  "moderate rain continuing",
			probs: map[int]float64{0: 90, 10: 90, 20: 90, 30: 90, 40: 90, 50: 90, 60: 90},
			qpf:   f64(2),
			want:  "Rain continuing for the next hour.",
		},
		{
			name:  "light rain continuing",
			probs: map[int]float64{0: 90, 10: 90, 20: 90, 30: 90, 40: 90, 50: 90, 60: 90},
			qpf:   f64(0.5),
			want:  "Light rain for the next hour.",
		},
		{
			name:  "no qpf series defaults light",
			probs: map[int]float64{0: 60, 10: 60, 20: 60, 30: 60, 40: 60, 50: 60, 60: 60},
			want:  "Light rain for the next hour.",
		},
		{
			name:  "chance of rain",
			probs: map[int]float64{0: 10, 10: 20, 20: 42, 30: 35},
			want:  "42% chance of rain in the next hour.",
		},
		{
			name:  "quiet hour",
			probs: map[int]float64{0: 5, 30: 10, 60: 15},
			want:  NoPrecipitationNarrative,
		},
		{
			name:   "snow phenomenon at now",
			probs:  map[int]float64{0: 10, 20: 70},
			events: []PhenomenonEvent{event("Light Snow")},
			want:   "Snow starting in 20 min.",
		},
		{
			name:   "freezing rain phenomenon",
			probs:  map[int]float64{0: 80, 10: 10},
			qpf:    f64(2),
			events: []PhenomenonEvent{event("Freezing Rain")},
			want:   "Freezing rain stopping in 10 min.",
		},
		{
			name:   "snow outranks freezing rain",
			probs:  map[int]float64{0: 10, 10: 60},
			events: []PhenomenonEvent{event("Freezing Rain"), event("Snow")},
			want:   "Snow starting in 10 min.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := narrativeBundle(now, tt.probs, tt.qpf, tt.events)
			if got := SummarizeNextHour(b, now); got != tt.want {
				t.Errorf("SummarizeNextHour = %q, want %q", got, tt.want)
			}
		})
	}

	if got := SummarizeNextHour(nil, now); got != NoPrecipitationNarrative {
		t.Errorf("nil bundle = %q, want %q", got, NoPrecipitationNarrative)
	}

	// Missing probability samples read as zero, not as errors.
	empty := &GridpointBundle{ProbabilityOfPrecipitation: &PropertySeries{}}
	if got := SummarizeNextHour(empty, now); got != NoPrecipitationNarrative {
		t.Errorf("empty series = %q, want %q", got, NoPrecipitationNarrative)
	}
}

func TestSnowfallAmountImpliesSnowNarrative(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := narrativeBundle(now, map[int]float64{0: 10, 20: 60}, nil, nil)
	b.SnowfallAmount = &PropertySeries{
		Values: []IntervalValue{{ValidTime: now.Format(time.RFC3339) + "/PT1H", Value: f64(3)}},
	}

	if got := SummarizeNextHour(b, now); got != "Snow starting in 20 min." {
		t.Errorf("got %q, want snow narrative", got)
	}
}

func TestSummarize12Hour(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	b := &GridpointBundle{
		QuantitativePrecipitation: &PropertySeries{UOM: "wmoUnit:mm",
			Values: []IntervalValue{
				// Straddles the window start: counts in full.
				{ValidTime: "2026-03-01T10:00:00Z/PT6H", Value: f64(12.7)},
				// Fully inside.
				{ValidTime: "2026-03-01T18:00:00Z/PT3H", Value: f64(25.4)},
				// Straddles the window end: counts in full.
				{ValidTime: "2026-03-01T23:00:00Z/PT2H", Value: f64(12.7)},
				// Fully outside.
				{ValidTime: "2026-03-02T02:00:00Z/PT1H", Value: f64(100)},
				// Null value inside the window is skipped.
				{ValidTime: "2026-03-01T15:00:00Z/PT1H", Value: nil},
			}},
		Weather: &WeatherSeries{Values: []WeatherInterval{
			{ValidTime: "2026-03-01T13:00:00Z/PT2H", Value: []PhenomenonEvent{event("Rain Showers")}},
			{ValidTime: "2026-03-01T18:00:00Z/PT2H", Value: []PhenomenonEvent{event("Snow")}},
		}},
	}

	agg := Summarize12Hour(b, now)
	if want := 2.0; agg.AmountInches != want {
		t.Errorf("AmountInches = %v, want %v", agg.AmountInches, want)
	}
	// First phenomenon interval in the window wins, even when a later one
	// is "more severe".
	if agg.Type != "Rain" {
		t.Errorf("Type = %q, want %q", agg.Type, "Rain")
	}
}

func TestSummarize12HourEmpty(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	agg := Summarize12Hour(nil, now)
	if agg.AmountInches != 0 || agg.Type != "" {
		t.Errorf("nil bundle agg = %+v, want zero", agg)
	}

	agg = Summarize12Hour(&GridpointBundle{}, now)
	if agg.AmountInches != 0 || agg.Type != "" {
		t.Errorf("empty bundle agg = %+v, want zero", agg)
	}
}

func TestPrecipTypeFromForecast(t *testing.T) {
	tests := []struct {
		conditions string
		want       string
	}{
		{"Freezing Rain Likely", "Freezing Rain"},
		{"Sleet and Snow", "Ice/Sleet"},
		{"Ice Pellets", "Ice/Sleet"},
		{"Heavy Snow", "Snow"},
		{"Chance Rain Showers", "Rain"},
		{"Scattered Showers", "Rain"},
		{"Drizzle", "Rain"},
		{"Thunderstorms", "Rain"},
		{"Sunny", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PrecipTypeFromForecast(tt.conditions); got != tt.want {
			t.Errorf("PrecipTypeFromForecast(%q) = %q, want %q", tt.conditions, got, tt.want)
		}
	}
}
