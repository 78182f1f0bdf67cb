package meteo

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Narrative thresholds, in the source units of the series they test
// (probability in percent, quantitative precipitation in millimetres).
const (
	// precipActiveProbability is the probability at or above which the
	// current instant counts as precipitating.
	precipActiveProbability = 50

	// precipStopProbability is the probability below which active
	// precipitation counts as stopped.
	precipStopProbability = 30

	// heavyQPFThresholdMM and lightQPFThresholdMM band the continuing-rain
	// narrative by hourly precipitation depth.
	heavyQPFThresholdMM = 5
	lightQPFThresholdMM = 1

	// narrativeStepMinutes is the probability sampling step across the next
	// hour: minutes 0, 10, ..., 60 give seven samples per call.
	narrativeStepMinutes = 10

	// NoPrecipitationNarrative is the degraded-default summary.
	NoPrecipitationNarrative = "Next Hour: No precipitation."
)

// PrecipAggregate is the 12-hour precipitation roll-up: total depth in
// display inches and the dominant phenomenon label, "" when no typed
// precipitation phenomenon overlaps the window.
type PrecipAggregate struct {
	AmountInches float64 `json:"amount_inches"`
	Type         string  `json:"type,omitempty"`
}

// precipTypeAt derives the precipitation noun for narrative text from the
// phenomenon events at t, with precedence snow > freezing rain > rain.
// Snowfall amount acts as a secondary snow signal; rain is the default when
// nothing more specific is present.
func precipTypeAt(b *GridpointBundle, t time.Time) string {
	if b == nil {
		return "rain"
	}
	events := b.Weather.EventsAt(t)
	snowAmount := b.SnowfallAmount.ValueAt(t)

	if anyMentions(events, "snow") || (snowAmount != nil && *snowAmount > 0) {
		return "snow"
	}
	if anyMentions(events, "freezing", "sleet", "ice") {
		return "freezing rain"
	}
	return "rain"
}

// capitalize upper-cases the first letter of a narrative noun.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SummarizeNextHour produces the one-sentence precipitation outlook for the
// hour following now ("Rain starting in 20 min."). It samples the
// precipitation probability series at 10-minute steps across [now, now+60m]
// and classifies the transition. Each call is a fresh pure classification;
// no state carries between invocations.
func SummarizeNextHour(b *GridpointBundle, now time.Time) string {
	if b == nil {
		return NoPrecipitationNarrative
	}

	precipType := precipTypeAt(b, now)
	label := capitalize(precipType)

	type probSample struct {
		minutes int
		prob    float64
	}
	var samples []probSample
	for m := 0; m <= 60; m += narrativeStepMinutes {
		prob := 0.0
		if v := b.ProbabilityOfPrecipitation.ValueAt(now.Add(time.Duration(m) * time.Minute)); v != nil {
			prob = *v
		}
		samples = append(samples, probSample{minutes: m, prob: prob})
	}

	if samples[0].prob >= precipActiveProbability {
		// Active precipitation: look for the stopping point first.
		for _, s := range samples[1:] {
			if s.prob < precipStopProbability {
				return fmt.Sprintf("%s stopping in %d min.", label, s.minutes)
			}
		}
		qpf := b.QuantitativePrecipitation.ValueAt(now)
		switch {
		case qpf != nil && *qpf > heavyQPFThresholdMM:
			return fmt.Sprintf("Heavy %s for the next hour.", precipType)
		case qpf != nil && *qpf > lightQPFThresholdMM:
			return fmt.Sprintf("%s continuing for the next hour.", label)
		default:
			return fmt.Sprintf("Light %s for the next hour.", precipType)
		}
	}

	// Dry now: look for the onset point.
	for _, s := range samples[1:] {
		if s.prob >= precipActiveProbability {
			return fmt.Sprintf("%s starting in %d min.", label, s.minutes)
		}
	}

	maxProb := 0.0
	for _, s := range samples {
		if s.prob > maxProb {
			maxProb = s.prob
		}
	}
	if maxProb >= precipStopProbability {
		return fmt.Sprintf("%d%% chance of %s in the next hour.", int(math.Round(maxProb)), precipType)
	}
	return NoPrecipitationNarrative
}

// Summarize12Hour aggregates quantitative precipitation over the 12 hours
// following now. Every interval overlapping [now, now+12h) contributes its
// full depth (no pro-rating of partial overlap), converted to inches. The
// type is resolved independently from the first phenomenon event in the same
// window that names a precipitation type; first match wins.
func Summarize12Hour(b *GridpointBundle, now time.Time) PrecipAggregate {
	if b == nil {
		return PrecipAggregate{}
	}

	windowEnd := now.Add(12 * time.Hour)
	totalMM := 0.0

	if b.QuantitativePrecipitation != nil {
		for _, iv := range b.QuantitativePrecipitation.Values {
			start, end, ok := ParseValidTime(iv.ValidTime)
			if !ok || iv.Value == nil {
				continue
			}
			if start.Before(windowEnd) && end.After(now) {
				totalMM += *iv.Value
			}
		}
	}

	var precipType string
	if b.Weather != nil {
	outer:
		for _, wi := range b.Weather.Values {
			start, end, ok := ParseValidTime(wi.ValidTime)
			if !ok {
				continue
			}
			if !start.Before(windowEnd) || !end.After(now) {
				continue
			}
			for _, e := range wi.Value {
				if t := PrecipTypeFromForecast(e.Text()); t != "" {
					precipType = t
					break outer
				}
			}
		}
	}

	return PrecipAggregate{
		AmountInches: MmToInches(totalMM),
		Type:         precipType,
	}
}

// PrecipTypeFromForecast extracts a display precipitation type from free
// forecast text ("Freezing Rain Likely", "Rain Showers"). More specific
// types are checked first; thunderstorms imply rain. Returns "" when the
// text names no precipitation.
func PrecipTypeFromForecast(conditions string) string {
	text := strings.ToLower(conditions)
	switch {
	case text == "":
		return ""
	case strings.Contains(text, "freezing rain"):
		return "Freezing Rain"
	case strings.Contains(text, "ice") || strings.Contains(text, "sleet"):
		return "Ice/Sleet"
	case strings.Contains(text, "snow"):
		return "Snow"
	case strings.Contains(text, "rain") || strings.Contains(text, "shower") || strings.Contains(text, "drizzle"):
		return "Rain"
	case strings.Contains(text, "thunderstorm") || strings.Contains(text, "t-storm"):
		return "Rain"
	default:
		return ""
	}
}
