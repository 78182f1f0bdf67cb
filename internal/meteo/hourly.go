package meteo

import (
	"math"
	"time"
)

// ForwardWindowHours is the default length of the forward-looking hourly
// timeline.
const ForwardWindowHours = 12

// HourSample is the derived record for a single display hour. Samples are
// created fresh on every reduction and never mutated; a new slice replaces
// the old wholesale.
type HourSample struct {
	Time              time.Time `json:"time"`
	Temperature       *int      `json:"temperature"`
	FeelsLike         *int      `json:"feels_like"`
	PrecipProbability int       `json:"precip_probability"`
	Icon              string    `json:"icon"`
	Condition         string    `json:"condition"`
	Category          Category  `json:"category"`
	IsNow             bool      `json:"is_now"`
}

// BuildForwardWindow expands the temperature series into at most maxHours
// individual hour samples starting from the hour containing now. Multi-hour
// intervals are expanded into their constituent hours; hours fully in the
// past are skipped, and each hour-start timestamp appears exactly once even
// when overlapping source intervals cover it twice. Feels-like and
// precipitation probability are resolved independently against their own
// series, since their interval boundaries are not aligned to temperature's.
//
// IsNow is set only on the first sample of the window.
func BuildForwardWindow(b *GridpointBundle, now time.Time, maxHours int) []HourSample {
	if b == nil || b.Temperature == nil {
		return nil
	}
	if maxHours <= 0 {
		maxHours = ForwardWindowHours
	}

	samples := make([]HourSample, 0, maxHours)
	seen := make(map[time.Time]struct{}, maxHours)

	for _, iv := range b.Temperature.Values {
		if len(samples) >= maxHours {
			break
		}
		start, end, ok := ParseValidTime(iv.ValidTime)
		if !ok || iv.Value == nil {
			continue
		}
		if !end.After(now) {
			continue
		}

		hours := int(end.Sub(start) / time.Hour)
		for h := 0; h < hours && len(samples) < maxHours; h++ {
			hourTime := start.Add(time.Duration(h) * time.Hour)

			// Skip hours that have fully elapsed.
			if !hourTime.Add(time.Hour).After(now) {
				continue
			}
			key := hourTime.UTC()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			samples = append(samples, buildSample(b, hourTime, *iv.Value, len(samples) == 0))
		}
	}

	return samples
}

// BuildDayWindow expands the temperature series into hour samples bounded to
// the calendar day beginning at dayStart (local time of dayStart). Unlike the
// forward window there is no truncation relative to "now": already-elapsed
// hours of the day are included, and IsNow is never set. Hours with no
// covering temperature interval are simply absent from the result.
func BuildDayWindow(b *GridpointBundle, dayStart time.Time) []HourSample {
	if b == nil || b.Temperature == nil {
		return nil
	}

	dayStart = time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 0, 0, 0, 0, dayStart.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var samples []HourSample
	seen := make(map[time.Time]struct{}, 24)

	for _, iv := range b.Temperature.Values {
		start, end, ok := ParseValidTime(iv.ValidTime)
		if !ok || iv.Value == nil {
			continue
		}
		if !end.After(dayStart) || !start.Before(dayEnd) {
			continue
		}

		hours := int(end.Sub(start) / time.Hour)
		for h := 0; h < hours; h++ {
			hourTime := start.Add(time.Duration(h) * time.Hour)

			// Day windows are calendar-day-exclusive: hours belonging to
			// the neighboring days are never emitted here.
			if hourTime.Before(dayStart) || !hourTime.Before(dayEnd) {
				continue
			}
			key := hourTime.UTC()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			samples = append(samples, buildSample(b, hourTime, *iv.Value, false))
		}
	}

	return samples
}

// buildSample assembles one HourSample at hourTime given the raw temperature
// value from the covering interval.
func buildSample(b *GridpointBundle, hourTime time.Time, rawTemp float64, isNow bool) HourSample {
	temp := b.Temperature.DisplayTemperature(rawTemp)

	feelsLike := temp
	if v := b.ApparentTemperature.ValueAt(hourTime); v != nil {
		feelsLike = b.ApparentTemperature.DisplayTemperature(*v)
	}

	precipProb := 0
	if v := b.ProbabilityOfPrecipitation.ValueAt(hourTime); v != nil {
		precipProb = int(math.Round(*v))
	}

	return HourSample{
		Time:              hourTime,
		Temperature:       &temp,
		FeelsLike:         &feelsLike,
		PrecipProbability: precipProb,
		Icon:              HourlyIcon(hourTime, b),
		Condition:         ConditionText(hourTime, b),
		Category:          Classify(hourTime, b),
		IsNow:             isNow,
	}
}
