package meteo

import (
	"strings"
	"time"
)

// Category is the closed categorical weather condition enumeration. When
// multiple signals qualify at once, the precedence order is total:
// storm > snow > drizzle > rain > fog > cloudy > clear.
type Category string

const (
	CategoryStorm   Category = "storm"
	CategorySnow    Category = "snow"
	CategoryDrizzle Category = "drizzle"
	CategoryRain    Category = "rain"
	CategoryFog     Category = "fog"
	CategoryCloudy  Category = "cloudy"
	CategoryClear   Category = "clear"
)

// Classification thresholds. The category tree and the icon tree use
// deliberately different sky-cover bands; the divergence is UI tuning
// inherited from the timeline and icon designs and must not be collapsed.
const (
	// cloudyCategoryThreshold is the sky-cover percentage above which an
	// otherwise-clear hour is classified cloudy.
	cloudyCategoryThreshold = 60

	// overcastTextThreshold switches the cloudy label from "Mostly Cloudy"
	// to "Overcast".
	overcastTextThreshold = 85

	// partlyCloudyTextThreshold switches the clear label from "Clear" to
	// "Partly Cloudy".
	partlyCloudyTextThreshold = 25

	// rainTextThreshold switches the rain label from "Light Rain" to "Rain".
	rainTextThreshold = 70

	// rainProbabilityThreshold is the precipitation probability above which
	// an hour without explicit rain phenomena is still classified rain.
	rainProbabilityThreshold = 50
)

// IsDaytime reports whether an hour-of-day falls in the daytime band [6, 20).
// Day/night never changes condition text, only icon selection.
func IsDaytime(hour int) bool {
	return hour >= 6 && hour < 20
}

// phenomenon predicates over the event list at one instant. An empty list
// yields false for all of them: absence of data is absence of signal.

func anyMentions(events []PhenomenonEvent, substrs ...string) bool {
	for _, e := range events {
		text := e.Text()
		if text == "" {
			continue
		}
		for _, sub := range substrs {
			if strings.Contains(text, sub) {
				return true
			}
		}
	}
	return false
}

// hasLightRain reports a "light … rain/shower" phenomenon, the weak-rain
// signal that classifies as drizzle.
func hasLightRain(events []PhenomenonEvent) bool {
	for _, e := range events {
		text := e.Text()
		if strings.Contains(text, "light") &&
			(strings.Contains(text, "rain") || strings.Contains(text, "shower")) {
			return true
		}
	}
	return false
}

// Classify infers the categorical condition at instant t from the bundle's
// weak signals. Precedence is fixed and first-match-wins; missing series
// simply contribute no signal, so a fully empty bundle classifies clear.
func Classify(t time.Time, b *GridpointBundle) Category {
	if b == nil {
		return CategoryClear
	}

	events := b.Weather.EventsAt(t)
	snowAmount := b.SnowfallAmount.ValueAt(t)
	precipProb := b.ProbabilityOfPrecipitation.ValueAt(t)
	skyCover := b.SkyCover.ValueAt(t)

	switch {
	case anyMentions(events, "thunder"):
		return CategoryStorm
	case anyMentions(events, "snow") || (snowAmount != nil && *snowAmount > 0):
		return CategorySnow
	case anyMentions(events, "drizzle") || hasLightRain(events):
		return CategoryDrizzle
	case anyMentions(events, "rain", "shower") ||
		(precipProb != nil && *precipProb > rainProbabilityThreshold):
		return CategoryRain
	case anyMentions(events, "fog", "mist"):
		return CategoryFog
	case skyCover != nil && *skyCover > cloudyCategoryThreshold:
		return CategoryCloudy
	default:
		return CategoryClear
	}
}

// ConditionText renders the short display label for the condition at t.
// The label bands differ from both the category threshold and the icon bands.
func ConditionText(t time.Time, b *GridpointBundle) string {
	category := Classify(t, b)

	var skyCover, precipProb *float64
	if b != nil {
		skyCover = b.SkyCover.ValueAt(t)
		precipProb = b.ProbabilityOfPrecipitation.ValueAt(t)
	}

	switch category {
	case CategoryStorm:
		return "Thunderstorms"
	case CategorySnow:
		return "Snow"
	case CategoryDrizzle:
		return "Drizzle"
	case CategoryRain:
		if precipProb != nil && *precipProb >= rainTextThreshold {
			return "Rain"
		}
		return "Light Rain"
	case CategoryFog:
		return "Fog"
	case CategoryCloudy:
		if skyCover != nil && *skyCover > overcastTextThreshold {
			return "Overcast"
		}
		return "Mostly Cloudy"
	default:
		if skyCover != nil && *skyCover > partlyCloudyTextThreshold {
			return "Partly Cloudy"
		}
		return "Clear"
	}
}

// HourlyIcon selects the display glyph for the conditions at t. This is a
// parallel decision tree to Classify with finer sky-cover bands (75/50/25)
// crossed with the day/night flag; it must stay distinct from the category
// classification.
func HourlyIcon(t time.Time, b *GridpointBundle) string {
	daytime := IsDaytime(t.Hour())
	if b == nil {
		if daytime {
			return "☀️"
		}
		return "🌙"
	}

	events := b.Weather.EventsAt(t)
	snowAmount := b.SnowfallAmount.ValueAt(t)
	precipProb := b.ProbabilityOfPrecipitation.ValueAt(t)
	skyCover := b.SkyCover.ValueAt(t)

	switch {
	case anyMentions(events, "thunder"):
		return "⛈️"
	case anyMentions(events, "snow") || (snowAmount != nil && *snowAmount > 0):
		return "🌨️"
	case anyMentions(events, "rain", "shower", "drizzle") ||
		(precipProb != nil && *precipProb > rainProbabilityThreshold):
		return "🌧️"
	case anyMentions(events, "fog", "mist"):
		return "🌫️"
	}

	if skyCover != nil {
		switch {
		case *skyCover > 75:
			return "☁️"
		case *skyCover > 50:
			if daytime {
				return "⛅"
			}
			return "☁️"
		case *skyCover > 25:
			if daytime {
				return "🌤️"
			}
			return "☁️"
		}
	}

	if daytime {
		return "☀️"
	}
	return "🌙"
}

// PeriodIcon selects a glyph from free-text period forecast conditions
// ("Chance Rain Showers", "Mostly Sunny"). Used by the daily path, which has
// no gridpoint series to classify from.
func PeriodIcon(conditions string, isDaytime bool) string {
	text := strings.ToLower(conditions)

	switch {
	case strings.Contains(text, "thunder") || strings.Contains(text, "storm"):
		return "⛈️"
	case strings.Contains(text, "rain") || strings.Contains(text, "shower"):
		return "🌧️"
	case strings.Contains(text, "snow"):
		return "🌨️"
	case strings.Contains(text, "fog") || strings.Contains(text, "mist"):
		return "🌫️"
	case strings.Contains(text, "cloud") || strings.Contains(text, "overcast"):
		if isDaytime {
			return "⛅"
		}
		return "☁️"
	case strings.Contains(text, "partly"):
		if isDaytime {
			return "🌤️"
		}
		return "☁️"
	case strings.Contains(text, "clear") || strings.Contains(text, "sunny"):
		if isDaytime {
			return "☀️"
		}
		return "🌙"
	default:
		if isDaytime {
			return "🌤️"
		}
		return "🌙"
	}
}
