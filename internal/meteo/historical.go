package meteo

import (
	"math"
	"time"
)

// HistoricalBundle is the parallel-array archive payload as Open-Meteo
// returns it: index i across every hourly slice describes the same hour,
// index 0 of every daily slice describes the requested day. Slices may be
// shorter than expected or hold nulls; readers treat both as missing.
type HistoricalBundle struct {
	Hourly HistoricalHourly `json:"hourly"`
	Daily  HistoricalDaily  `json:"daily"`
}

type HistoricalHourly struct {
	Time                     []string   `json:"time"`
	Temperature              []*float64 `json:"temperature_2m"`
	ApparentTemperature      []*float64 `json:"apparent_temperature"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
	Precipitation            []*float64 `json:"precipitation"`
	WeatherCode              []*int     `json:"weather_code"`
	CloudCover               []*float64 `json:"cloud_cover"`
	WindSpeed                []*float64 `json:"wind_speed_10m"`
	WindDirection            []*float64 `json:"wind_direction_10m"`
	RelativeHumidity         []*float64 `json:"relative_humidity_2m"`
}

type HistoricalDaily struct {
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WeatherCode      []*int     `json:"weather_code"`
}

// HistoricalDaySummary condenses one archived day for the dashboard hero:
// the day's extremes, its representative (midday) conditions, and total
// precipitation in inches.
type HistoricalDaySummary struct {
	HighTemp     *int     `json:"high_temp"`
	LowTemp      *int     `json:"low_temp"`
	FeelsLike    *int     `json:"feels_like"`
	Condition    string   `json:"condition"`
	Icon         string   `json:"icon"`
	PrecipInches float64  `json:"precip_inches"`
	Category     Category `json:"category"`
}

// middayIndex is the hourly slice index used for representative conditions;
// archive hours start at local midnight.
const middayIndex = 12

func floatAt(vals []*float64, i int) *float64 {
	if i < 0 || i >= len(vals) {
		return nil
	}
	return vals[i]
}

func intAt(vals []*int, i int) *int {
	if i < 0 || i >= len(vals) {
		return nil
	}
	return vals[i]
}

// SummarizeHistoricalDay builds the hero summary for an archived day.
// Conditions come from the midday weather code, falling back to the daily
// code and then to clear sky. All temperatures are already in display units.
func SummarizeHistoricalDay(b *HistoricalBundle) HistoricalDaySummary {
	var s HistoricalDaySummary
	if b == nil {
		_, s.Icon, s.Category = LookupWMO(0, middayIndex)
		s.Condition, _, _ = LookupWMO(0, middayIndex)
		return s
	}

	if v := floatAt(b.Daily.TemperatureMax, 0); v != nil {
		high := int(math.Round(*v))
		s.HighTemp = &high
	}
	if v := floatAt(b.Daily.TemperatureMin, 0); v != nil {
		low := int(math.Round(*v))
		s.LowTemp = &low
	}
	if v := floatAt(b.Hourly.ApparentTemperature, middayIndex); v != nil {
		fl := int(math.Round(*v))
		s.FeelsLike = &fl
	}
	if v := floatAt(b.Daily.PrecipitationSum, 0); v != nil {
		s.PrecipInches = *v
	}

	code := 0
	if c := intAt(b.Hourly.WeatherCode, middayIndex); c != nil {
		code = *c
	} else if c := intAt(b.Daily.WeatherCode, 0); c != nil {
		code = *c
	}
	s.Condition, s.Icon, s.Category = LookupWMO(code, middayIndex)
	return s
}

// BuildHistoricalWindow converts the archive's hourly arrays into the same
// HourSample shape the forecast builder produces, capped at 24 samples.
// Hours with unparseable timestamps are dropped; missing codes degrade to
// clear sky and missing probabilities to zero. Historical samples never
// carry the now marker.
func BuildHistoricalWindow(b *HistoricalBundle) []HourSample {
	if b == nil {
		return nil
	}

	var samples []HourSample
	for i := 0; i < len(b.Hourly.Time) && i < 24; i++ {
		t, err := time.Parse("2006-01-02T15:04", b.Hourly.Time[i])
		if err != nil {
			if t, err = time.Parse(time.RFC3339, b.Hourly.Time[i]); err != nil {
				continue
			}
		}

		code := 0
		if c := intAt(b.Hourly.WeatherCode, i); c != nil {
			code = *c
		}
		condition, icon, category := LookupWMO(code, t.Hour())

		sample := HourSample{
			Time:      t,
			Icon:      icon,
			Condition: condition,
			Category:  category,
		}
		if v := floatAt(b.Hourly.Temperature, i); v != nil {
			temp := int(math.Round(*v))
			sample.Temperature = &temp
		}
		if v := floatAt(b.Hourly.ApparentTemperature, i); v != nil {
			fl := int(math.Round(*v))
			sample.FeelsLike = &fl
		}
		if v := floatAt(b.Hourly.PrecipitationProbability, i); v != nil {
			sample.PrecipProbability = int(math.Round(*v))
		}
		samples = append(samples, sample)
	}
	return samples
}

// ValidArchiveRange returns the inclusive date bounds the archive accepts:
// 1940-01-01 through three days before now, the provider's availability
// horizon for finalized data.
func ValidArchiveRange(now time.Time) (min, max time.Time) {
	min = time.Date(1940, time.January, 1, 0, 0, 0, 0, time.UTC)
	max = now.UTC().AddDate(0, 0, -3).Truncate(24 * time.Hour)
	return min, max
}
