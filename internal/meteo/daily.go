package meteo

import "time"

// ForecastPeriod is a half-day entry from the published forecast product.
// Periods alternate day and night; temperature is already in display units.
type ForecastPeriod struct {
	Name                       string    `json:"name"`
	StartTime                  time.Time `json:"startTime"`
	EndTime                    time.Time `json:"endTime"`
	IsDaytime                  bool      `json:"isDaytime"`
	Temperature                *int      `json:"temperature"`
	ShortForecast              string    `json:"shortForecast"`
	DetailedForecast           string    `json:"detailedForecast"`
	ProbabilityOfPrecipitation struct {
		Value *float64 `json:"value"`
	} `json:"probabilityOfPrecipitation"`
}

// DaySummary is one row of the multi-day outlook: a daytime period paired
// with the night period that follows it. LowTemp is nil when the trailing
// night period is missing, which happens on the last day of the product.
type DaySummary struct {
	Name             string    `json:"name"`
	Date             time.Time `json:"date"`
	HighTemp         *int      `json:"high_temp"`
	LowTemp          *int      `json:"low_temp"`
	Conditions       string    `json:"conditions"`
	Icon             string    `json:"icon"`
	DetailedForecast string    `json:"detailed_forecast"`
	PrecipChance     int       `json:"precip_chance"`
	PrecipInches     float64   `json:"precip_inches"`
	PrecipType       string    `json:"precip_type,omitempty"`
}

// BuildDaySummaries pairs daytime periods with their following night
// periods. Night-first sequences (an evening request) contribute no row
// until the first daytime period; precipitation depth for each day is read
// from the gridpoint bundle so the outlook and the hourly timeline agree.
func BuildDaySummaries(periods []ForecastPeriod, b *GridpointBundle) []DaySummary {
	var days []DaySummary
	for i, p := range periods {
		if !p.IsDaytime {
			continue
		}
		day := DaySummary{
			Name:             p.Name,
			Date:             p.StartTime,
			HighTemp:         p.Temperature,
			Conditions:       p.ShortForecast,
			Icon:             PeriodIcon(p.ShortForecast, true),
			DetailedForecast: p.DetailedForecast,
			PrecipInches:     DayPrecipAmount(b, p.StartTime),
			PrecipType:       PrecipTypeFromForecast(p.ShortForecast),
		}
		if v := p.ProbabilityOfPrecipitation.Value; v != nil {
			day.PrecipChance = int(*v)
		}
		if i+1 < len(periods) && !periods[i+1].IsDaytime {
			day.LowTemp = periods[i+1].Temperature
		}
		days = append(days, day)
	}
	return days
}

// DayPrecipAmount totals quantitative precipitation for the calendar day
// containing dayStart, in inches. Any interval overlapping the day counts
// in full, matching the 12-hour aggregate's overlap rule.
func DayPrecipAmount(b *GridpointBundle, dayStart time.Time) float64 {
	if b == nil || b.QuantitativePrecipitation == nil {
		return 0
	}

	loc := dayStart.Location()
	start := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	totalMM := 0.0
	for _, iv := range b.QuantitativePrecipitation.Values {
		ivStart, ivEnd, ok := ParseValidTime(iv.ValidTime)
		if !ok || iv.Value == nil {
			continue
		}
		if ivStart.Before(end) && ivEnd.After(start) {
			totalMM += *iv.Value
		}
	}
	return MmToInches(totalMM)
}
