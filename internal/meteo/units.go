package meteo

import (
	"math"
	"strings"
)

// Unit conversion factors. Conversions are applied exactly once, at the point
// a raw series value crosses into display units; intermediate computations
// (classification thresholds, narrative thresholds) always operate on
// unrounded source values.
const (
	kmhPerMph = 0.621371
	mmPerInch = 25.4
)

// CelsiusToFahrenheit converts a temperature in degrees Celsius to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FahrenheitToCelsius is the inverse of CelsiusToFahrenheit.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// KmhToMph converts a wind speed in kilometres per hour to miles per hour.
func KmhToMph(kmh float64) float64 {
	return kmh * kmhPerMph
}

// MmToInches converts a precipitation depth in millimetres to inches.
func MmToInches(mm float64) float64 {
	return mm / mmPerInch
}

// IsCelsius reports whether a series' unit-of-measure tag declares degrees
// Celsius (e.g. "wmoUnit:degC"). Used to decide whether a temperature value
// needs conversion; a series is never converted twice.
func (s *PropertySeries) IsCelsius() bool {
	if s == nil {
		return false
	}
	uom := strings.ToLower(s.UOM)
	return strings.Contains(uom, "degc") || strings.Contains(uom, "celsius")
}

// IsKmh reports whether a series' unit-of-measure tag declares kilometres per
// hour (e.g. "wmoUnit:km_h-1").
func (s *PropertySeries) IsKmh() bool {
	if s == nil {
		return false
	}
	return strings.Contains(strings.ToLower(s.UOM), "km_h")
}

// DisplayTemperature resolves a temperature series value to whole display
// degrees Fahrenheit, converting from Celsius when the series is tagged as
// such. Rounding happens here and nowhere earlier.
func (s *PropertySeries) DisplayTemperature(v float64) int {
	if s.IsCelsius() {
		v = CelsiusToFahrenheit(v)
	}
	return int(math.Round(v))
}

// DisplayWindSpeed resolves a wind-speed series value to whole display mph.
func (s *PropertySeries) DisplayWindSpeed(v float64) int {
	if s.IsKmh() {
		v = KmhToMph(v)
	}
	return int(math.Round(v))
}
