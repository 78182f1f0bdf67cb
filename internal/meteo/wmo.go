package meteo

// WMOInfo describes a single WMO weather interpretation code as reported by
// Open-Meteo: a display description, day and night icon variants, and the
// condition category the code maps onto.
type WMOInfo struct {
	Description string
	DayIcon     string
	NightIcon   string
	Category    Category
}

// wmoCodes is the WMO 4677 subset Open-Meteo emits. Unknown codes resolve
// to code 0.
var wmoCodes = map[int]WMOInfo{
	0:  {"Clear sky", "☀️", "🌙", CategoryClear},
	1:  {"Mainly clear", "🌤️", "🌙", CategoryClear},
	2:  {"Partly cloudy", "⛅", "☁️", CategoryCloudy},
	3:  {"Overcast", "☁️", "☁️", CategoryCloudy},
	45: {"Fog", "🌫️", "🌫️", CategoryFog},
	48: {"Depositing rime fog", "🌫️", "🌫️", CategoryFog},
	51: {"Light drizzle", "🌧️", "🌧️", CategoryDrizzle},
	53: {"Moderate drizzle", "🌧️", "🌧️", CategoryDrizzle},
	55: {"Dense drizzle", "🌧️", "🌧️", CategoryRain},
	56: {"Light freezing drizzle", "🌧️", "🌧️", CategoryDrizzle},
	57: {"Dense freezing drizzle", "🌧️", "🌧️", CategoryRain},
	61: {"Slight rain", "🌧️", "🌧️", CategoryDrizzle},
	63: {"Moderate rain", "🌧️", "🌧️", CategoryRain},
	65: {"Heavy rain", "🌧️", "🌧️", CategoryRain},
	66: {"Light freezing rain", "🌧️", "🌧️", CategoryDrizzle},
	67: {"Heavy freezing rain", "🌧️", "🌧️", CategoryRain},
	71: {"Slight snow", "🌨️", "🌨️", CategorySnow},
	73: {"Moderate snow", "🌨️", "🌨️", CategorySnow},
	75: {"Heavy snow", "🌨️", "🌨️", CategorySnow},
	77: {"Snow grains", "🌨️", "🌨️", CategorySnow},
	80: {"Slight rain showers", "🌧️", "🌧️", CategoryDrizzle},
	81: {"Moderate rain showers", "🌧️", "🌧️", CategoryRain},
	82: {"Violent rain showers", "🌧️", "🌧️", CategoryRain},
	85: {"Slight snow showers", "🌨️", "🌨️", CategorySnow},
	86: {"Heavy snow showers", "🌨️", "🌨️", CategorySnow},
	95: {"Thunderstorm", "⛈️", "⛈️", CategoryStorm},
	96: {"Thunderstorm with slight hail", "⛈️", "⛈️", CategoryStorm},
	99: {"Thunderstorm with heavy hail", "⛈️", "⛈️", CategoryStorm},
}

// LookupWMO resolves a WMO code for a given hour of day. Codes outside the
// table degrade to clear sky rather than failing. The hour selects the day
// or night icon variant using the same daylight window as the hourly
// builder.
func LookupWMO(code, hour int) (description, icon string, category Category) {
	info, ok := wmoCodes[code]
	if !ok {
		info = wmoCodes[0]
	}
	icon = info.NightIcon
	if IsDaytime(hour) {
		icon = info.DayIcon
	}
	return info.Description, icon, info.Category
}
