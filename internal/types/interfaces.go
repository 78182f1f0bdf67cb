package types

import "time"

// Clock abstracts time for testability. The reduction pipeline never calls
// time.Now directly; every "now"-relative computation receives its reference
// instant through this interface so tests can pin it.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// Location is a geographic coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NamedLocation is a coordinate pair with a display label, as produced by
// geocoding and stored in the recents list.
type NamedLocation struct {
	Location
	Name string `json:"name"`
}

// ValidateLocation checks that lat/lon are within valid bounds.
func ValidateLocation(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return &AppError{
			Code:    ErrCodeValidationInvalidLat,
			Message: "latitude out of range [-90, 90]",
		}
	}
	if lon < -180 || lon > 180 {
		return &AppError{
			Code:    ErrCodeValidationInvalidLon,
			Message: "longitude out of range [-180, 180]",
		}
	}
	return nil
}
