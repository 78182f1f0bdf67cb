package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidLat, http.StatusBadRequest},
		{ErrCodeValidationDateRange, http.StatusBadRequest},
		{ErrCodeNotFoundLocation, http.StatusNotFound},
		{ErrCodeUpstreamRateLimited, http.StatusTooManyRequests},
		{ErrCodeUpstreamWeather, http.StatusBadGateway},
		{ErrCodeUpstreamRadar, http.StatusBadGateway},
		{ErrCodeInternalDB, http.StatusInternalServerError},
		{ErrorCode("something_unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestAppErrorChain(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewAppError(ErrCodeUpstreamWeather, "gridpoint fetch failed", inner)

	assert.Equal(t, "upstream_weather_unavailable: gridpoint fetch failed", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())

	var appErr *AppError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &appErr))
	assert.Equal(t, ErrCodeUpstreamWeather, appErr.Code)
}

func TestAppErrorDetails(t *testing.T) {
	err := NewAppErrorWithDetails(ErrCodeValidationDateRange, "date out of range", nil,
		map[string]any{"min": "1940-01-01", "max": "2026-03-07"})
	assert.Equal(t, "1940-01-01", err.Details["min"])
}

func TestValidateLocation(t *testing.T) {
	assert.NoError(t, ValidateLocation(40.7, -74.0))
	assert.NoError(t, ValidateLocation(-90, 180))

	var appErr *AppError
	require.ErrorAs(t, ValidateLocation(90.1, 0), &appErr)
	assert.Equal(t, ErrCodeValidationInvalidLat, appErr.Code)

	require.ErrorAs(t, ValidateLocation(0, -180.5), &appErr)
	assert.Equal(t, ErrCodeValidationInvalidLon, appErr.Code)
}

func TestSecretStringRedaction(t *testing.T) {
	secret := SecretString("postgres://user:hunter2@db/nimbus")

	assert.NotContains(t, fmt.Sprintf("%v", secret), "hunter2")
	assert.NotContains(t, fmt.Sprintf("%s", secret), "hunter2")

	data, err := json.Marshal(struct {
		URL SecretString `json:"url"`
	}{URL: secret})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.Contains(t, string(data), "REDACTED")

	assert.Equal(t, "postgres://user:hunter2@db/nimbus", secret.Unmask())
}
