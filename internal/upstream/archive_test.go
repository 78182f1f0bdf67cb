package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"nimbus/internal/types"
)

// mockClock pins Now for deterministic archive range checks.
type mockClock struct {
	now time.Time
}

func (c *mockClock) Now() time.Time { return c.now }

func newTestArchiveClient(t *testing.T, handler http.Handler, now time.Time) (*ArchiveClient, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := NewArchiveClient(
		&http.Client{Timeout: 5 * time.Second},
		server.URL,
		"Nimbus-Test/1.0",
		RetryPolicy{MaxRetries: 0, MinWait: time.Millisecond, MaxWait: time.Millisecond},
		&mockClock{now: now},
		WithSleepFunc(noopSleep),
	)
	return client, server.Close
}

func TestFetchDay(t *testing.T) {
	payload := `{
		"hourly":{"time":["2024-07-15T00:00","2024-07-15T01:00"],"temperature_2m":[71.3,70.8],"weather_code":[0,1]},
		"daily":{"temperature_2m_max":[93.4],"temperature_2m_min":[70.2],"precipitation_sum":[0.12],"weather_code":[3]}
	}`
	var gotQuery url.Values
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	client, done := newTestArchiveClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(payload))
	}), now)
	defer done()

	day := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	bundle, err := client.FetchDay(context.Background(), 40.7128, -74.006, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery.Get("start_date") != "2024-07-15" || gotQuery.Get("end_date") != "2024-07-15" {
		t.Errorf("date params = %v", gotQuery)
	}
	if gotQuery.Get("temperature_unit") != "fahrenheit" {
		t.Error("temperature unit must be fahrenheit")
	}
	if gotQuery.Get("precipitation_unit") != "inch" {
		t.Error("precipitation unit must be inch")
	}
	if gotQuery.Get("timezone") != "auto" {
		t.Error("timezone must be auto so hours start at local midnight")
	}

	if len(bundle.Hourly.Time) != 2 {
		t.Fatalf("hourly rows = %d, want 2", len(bundle.Hourly.Time))
	}
	if *bundle.Daily.TemperatureMax[0] != 93.4 {
		t.Errorf("daily max = %v", *bundle.Daily.TemperatureMax[0])
	}
}

func TestFetchDayNilClockDefaultsToRealClock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly":{"time":[]},"daily":{}}`))
	}))
	defer server.Close()

	client := NewArchiveClient(
		&http.Client{Timeout: 5 * time.Second},
		server.URL,
		"Nimbus-Test/1.0",
		RetryPolicy{MaxRetries: 0, MinWait: time.Millisecond, MaxWait: time.Millisecond},
		nil,
		WithSleepFunc(noopSleep),
	)

	// A week ago is always inside the availability window regardless of
	// the wall clock, so this exercises the defaulted clock's range check.
	day := time.Now().UTC().AddDate(0, 0, -7)
	if _, err := client.FetchDay(context.Background(), 40.7, -74.0, day); err != nil {
		t.Fatalf("FetchDay with nil clock = %v, want ok", err)
	}
}

func TestFetchDayRejectsOutOfRangeDates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	client, done := newTestArchiveClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for out-of-range dates")
	}), now)
	defer done()

	tests := []struct {
		name string
		day  time.Time
	}{
		{"before archive epoch", time.Date(1939, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"yesterday is too recent", now.AddDate(0, 0, -1)},
		{"future", now.AddDate(0, 0, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.FetchDay(context.Background(), 40.7, -74.0, tt.day)
			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("err = %v, want AppError", err)
			}
			if appErr.Code != types.ErrCodeValidationDateRange {
				t.Errorf("code = %q, want validation_date_out_of_range", appErr.Code)
			}
			if appErr.Details["max"] != "2026-03-07" {
				t.Errorf("details max = %v, want 2026-03-07", appErr.Details["max"])
			}
		})
	}
}

func TestFetchDayBoundaryDates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	client, done := newTestArchiveClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly":{"time":[]},"daily":{}}`))
	}), now)
	defer done()

	// Both window edges are inclusive.
	for _, day := range []time.Time{
		time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
	} {
		if _, err := client.FetchDay(context.Background(), 40.7, -74.0, day); err != nil {
			t.Errorf("FetchDay(%v) = %v, want ok", day.Format("2006-01-02"), err)
		}
	}
}

func TestFetchDayProviderErrorEnvelope(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	client, done := newTestArchiveClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":true,"reason":"Parameter 'latitude' is out of allowed range"}`))
	}), now)
	defer done()

	_, err := client.FetchDay(context.Background(), 40.7, -74.0, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeUpstreamHistorical {
		t.Fatalf("err = %v, want upstream_historical", err)
	}
	if appErr.Message != "Parameter 'latitude' is out of allowed range" {
		t.Errorf("message = %q, want provider reason passed through", appErr.Message)
	}
}
