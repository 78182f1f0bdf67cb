package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nimbus/internal/meteo"
	"nimbus/internal/types"
	"nimbus/internal/upstream"
)

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockForecast struct {
	mu sync.Mutex

	grid    upstream.GridRef
	gridErr error

	bundle    *meteo.GridpointBundle
	bundleErr error

	periods    []meteo.ForecastPeriod
	periodsErr error

	alerts    []upstream.Alert
	alertsErr error

	resolveCalls int
	bundleCalls  int
}

func (m *mockForecast) ResolvePoint(_ context.Context, _, _ float64) (*upstream.GridRef, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()
	if m.gridErr != nil {
		return nil, m.gridErr
	}
	grid := m.grid
	return &grid, nil
}

func (m *mockForecast) FetchGridpoint(_ context.Context, _ upstream.GridRef) (*meteo.GridpointBundle, error) {
	m.mu.Lock()
	m.bundleCalls++
	m.mu.Unlock()
	return m.bundle, m.bundleErr
}

func (m *mockForecast) FetchForecastPeriods(_ context.Context, _ upstream.GridRef) ([]meteo.ForecastPeriod, error) {
	return m.periods, m.periodsErr
}

func (m *mockForecast) FetchAlerts(_ context.Context, _, _ float64) ([]upstream.Alert, error) {
	return m.alerts, m.alertsErr
}

type mockArchive struct {
	bundle *meteo.HistoricalBundle
	err    error
}

func (m *mockArchive) FetchDay(_ context.Context, _, _ float64, _ time.Time) (*meteo.HistoricalBundle, error) {
	return m.bundle, m.err
}

type mockSnapshots struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockSnapshots) Save(_ context.Context, _, _ float64, _ time.Time, _ *Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func (m *mockSnapshots) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

// testBundle covers testNow with a flat 20C forecast and a 40 percent
// precipitation probability.
func testBundle() *meteo.GridpointBundle {
	validTime := testNow.Format(time.RFC3339) + "/PT12H"
	series := func(uom string, v float64) *meteo.PropertySeries {
		return &meteo.PropertySeries{
			UOM:    uom,
			Values: []meteo.IntervalValue{{ValidTime: validTime, Value: &v}},
		}
	}
	return &meteo.GridpointBundle{
		Temperature:                series("wmoUnit:degC", 20),
		ApparentTemperature:        series("wmoUnit:degC", 18),
		Dewpoint:                   series("wmoUnit:degC", 10),
		RelativeHumidity:           series("wmoUnit:percent", 55.4),
		ProbabilityOfPrecipitation: series("wmoUnit:percent", 40),
		SkyCover:                   series("wmoUnit:percent", 30),
		WindSpeed:                  series("wmoUnit:km_h-1", 16),
		WindGust:                   series("wmoUnit:km_h-1", 32),
		WindDirection:              series("wmoUnit:degree_(angle)", 270),
	}
}

func newTestService(fc *mockForecast, ar ArchiveProvider, sn SnapshotStore, clock types.Clock) *Service {
	return NewService(fc, ar, sn, nil, clock)
}

func TestGetDashboard(t *testing.T) {
	fc := &mockForecast{
		grid:   upstream.GridRef{Office: "OKX", GridX: 33, GridY: 35, TimeZone: "America/New_York"},
		bundle: testBundle(),
		periods: []meteo.ForecastPeriod{
			{Name: "Today", StartTime: testNow, EndTime: testNow.Add(6 * time.Hour), IsDaytime: true, ShortForecast: "Sunny"},
			{Name: "Tonight", StartTime: testNow.Add(6 * time.Hour), EndTime: testNow.Add(18 * time.Hour), ShortForecast: "Clear"},
		},
		alerts: []upstream.Alert{{ID: "a1", Event: "Wind Advisory"}},
	}
	svc := newTestService(fc, nil, nil, &mockClock{now: testNow})

	dash, err := svc.GetDashboard(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)

	assert.Equal(t, 40.7128, dash.Location.Lat)
	assert.Equal(t, testNow, dash.GeneratedAt)

	require.NotNil(t, dash.Current.Temperature)
	assert.Equal(t, 68, *dash.Current.Temperature)
	require.NotNil(t, dash.Current.FeelsLike)
	assert.Equal(t, 64, *dash.Current.FeelsLike)
	require.NotNil(t, dash.Current.Humidity)
	assert.Equal(t, 55, *dash.Current.Humidity)
	require.NotNil(t, dash.Current.WindSpeed)
	assert.Equal(t, 10, *dash.Current.WindSpeed)
	assert.Equal(t, "Partly Cloudy", dash.Current.Condition)
	assert.Equal(t, "40% chance of rain in the next hour.", dash.Current.NextHour)

	assert.Len(t, dash.Hourly, 12)
	assert.Len(t, dash.HourlySpans, 12)
	assert.True(t, dash.Hourly[0].IsNow)

	require.Len(t, dash.Days, 1)
	assert.Equal(t, "Today", dash.Days[0].Name)

	require.Len(t, dash.Alerts, 1)
	assert.Equal(t, "Wind Advisory", dash.Alerts[0].Event)
}

func TestGetDashboardValidatesCoordinates(t *testing.T) {
	fc := &mockForecast{bundle: testBundle()}
	svc := newTestService(fc, nil, nil, &mockClock{now: testNow})

	_, err := svc.GetDashboard(context.Background(), 91, 0)
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidLat, appErr.Code)
	assert.Equal(t, 0, fc.resolveCalls)
}

func TestGetDashboardGridCached(t *testing.T) {
	fc := &mockForecast{bundle: testBundle()}
	clock := &mockClock{now: testNow}
	svc := newTestService(fc, nil, nil, clock)

	_, err := svc.GetDashboard(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)

	clock.advance(2 * time.Minute)
	_, err = svc.GetDashboard(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)

	assert.Equal(t, 1, fc.resolveCalls)
	assert.Equal(t, 2, fc.bundleCalls)
}

func TestGetDashboardServedFromCacheWithinTTL(t *testing.T) {
	fc := &mockForecast{bundle: testBundle()}
	clock := &mockClock{now: testNow}
	svc := newTestService(fc, nil, nil, clock)

	first, err := svc.GetDashboard(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)

	clock.advance(30 * time.Second)
	second, err := svc.GetDashboard(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, fc.bundleCalls)
}

func TestGetDashboardAlertsDegraded(t *testing.T) {
	fc := &mockForecast{
		bundle:    testBundle(),
		alertsErr: errors.New("alerts feed down"),
	}
	svc := newTestService(fc, nil, nil, &mockClock{now: testNow})

	dash, err := svc.GetDashboard(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)
	assert.Empty(t, dash.Alerts)
}

func TestGetDashboardGridpointFailure(t *testing.T) {
	fc := &mockForecast{
		bundleErr: types.NewAppError(types.ErrCodeUpstreamUnavailable, "gridpoint down", nil),
	}
	svc := newTestService(fc, nil, nil, &mockClock{now: testNow})

	_, err := svc.GetDashboard(context.Background(), 40.7128, -74.006)
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamUnavailable, appErr.Code)
}

func TestGetDashboardSnapshots(t *testing.T) {
	fc := &mockForecast{bundle: testBundle()}
	snaps := &mockSnapshots{}
	svc := newTestService(fc, nil, snaps, &mockClock{now: testNow})

	_, err := svc.GetDashboard(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)
	assert.Equal(t, 1, snaps.count())
}

func TestGetDashboardSnapshotFailureIgnored(t *testing.T) {
	fc := &mockForecast{bundle: testBundle()}
	snaps := &mockSnapshots{err: errors.New("bucket gone")}
	svc := newTestService(fc, nil, snaps, &mockClock{now: testNow})

	dash, err := svc.GetDashboard(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)
	require.NotNil(t, dash)
}

func TestGetDayDetail(t *testing.T) {
	fc := &mockForecast{
		grid:   upstream.GridRef{Office: "OKX", GridX: 33, GridY: 35, TimeZone: "America/New_York"},
		bundle: testBundle(),
	}
	svc := newTestService(fc, nil, nil, &mockClock{now: testNow})

	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	detail, err := svc.GetDayDetail(context.Background(), 40.7128, -74.006, day)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", detail.Date)
	assert.Len(t, detail.Hours, 12)
	assert.Len(t, detail.Spans, len(detail.Hours))
	for _, h := range detail.Hours {
		assert.False(t, h.IsNow)
	}
}

func TestGetDayDetailBadZoneFallsBackToUTC(t *testing.T) {
	fc := &mockForecast{
		grid:   upstream.GridRef{Office: "OKX", GridX: 33, GridY: 35, TimeZone: "Not/AZone"},
		bundle: testBundle(),
	}
	svc := newTestService(fc, nil, nil, &mockClock{now: testNow})

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	detail, err := svc.GetDayDetail(context.Background(), 40.7128, -74.006, day)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", detail.Date)
	assert.NotEmpty(t, detail.Hours)
}

func TestGetHistorical(t *testing.T) {
	high, low := 15.0, 4.0
	code := 61
	bundle := &meteo.HistoricalBundle{}
	bundle.Daily.TemperatureMax = []*float64{&high}
	bundle.Daily.TemperatureMin = []*float64{&low}
	bundle.Daily.WeatherCode = []*int{&code}

	svc := newTestService(&mockForecast{}, &mockArchive{bundle: bundle}, nil, &mockClock{now: testNow})

	view, err := svc.GetHistorical(context.Background(), 40.7128, -74.006, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2020-06-01", view.Date)
	require.NotNil(t, view.Summary.HighTemp)
	assert.Equal(t, 15, *view.Summary.HighTemp)
	assert.Equal(t, meteo.CategoryDrizzle, view.Summary.Category)
	assert.Empty(t, view.Hours)
}

func TestGetHistoricalNotConfigured(t *testing.T) {
	svc := newTestService(&mockForecast{}, nil, nil, &mockClock{now: testNow})

	_, err := svc.GetHistorical(context.Background(), 40.7128, -74.006, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamHistorical, appErr.Code)
}

func TestGetHistoricalUpstreamError(t *testing.T) {
	ar := &mockArchive{err: types.NewAppError(types.ErrCodeUpstreamHistorical, "archive down", nil)}
	svc := newTestService(&mockForecast{}, ar, nil, &mockClock{now: testNow})

	_, err := svc.GetHistorical(context.Background(), 40.7128, -74.006, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
}
