// Package dashboard implements the reduction service behind the weather
// dashboard API: it orchestrates the upstream fetches for a coordinate,
// runs the meteo reduction pipeline over the results, and assembles the
// view models the handlers serialize.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"nimbus/internal/meteo"
	"nimbus/internal/types"
	"nimbus/internal/upstream"
)

const (
	// dashboardCacheTTL bounds how long an assembled dashboard is served
	// without refetching. Gridpoint data updates hourly; one minute keeps
	// bursty clients from hammering the provider.
	dashboardCacheTTL = time.Minute

	// coordPrecision rounds cache keys so trivially different coordinates
	// ("40.71280" vs "40.7128") share entries.
	coordKeyFormat = "%.4f,%.4f"
)

// ForecastProvider is the slice of the forecast client the service consumes.
type ForecastProvider interface {
	ResolvePoint(ctx context.Context, lat, lon float64) (*upstream.GridRef, error)
	FetchGridpoint(ctx context.Context, grid upstream.GridRef) (*meteo.GridpointBundle, error)
	FetchForecastPeriods(ctx context.Context, grid upstream.GridRef) ([]meteo.ForecastPeriod, error)
	FetchAlerts(ctx context.Context, lat, lon float64) ([]upstream.Alert, error)
}

// ArchiveProvider fetches finalized historical days.
type ArchiveProvider interface {
	FetchDay(ctx context.Context, lat, lon float64, day time.Time) (*meteo.HistoricalBundle, error)
}

// SnapshotStore persists assembled dashboards for replay. Saves are
// best-effort; a failing store never fails a render.
type SnapshotStore interface {
	Save(ctx context.Context, lat, lon float64, at time.Time, d *Dashboard) error
}

// Service assembles dashboard views. Grid cell assignments are cached
// forever (they are immutable upstream); assembled dashboards are cached
// briefly per coordinate.
type Service struct {
	forecast ForecastProvider
	archive  ArchiveProvider
	snaps    SnapshotStore
	logger   *slog.Logger
	clock    types.Clock

	mu        sync.Mutex
	gridCache map[string]upstream.GridRef
	dashCache map[string]cachedDashboard
}

type cachedDashboard struct {
	dashboard *Dashboard
	fetchedAt time.Time
}

// NewService creates a dashboard Service. The archive provider and snapshot
// store are optional; a nil archive disables historical views and a nil
// store disables snapshotting.
func NewService(forecast ForecastProvider, archive ArchiveProvider, snaps SnapshotStore, logger *slog.Logger, clock types.Clock) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Service{
		forecast:  forecast,
		archive:   archive,
		snaps:     snaps,
		logger:    logger,
		clock:     clock,
		gridCache: make(map[string]upstream.GridRef),
		dashCache: make(map[string]cachedDashboard),
	}
}

// GetDashboard assembles the full dashboard for a coordinate: current
// conditions, the 12-hour timeline with condition spans, the precipitation
// narrative, the multi-day outlook, and active alerts. The gridpoint,
// forecast periods, and alerts are fetched in parallel after a single grid
// resolution.
func (s *Service) GetDashboard(ctx context.Context, lat, lon float64) (*Dashboard, error) {
	if err := types.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	key := fmt.Sprintf(coordKeyFormat, lat, lon)

	s.mu.Lock()
	if cached, ok := s.dashCache[key]; ok && now.Sub(cached.fetchedAt) < dashboardCacheTTL {
		s.mu.Unlock()
		return cached.dashboard, nil
	}
	s.mu.Unlock()

	grid, err := s.resolveGrid(ctx, key, lat, lon)
	if err != nil {
		return nil, err
	}

	var (
		bundle  *meteo.GridpointBundle
		periods []meteo.ForecastPeriod
		alerts  []upstream.Alert
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bundle, err = s.forecast.FetchGridpoint(gctx, grid)
		return err
	})
	g.Go(func() error {
		var err error
		periods, err = s.forecast.FetchForecastPeriods(gctx, grid)
		return err
	})
	g.Go(func() error {
		var err error
		alerts, err = s.forecast.FetchAlerts(gctx, lat, lon)
		if err != nil {
			// Alerts are auxiliary: log and render without them rather
			// than failing the whole dashboard.
			s.logger.WarnContext(gctx, "alerts fetch failed", "error", err)
			alerts = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dash := s.assemble(lat, lon, now, bundle, periods, alerts)

	s.mu.Lock()
	s.dashCache[key] = cachedDashboard{dashboard: dash, fetchedAt: now}
	s.mu.Unlock()

	if s.snaps != nil {
		if err := s.snaps.Save(ctx, lat, lon, now, dash); err != nil {
			s.logger.WarnContext(ctx, "snapshot save failed", "error", err)
		}
	}

	return dash, nil
}

// GetDayDetail builds the hourly breakdown for one calendar day of the
// forecast, anchored to midnight in the grid cell's local zone. Days beyond
// gridpoint coverage return an empty hour list, not an error.
func (s *Service) GetDayDetail(ctx context.Context, lat, lon float64, day time.Time) (*DayDetail, error) {
	if err := types.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}

	key := fmt.Sprintf(coordKeyFormat, lat, lon)
	grid, err := s.resolveGrid(ctx, key, lat, lon)
	if err != nil {
		return nil, err
	}

	bundle, err := s.forecast.FetchGridpoint(ctx, grid)
	if err != nil {
		return nil, err
	}

	loc := time.UTC
	if grid.TimeZone != "" {
		if tz, tzErr := time.LoadLocation(grid.TimeZone); tzErr == nil {
			loc = tz
		}
	}

	hours := meteo.BuildDayWindow(bundle, day.In(loc))
	return &DayDetail{
		Date:  day.In(loc).Format("2006-01-02"),
		Hours: hours,
		Spans: meteo.ComputeSpans(hours),
	}, nil
}

// GetHistorical builds the archived view of one past day: the day summary
// plus up to 24 hourly samples with condition spans.
func (s *Service) GetHistorical(ctx context.Context, lat, lon float64, day time.Time) (*HistoricalView, error) {
	if s.archive == nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamHistorical,
			"historical data is not configured", nil)
	}
	if err := types.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}

	bundle, err := s.archive.FetchDay(ctx, lat, lon, day)
	if err != nil {
		return nil, err
	}

	hours := meteo.BuildHistoricalWindow(bundle)
	return &HistoricalView{
		Date:    day.Format("2006-01-02"),
		Summary: meteo.SummarizeHistoricalDay(bundle),
		Hours:   hours,
		Spans:   meteo.ComputeSpans(hours),
	}, nil
}

// resolveGrid returns the cached grid cell for a coordinate key, resolving
// it once on first use.
func (s *Service) resolveGrid(ctx context.Context, key string, lat, lon float64) (upstream.GridRef, error) {
	s.mu.Lock()
	if grid, ok := s.gridCache[key]; ok {
		s.mu.Unlock()
		return grid, nil
	}
	s.mu.Unlock()

	gridPtr, err := s.forecast.ResolvePoint(ctx, lat, lon)
	if err != nil {
		return upstream.GridRef{}, err
	}

	s.mu.Lock()
	s.gridCache[key] = *gridPtr
	s.mu.Unlock()
	return *gridPtr, nil
}

// assemble reduces the fetched payloads into the dashboard view model.
func (s *Service) assemble(lat, lon float64, now time.Time, bundle *meteo.GridpointBundle, periods []meteo.ForecastPeriod, alerts []upstream.Alert) *Dashboard {
	hours := meteo.BuildForwardWindow(bundle, now, meteo.ForwardWindowHours)

	return &Dashboard{
		Location:    types.Location{Lat: lat, Lon: lon},
		GeneratedAt: now,
		Current:     buildCurrent(bundle, now),
		Hourly:      hours,
		HourlySpans: meteo.ComputeSpans(hours),
		Days:        meteo.BuildDaySummaries(periods, bundle),
		Alerts:      alerts,
	}
}

// buildCurrent reads the "right now" values off the bundle using the
// fallback-to-first policy, so a series starting slightly in the future
// still renders.
func buildCurrent(bundle *meteo.GridpointBundle, now time.Time) CurrentConditions {
	cur := CurrentConditions{
		Condition:     meteo.ConditionText(now, bundle),
		Icon:          meteo.HourlyIcon(now, bundle),
		NextHour:      meteo.SummarizeNextHour(bundle, now),
		PrecipNext12h: meteo.Summarize12Hour(bundle, now),
	}
	if bundle == nil {
		return cur
	}

	if v := bundle.Temperature.CurrentValue(now); v != nil {
		t := bundle.Temperature.DisplayTemperature(*v)
		cur.Temperature = &t
	}
	if v := bundle.ApparentTemperature.CurrentValue(now); v != nil {
		t := bundle.ApparentTemperature.DisplayTemperature(*v)
		cur.FeelsLike = &t
	} else {
		cur.FeelsLike = cur.Temperature
	}
	if v := bundle.Dewpoint.CurrentValue(now); v != nil {
		t := bundle.Dewpoint.DisplayTemperature(*v)
		cur.Dewpoint = &t
	}
	if v := bundle.RelativeHumidity.CurrentValue(now); v != nil {
		h := int(math.Round(*v))
		cur.Humidity = &h
	}
	if v := bundle.WindSpeed.CurrentValue(now); v != nil {
		w := bundle.WindSpeed.DisplayWindSpeed(*v)
		cur.WindSpeed = &w
	}
	if v := bundle.WindGust.CurrentValue(now); v != nil {
		w := bundle.WindGust.DisplayWindSpeed(*v)
		cur.WindGust = &w
	}
	if v := bundle.WindDirection.CurrentValue(now); v != nil {
		cur.WindDirection = v
	}
	if v := bundle.SkyCover.CurrentValue(now); v != nil {
		sc := int(math.Round(*v))
		cur.SkyCover = &sc
	}
	if v := bundle.ProbabilityOfPrecipitation.CurrentValue(now); v != nil {
		p := int(math.Round(*v))
		cur.PrecipProbability = &p
	}
	return cur
}
