package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/demandiq/backend-go/internal/cache"
	"github.com/demandiq/backend-go/internal/domain"
	"github.com/demandiq/backend-go/internal/forecast"
	"github.com/demandiq/backend-go/internal/inventory"
	"github.com/demandiq/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ForecastService runs one request to completion: aggregate the series,
// resolve the strategy, forecast (training once on a missing artifact),
// and project the points into ordering metrics. Processing is
// synchronous and request-scoped; the only shared state is the artifact
// store and the response cache.
type ForecastService struct {
	repo     repository.SalesRepository
	registry *forecast.Registry
	trainer  *forecast.Trainer
	cache    cache.ForecastCache

	// train collapses concurrent train+store runs for the same key so
	// two uncached requests don't both fit a model. The artifact write
	// itself stays last-writer-wins.
	train singleflight.Group
}

// ForecastRequest carries every parameter of one forecast call.
type ForecastRequest struct {
	Key           domain.SeriesKey
	Horizon       int
	Strategy      string
	CurrentStock  float64
	SafetyPercent float64
}

func NewForecastService(repo repository.SalesRepository, registry *forecast.Registry, trainer *forecast.Trainer, cacheImpl cache.ForecastCache) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ForecastService{
		repo:     repo,
		registry: registry,
		trainer:  trainer,
		cache:    cacheImpl,
	}
}

// Options returns the sorted unique location and category ids.
func (s *ForecastService) Options(ctx context.Context) (domain.ForecastOptions, error) {
	return s.repo.Options(ctx)
}

// History returns the last `weeks` aggregated points, chronological.
func (s *ForecastService) History(ctx context.Context, key domain.SeriesKey, weeks int) ([]domain.WeeklyPoint, error) {
	series, err := s.loadSeries(ctx, key)
	if err != nil {
		return nil, err
	}

	if weeks <= 0 {
		weeks = 52
	}
	points := series.Points
	if len(points) > weeks {
		points = points[len(points)-weeks:]
	}
	return points, nil
}

// Summary describes the series for the dashboard.
func (s *ForecastService) Summary(ctx context.Context, key domain.SeriesKey) (*domain.SeriesSummary, error) {
	if cached, ok, err := s.cache.GetSummary(ctx, key); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get summary failed")
	}

	series, err := s.loadSeries(ctx, key)
	if err != nil {
		return nil, err
	}

	summary := forecast.Summarize(series)
	if err := s.cache.SetSummary(ctx, key, &summary); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set summary failed")
	}
	return &summary, nil
}

// Forecast produces horizon ordering lines for the key using the named
// strategy. When the lag-model strategy reports a missing artifact the
// service trains for the key and retries exactly once; every other
// error propagates with its kind intact.
func (s *ForecastService) Forecast(ctx context.Context, req ForecastRequest) ([]domain.ForecastLine, error) {
	if req.Horizon <= 0 {
		return nil, domain.Validationf("forecast horizon must be positive, got %d", req.Horizon)
	}
	if req.SafetyPercent < 0 {
		return nil, domain.Validationf("safety percent must not be negative, got %v", req.SafetyPercent)
	}

	strategy, err := s.registry.Resolve(req.Strategy)
	if err != nil {
		return nil, err
	}

	cacheKey := cache.ForecastCacheKey{
		Series:        req.Key,
		Horizon:       req.Horizon,
		Strategy:      strategy.Name(),
		CurrentStock:  req.CurrentStock,
		SafetyPercent: req.SafetyPercent,
	}
	if cached, ok, err := s.cache.GetForecast(ctx, cacheKey); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get failed")
	}

	series, err := s.loadSeries(ctx, req.Key)
	if err != nil {
		return nil, err
	}

	points, err := strategy.Forecast(ctx, series, req.Horizon)
	if errors.Is(err, domain.ErrArtifactMissing) {
		if trainErr := s.trainOnce(ctx, series); trainErr != nil {
			return nil, trainErr
		}
		points, err = strategy.Forecast(ctx, series, req.Horizon)
	}
	if err != nil {
		return nil, err
	}

	lines := inventory.Project(points, req.SafetyPercent, req.CurrentStock)
	if err := s.cache.SetForecast(ctx, cacheKey, lines); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set failed")
	}
	return lines, nil
}

// Retrain fits and stores a fresh artifact for the key, replacing any
// prior one, and drops cached responses that may reflect the old model.
func (s *ForecastService) Retrain(ctx context.Context, key domain.SeriesKey) (*forecast.Artifact, error) {
	series, err := s.loadSeries(ctx, key)
	if err != nil {
		return nil, err
	}

	artifact, err := s.trainer.Train(ctx, series)
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("forecast: cache invalidate failed")
	}
	return artifact, nil
}

func (s *ForecastService) trainOnce(ctx context.Context, series domain.WeeklySeries) error {
	groupKey := fmt.Sprintf("%d:%d", series.Key.LocationID, series.Key.CategoryID)
	_, err, _ := s.train.Do(groupKey, func() (any, error) {
		log.Info().
			Int("location_id", series.Key.LocationID).
			Int("category_id", series.Key.CategoryID).
			Int("observations", len(series.Points)).
			Msg("no artifact for key, training")
		return s.trainer.Train(ctx, series)
	})
	return err
}

func (s *ForecastService) loadSeries(ctx context.Context, key domain.SeriesKey) (domain.WeeklySeries, error) {
	records, err := s.repo.Records(ctx, key)
	if err != nil {
		return domain.WeeklySeries{}, err
	}
	return forecast.BuildWeeklySeries(records, key)
}
