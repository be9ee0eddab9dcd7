// backend-go/internal/pipeline/retrain.go
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/demandiq/backend-go/internal/forecast"
	"github.com/demandiq/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// RetrainResult summarizes one batch retrain run.
type RetrainResult struct {
	Trained  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Retrainer refits artifacts for every (location, category) pair in the
// dataset using a bounded worker pool. Series too short to train are
// skipped, not fatal: a sparse pair should not abort the batch.
type Retrainer struct {
	repo    repository.SalesRepository
	trainer *forecast.Trainer
	workers int
}

func NewRetrainer(repo repository.SalesRepository, trainer *forecast.Trainer, workers int) *Retrainer {
	if workers < 1 {
		workers = 1
	}
	return &Retrainer{repo: repo, trainer: trainer, workers: workers}
}

// RetrainAll trains every key concurrently and reports counts. The
// context cancels the run between jobs.
func (r *Retrainer) RetrainAll(ctx context.Context) (RetrainResult, error) {
	start := time.Now()

	keys, err := r.repo.Keys(ctx)
	if err != nil {
		return RetrainResult{}, err
	}

	log.Info().Int("keys", len(keys)).Int("workers", r.workers).Msg("starting batch retrain")

	jobChan := make(chan domain.SeriesKey, len(keys))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result RetrainResult
	)

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for key := range jobChan {
				trained, skipped := r.retrainKey(ctx, workerID, key)
				mu.Lock()
				switch {
				case trained:
					result.Trained++
				case skipped:
					result.Skipped++
				default:
					result.Failed++
				}
				mu.Unlock()
			}
		}(i)
	}

	for _, key := range keys {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return result, ctx.Err()
		case jobChan <- key:
		}
	}
	close(jobChan)
	wg.Wait()

	result.Duration = time.Since(start)
	log.Info().
		Int("trained", result.Trained).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("batch retrain completed")

	return result, nil
}

func (r *Retrainer) retrainKey(ctx context.Context, workerID int, key domain.SeriesKey) (trained, skipped bool) {
	records, err := r.repo.Records(ctx, key)
	if err != nil {
		log.Error().Err(err).Int("worker", workerID).
			Int("location_id", key.LocationID).Int("category_id", key.CategoryID).
			Msg("retrain: failed to read records")
		return false, false
	}

	series, err := forecast.BuildWeeklySeries(records, key)
	if err != nil {
		log.Warn().Err(err).
			Int("location_id", key.LocationID).Int("category_id", key.CategoryID).
			Msg("retrain: no series for key, skipping")
		return false, true
	}

	if _, err := r.trainer.Train(ctx, series); err != nil {
		if domain.IsValidation(err) {
			log.Warn().Err(err).
				Int("location_id", key.LocationID).Int("category_id", key.CategoryID).
				Msg("retrain: series too short, skipping")
			return false, true
		}
		log.Error().Err(err).Int("worker", workerID).
			Int("location_id", key.LocationID).Int("category_id", key.CategoryID).
			Msg("retrain: training failed")
		return false, false
	}

	return true, false
}
