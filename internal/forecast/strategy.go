// backend-go/internal/forecast/strategy.go
package forecast

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/demandiq/backend-go/internal/domain"
)

// Strategy names resolved by the registry, matched case-insensitively.
const (
	StrategyGBT      = "gbt"
	StrategySeasonal = "seasonal"
)

// Strategy produces a horizon of forecast points from a weekly series.
// Every implementation continues the weekly cadence: point i carries the
// series' last date plus 7*i days.
type Strategy interface {
	Name() string
	Forecast(ctx context.Context, series domain.WeeklySeries, horizon int) ([]domain.ForecastPoint, error)
}

// Registry maps strategy names to implementations. Resolution is
// explicit: an unknown name is a validation failure, never a silent
// fallback to a default strategy.
type Registry struct {
	byName map[string]Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{byName: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		r.byName[strings.ToLower(s.Name())] = s
	}
	return r
}

// Resolve looks up a strategy by name, case-insensitively.
func (r *Registry) Resolve(name string) (Strategy, error) {
	s, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, domain.Validationf("unknown forecast strategy %q (available: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	return s, nil
}

// Names lists the registered strategy names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ArtifactSource loads previously trained artifacts. Absence is reported
// through ok=false, not through an error.
type ArtifactSource interface {
	Load(ctx context.Context, key domain.SeriesKey) (*Artifact, bool, error)
}

// LagModelStrategy is the autoregressive boosted-tree strategy. It never
// trains: when no usable artifact exists it signals ErrArtifactMissing
// and leaves train-then-retry to the orchestrating service.
type LagModelStrategy struct {
	artifacts ArtifactSource
}

func NewLagModelStrategy(artifacts ArtifactSource) *LagModelStrategy {
	return &LagModelStrategy{artifacts: artifacts}
}

func (s *LagModelStrategy) Name() string { return StrategyGBT }

func (s *LagModelStrategy) Forecast(ctx context.Context, series domain.WeeklySeries, horizon int) ([]domain.ForecastPoint, error) {
	artifact, ok, err := s.artifacts.Load(ctx, series.Key)
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("location=%d category=%d: %w",
			series.Key.LocationID, series.Key.CategoryID, domain.ErrArtifactMissing)
	}
	// An artifact fit with a different lookback width cannot feed the
	// current feature builder; treat it as absent so it gets retrained.
	if artifact.LagWidth() != Lookback {
		return nil, fmt.Errorf("artifact lag width %d does not match lookback %d: %w",
			artifact.LagWidth(), Lookback, domain.ErrArtifactMissing)
	}

	forecaster, err := NewAutoregressive(artifact.Model, artifact.Scaler, artifact.Columns)
	if err != nil {
		return nil, err
	}
	return forecaster.Forecast(series, horizon)
}
