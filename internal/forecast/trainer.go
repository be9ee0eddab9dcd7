// backend-go/internal/forecast/trainer.go
package forecast

import (
	"context"
	"time"

	"github.com/demandiq/backend-go/internal/domain"
)

// Artifact is the persisted training result for one series key: the
// boosted model, the scaler statistics fit on that training run, and the
// exact feature column order the model was fit against. It is reused
// as-is until the key is retrained; there is no TTL or staleness check.
type Artifact struct {
	Key       domain.SeriesKey `json:"key"`
	Columns   []string         `json:"columns"`
	Scaler    *Scaler          `json:"scaler"`
	Model     *GBTModel        `json:"model"`
	TrainedAt time.Time        `json:"trained_at"`
}

// LagWidth returns the lookback width recorded in the artifact's column
// list. A width different from Lookback marks the artifact stale.
func (a *Artifact) LagWidth() int {
	width := 0
	for _, col := range a.Columns {
		if lag, err := parseLagColumn(col); err == nil && lag > width {
			width = lag
		}
	}
	return width
}

// ArtifactSink persists trained artifacts. A write fully replaces any
// prior artifact for the same key.
type ArtifactSink interface {
	Store(ctx context.Context, artifact *Artifact) error
}

// Trainer fits the scaler and boosted model from a weekly series and
// persists the bundle. The scaler is fit only on this call's matrix;
// nothing is updated incrementally.
type Trainer struct {
	sink   ArtifactSink
	params GBTParams
}

func NewTrainer(sink ArtifactSink, params GBTParams) *Trainer {
	return &Trainer{sink: sink, params: params}
}

// Train builds the feature matrix, fits scaler and model, and stores the
// resulting artifact. Series too short to form a single feature row fail
// with a validation error.
func (t *Trainer) Train(ctx context.Context, series domain.WeeklySeries) (*Artifact, error) {
	features, targets, columns, err := BuildTrainingMatrix(series)
	if err != nil {
		return nil, err
	}

	scaler := FitScaler(features)
	model := TrainGBT(scaler.TransformAll(features), targets, t.params)

	artifact := &Artifact{
		Key:       series.Key,
		Columns:   columns,
		Scaler:    scaler,
		Model:     model,
		TrainedAt: time.Now().UTC(),
	}

	if err := t.sink.Store(ctx, artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}
