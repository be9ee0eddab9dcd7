package artifact

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/demandiq/backend-go/internal/forecast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact(base float64) *forecast.Artifact {
	cols := forecast.Columns()
	scaler := &forecast.Scaler{Mean: make([]float64, len(cols)), Std: make([]float64, len(cols))}
	for i := range scaler.Std {
		scaler.Std[i] = 1
	}
	return &forecast.Artifact{
		Key:       domain.SeriesKey{LocationID: 3, CategoryID: 7},
		Columns:   cols,
		Scaler:    scaler,
		Model:     &forecast.GBTModel{Base: base, LearningRate: 0.05},
		TrainedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFSStoreRoundtrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	original := testArtifact(42.5)
	require.NoError(t, store.Store(ctx, original))

	loaded, ok, err := store.Load(ctx, original.Key)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, original.Key, loaded.Key)
	assert.Equal(t, original.Columns, loaded.Columns)
	assert.Equal(t, original.Scaler, loaded.Scaler)
	assert.Equal(t, original.TrainedAt, loaded.TrainedAt)
	assert.Equal(t, original.Model.Predict(make([]float64, len(original.Columns))),
		loaded.Model.Predict(make([]float64, len(original.Columns))))
}

func TestFSStoreLoadAbsentIsNotAnError(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	artifact, ok, err := store.Load(context.Background(), domain.SeriesKey{LocationID: 9, CategoryID: 9})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, artifact)
}

func TestFSStoreStoreReplacesPriorArtifact(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := testArtifact(1)
	second := testArtifact(2)
	second.TrainedAt = first.TrainedAt.Add(time.Hour)

	require.NoError(t, store.Store(ctx, first))
	require.NoError(t, store.Store(ctx, second))

	loaded, ok, err := store.Load(ctx, first.Key)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 2.0, loaded.Model.Base)
	assert.Equal(t, second.TrainedAt, loaded.TrainedAt)
}

func TestFSStoreDelete(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	artifact := testArtifact(1)
	require.NoError(t, store.Store(ctx, artifact))
	require.NoError(t, store.Delete(ctx, artifact.Key))

	_, ok, err := store.Load(ctx, artifact.Key)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key stays quiet.
	assert.NoError(t, store.Delete(ctx, domain.SeriesKey{LocationID: 99, CategoryID: 99}))
}

func TestFSStoreFileNamingByKey(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(dir)
	require.NoError(t, err)

	artifact := testArtifact(1)
	require.NoError(t, store.Store(context.Background(), artifact))

	assert.FileExists(t, filepath.Join(dir, "gbt_3_7.json"))
	assert.FileExists(t, filepath.Join(dir, "gbt_meta_3_7.json"))
}
