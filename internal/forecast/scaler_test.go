package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitScalerStats(t *testing.T) {
	features := [][]float64{
		{1, 5},
		{3, 5},
	}

	s := FitScaler(features)
	require.Len(t, s.Mean, 2)

	assert.InDelta(t, 2.0, s.Mean[0], 1e-9)
	assert.InDelta(t, 5.0, s.Mean[1], 1e-9)
	// Constant column falls back to std 1.
	assert.Equal(t, 1.0, s.Std[1])
}

func TestScalerTransformCentersConstantColumn(t *testing.T) {
	s := FitScaler([][]float64{{5}, {5}, {5}})
	out := s.Transform([]float64{5})
	assert.Equal(t, []float64{0}, out)
}

func TestScalerTransformAll(t *testing.T) {
	features := [][]float64{
		{0},
		{10},
	}
	s := FitScaler(features)
	scaled := s.TransformAll(features)

	require.Len(t, scaled, 2)
	assert.InDelta(t, -scaled[1][0], scaled[0][0], 1e-9)
}

func TestFitScalerEmptyMatrix(t *testing.T) {
	s := FitScaler(nil)
	assert.Empty(t, s.Mean)
	assert.Empty(t, s.Std)
}
