package forecast

import (
	"context"
	"testing"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonalStrategyName(t *testing.T) {
	assert.Equal(t, StrategySeasonal, NewSeasonalStrategy().Name())
}

func TestSeasonalForecastContinuesLinearTrend(t *testing.T) {
	amounts := make([]float64, 20)
	for i := range amounts {
		amounts[i] = float64(i + 1)
	}
	series := weeklySeries(amounts...)

	points, err := NewSeasonalStrategy().Forecast(context.Background(), series, 4)
	require.NoError(t, err)

	require.Len(t, points, 4)
	for i, p := range points {
		assert.InDelta(t, float64(len(amounts)+i+1), p.Yhat, 1e-6)
	}
}

func TestSeasonalForecastWeeklyCadence(t *testing.T) {
	series := weeklySeries(5, 6, 7, 8)

	points, err := NewSeasonalStrategy().Forecast(context.Background(), series, 3)
	require.NoError(t, err)

	expected := series.LastDate()
	for _, p := range points {
		expected = expected.AddDate(0, 0, 7)
		assert.Equal(t, expected, p.Date)
	}
}

func TestSeasonalForecastSinglePoint(t *testing.T) {
	points, err := NewSeasonalStrategy().Forecast(context.Background(), weeklySeries(42), 2)
	require.NoError(t, err)

	require.Len(t, points, 2)
	for _, p := range points {
		assert.InDelta(t, 42.0, p.Yhat, 1e-9)
	}
}

func TestSeasonalForecastInvalidInput(t *testing.T) {
	s := NewSeasonalStrategy()

	_, err := s.Forecast(context.Background(), weeklySeries(1, 2, 3), 0)
	assert.True(t, domain.IsValidation(err))

	_, err = s.Forecast(context.Background(), domain.WeeklySeries{Key: domain.SeriesKey{LocationID: 1, CategoryID: 1}}, 2)
	assert.True(t, domain.IsNotFound(err))
}
