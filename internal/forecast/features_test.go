package forecast

import (
	"testing"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsOrder(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, Lookback+3)
	assert.Equal(t, "lag_1", cols[0])
	assert.Equal(t, "lag_8", cols[Lookback-1])
	assert.Equal(t, []string{"week", "month", "year"}, cols[Lookback:])
}

func TestCalendarFeatures(t *testing.T) {
	// 2024-01-01 is a Monday in ISO week 1.
	week, month, year := CalendarFeatures(day("2024-01-01"))
	assert.Equal(t, 1.0, week)
	assert.Equal(t, 1.0, month)
	assert.Equal(t, 2024.0, year)

	// 2023-01-01 is a Sunday that still belongs to ISO week 52 of 2022.
	week, _, year = CalendarFeatures(day("2023-01-01"))
	assert.Equal(t, 52.0, week)
	assert.Equal(t, 2023.0, year)
}

func TestLagVectorPadsWithOldestValue(t *testing.T) {
	lags := LagVector([]float64{10, 20, 30}, 5)
	assert.Equal(t, []float64{30, 20, 10, 10, 10}, lags)
}

func TestLagVectorFullBuffer(t *testing.T) {
	lags := LagVector([]float64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, []float64{5, 4, 3}, lags)
}

func TestLagVectorAlwaysLengthK(t *testing.T) {
	for _, buf := range [][]float64{{1}, {1, 2}, {1, 2, 3, 4, 5, 6, 7, 8, 9}} {
		assert.Len(t, LagVector(buf, Lookback), Lookback)
	}
}

func weeklySeries(amounts ...float64) domain.WeeklySeries {
	series := domain.WeeklySeries{Key: domain.SeriesKey{LocationID: 1, CategoryID: 1}}
	date := day("2024-01-01")
	for _, amount := range amounts {
		series.Points = append(series.Points, domain.WeeklyPoint{Date: date, Amount: amount})
		date = date.AddDate(0, 0, 7)
	}
	return series
}

func TestBuildTrainingMatrixDropsFirstLookbackRows(t *testing.T) {
	series := weeklySeries(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	features, targets, columns, err := BuildTrainingMatrix(series)
	require.NoError(t, err)

	require.Len(t, features, 2)
	assert.Equal(t, []float64{9, 10}, targets)
	assert.Equal(t, Columns(), columns)

	// First row predicts observation index 8 from lags 8..1.
	assert.Equal(t, []float64{8, 7, 6, 5, 4, 3, 2, 1}, features[0][:Lookback])
	assert.Equal(t, []float64{9, 8, 7, 6, 5, 4, 3, 2}, features[1][:Lookback])
}

func TestBuildTrainingMatrixShortSeriesIsValidation(t *testing.T) {
	for _, n := range []int{1, Lookback - 1, Lookback} {
		amounts := make([]float64, n)
		_, _, _, err := BuildTrainingMatrix(weeklySeries(amounts...))
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	}
}
