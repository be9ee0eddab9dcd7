package forecast

import (
	"testing"
	"time"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildWeeklySeriesFiltersAndSorts(t *testing.T) {
	key := domain.SeriesKey{LocationID: 1, CategoryID: 3}
	records := []domain.SalesRecord{
		{LocationID: 1, CategoryID: 3, Date: day("2024-01-15"), Amount: 20},
		{LocationID: 1, CategoryID: 3, Date: day("2024-01-08"), Amount: 10},
		{LocationID: 1, CategoryID: 3, Date: day("2024-01-01"), Amount: 5},
		{LocationID: 2, CategoryID: 3, Date: day("2024-01-01"), Amount: 999},
		{LocationID: 1, CategoryID: 9, Date: day("2024-01-01"), Amount: 999},
	}

	series, err := BuildWeeklySeries(records, key)
	require.NoError(t, err)

	require.Len(t, series.Points, 3)
	assert.Equal(t, key, series.Key)
	assert.Equal(t, []float64{5, 10, 20}, series.Amounts())
	assert.True(t, series.Points[0].Date.Before(series.Points[1].Date))
	assert.True(t, series.Points[1].Date.Before(series.Points[2].Date))
}

func TestBuildWeeklySeriesSumsDuplicateDates(t *testing.T) {
	key := domain.SeriesKey{LocationID: 1, CategoryID: 1}
	records := []domain.SalesRecord{
		{LocationID: 1, CategoryID: 1, Date: day("2024-01-01"), Amount: 7},
		{LocationID: 1, CategoryID: 1, Date: day("2024-01-01"), Amount: 3},
	}

	series, err := BuildWeeklySeries(records, key)
	require.NoError(t, err)

	require.Len(t, series.Points, 1)
	assert.Equal(t, 10.0, series.Points[0].Amount)
}

func TestBuildWeeklySeriesNoRecordsIsNotFound(t *testing.T) {
	key := domain.SeriesKey{LocationID: 42, CategoryID: 42}

	_, err := BuildWeeklySeries(nil, key)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	_, err = BuildWeeklySeries([]domain.SalesRecord{
		{LocationID: 1, CategoryID: 1, Date: day("2024-01-01"), Amount: 1},
	}, key)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestSummarize(t *testing.T) {
	series := domain.WeeklySeries{
		Key: domain.SeriesKey{LocationID: 1, CategoryID: 1},
		Points: []domain.WeeklyPoint{
			{Date: day("2024-01-01"), Amount: 10},
			{Date: day("2024-01-08"), Amount: 20},
			{Date: day("2024-01-15"), Amount: 30},
		},
	}

	summary := Summarize(series)
	assert.Equal(t, "2024-01-01", summary.MinDate)
	assert.Equal(t, "2024-01-15", summary.MaxDate)
	assert.Equal(t, 3, summary.TotalWeeks)
	assert.Equal(t, 60.0, summary.TotalAmount)
	assert.Equal(t, 20.0, summary.AvgWeeklyAmount)
}
