// backend-go/internal/forecast/features.go
package forecast

import (
	"fmt"
	"time"

	"github.com/demandiq/backend-go/internal/domain"
)

// Lookback is the fixed lag window width K shared by training and
// inference. An artifact recorded with a different width is stale and
// must be retrained.
const Lookback = 8

// Columns returns the canonical feature column order:
// lag_1..lag_K (most recent first), then the calendar fields.
// This exact order is recorded in every artifact and reproduced at
// inference time.
func Columns() []string {
	cols := make([]string, 0, Lookback+3)
	for i := 1; i <= Lookback; i++ {
		cols = append(cols, fmt.Sprintf("lag_%d", i))
	}
	return append(cols, "week", "month", "year")
}

// CalendarFeatures derives the ISO week number, month, and calendar year
// from a date.
func CalendarFeatures(date time.Time) (week, month, year float64) {
	_, isoWeek := date.ISOWeek()
	return float64(isoWeek), float64(date.Month()), float64(date.Year())
}

// LagVector returns the last k values of buf ordered most-recent-first.
// A buffer shorter than k is left-padded by repeating its oldest value,
// so the vector length is always k. The same rule applies whether the
// shortfall comes from training or inference.
func LagVector(buf []float64, k int) []float64 {
	lags := make([]float64, k)
	for i := 0; i < k; i++ {
		idx := len(buf) - 1 - i
		if idx < 0 {
			idx = 0
		}
		lags[i] = buf[idx]
	}
	return lags
}

// BuildTrainingMatrix turns a weekly series into a supervised feature
// matrix and target vector. Rows without a full Lookback history (the
// first K observations) are dropped; no padding happens during training.
func BuildTrainingMatrix(series domain.WeeklySeries) (features [][]float64, targets []float64, columns []string, err error) {
	columns = Columns()

	values := series.Amounts()
	for i := Lookback; i < len(values); i++ {
		row := make([]float64, 0, len(columns))
		for lag := 1; lag <= Lookback; lag++ {
			row = append(row, values[i-lag])
		}
		week, month, year := CalendarFeatures(series.Points[i].Date)
		row = append(row, week, month, year)

		features = append(features, row)
		targets = append(targets, values[i])
	}

	if len(features) == 0 {
		return nil, nil, nil, domain.Validationf(
			"series for location=%d category=%d has %d observations, need more than %d to train",
			series.Key.LocationID, series.Key.CategoryID, len(values), Lookback)
	}

	return features, targets, columns, nil
}
