// backend-go/internal/forecast/series.go
package forecast

import (
	"sort"
	"time"

	"github.com/demandiq/backend-go/internal/domain"
)

// BuildWeeklySeries filters records to the given key, sums amounts that
// share the same date, and returns the points sorted ascending by date.
// Dates are matched exactly, not bucketed into calendar weeks: the raw
// table is assumed to carry weekly-aligned dates already.
func BuildWeeklySeries(records []domain.SalesRecord, key domain.SeriesKey) (domain.WeeklySeries, error) {
	totals := make(map[time.Time]float64)
	for _, r := range records {
		if r.LocationID != key.LocationID || r.CategoryID != key.CategoryID {
			continue
		}
		d := r.Date.UTC().Truncate(24 * time.Hour)
		totals[d] += r.Amount
	}

	if len(totals) == 0 {
		return domain.WeeklySeries{}, &domain.NotFoundError{Key: key}
	}

	points := make([]domain.WeeklyPoint, 0, len(totals))
	for d, amount := range totals {
		points = append(points, domain.WeeklyPoint{Date: d, Amount: amount})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return domain.WeeklySeries{Key: key, Points: points}, nil
}

// Summarize reduces a weekly series to its dashboard summary.
func Summarize(series domain.WeeklySeries) domain.SeriesSummary {
	total := 0.0
	for _, p := range series.Points {
		total += p.Amount
	}

	n := len(series.Points)
	summary := domain.SeriesSummary{
		TotalWeeks:  n,
		TotalAmount: total,
	}
	if n > 0 {
		summary.MinDate = series.Points[0].Date.Format("2006-01-02")
		summary.MaxDate = series.Points[n-1].Date.Format("2006-01-02")
		summary.AvgWeeklyAmount = total / float64(n)
	}
	return summary
}
