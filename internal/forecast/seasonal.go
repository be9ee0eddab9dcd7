// backend-go/internal/forecast/seasonal.go
package forecast

import (
	"context"

	"github.com/demandiq/backend-go/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// SeasonalStrategy is the decomposition-based alternative to the lag
// model: a least-squares linear trend over the observation index plus
// week-of-year seasonal offsets learned from the trend residuals. It is
// stateless per request and fits on the series it is asked to forecast,
// so it needs no artifact store.
type SeasonalStrategy struct{}

func NewSeasonalStrategy() *SeasonalStrategy { return &SeasonalStrategy{} }

func (s *SeasonalStrategy) Name() string { return StrategySeasonal }

func (s *SeasonalStrategy) Forecast(ctx context.Context, series domain.WeeklySeries, horizon int) ([]domain.ForecastPoint, error) {
	if horizon <= 0 {
		return nil, domain.Validationf("forecast horizon must be positive, got %d", horizon)
	}
	if len(series.Points) == 0 {
		return nil, &domain.NotFoundError{Key: series.Key}
	}

	values := series.Amounts()
	n := len(values)

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	alpha, beta := 0.0, 0.0
	if n > 1 {
		alpha, beta = stat.LinearRegression(xs, values, nil, false)
	} else {
		alpha = values[0]
	}

	// Seasonal component: mean trend residual per ISO week.
	residualSum := make(map[int]float64)
	residualCount := make(map[int]int)
	for i, p := range series.Points {
		_, week := p.Date.ISOWeek()
		residualSum[week] += values[i] - (alpha + beta*float64(i))
		residualCount[week]++
	}

	lastDate := series.LastDate()
	points := make([]domain.ForecastPoint, 0, horizon)
	for step := 1; step <= horizon; step++ {
		date := lastDate.AddDate(0, 0, 7*step)

		yhat := alpha + beta*float64(n-1+step)
		_, week := date.ISOWeek()
		if count := residualCount[week]; count > 0 {
			yhat += residualSum[week] / float64(count)
		}

		points = append(points, domain.ForecastPoint{Date: date, Yhat: yhat})
	}

	return points, nil
}
