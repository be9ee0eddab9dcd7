// backend-go/internal/forecast/autoregressive.go
package forecast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/demandiq/backend-go/internal/domain"
)

// Predictor scores one standardized feature vector. GBTModel satisfies
// it; tests substitute deterministic stubs.
type Predictor interface {
	Predict(row []float64) float64
}

// Autoregressive drives a trained model forward one week at a time.
// Each step's prediction is appended to the rolling buffer and becomes a
// lag input for later steps, so long horizons compound their own error.
// That feedback is the intended behavior, not a defect.
type Autoregressive struct {
	model   Predictor
	scaler  *Scaler
	columns []string
	width   int
}

// NewAutoregressive builds a forecaster around an artifact's model,
// scaler, and recorded column order. The column list must consist of
// lag_N entries plus the calendar fields; anything else means the
// artifact was produced by an incompatible feature builder.
func NewAutoregressive(model Predictor, scaler *Scaler, columns []string) (*Autoregressive, error) {
	width := 0
	for _, col := range columns {
		switch col {
		case "week", "month", "year":
		default:
			lag, err := parseLagColumn(col)
			if err != nil {
				return nil, err
			}
			if lag > width {
				width = lag
			}
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("artifact columns carry no lag features: %v", columns)
	}

	return &Autoregressive{model: model, scaler: scaler, columns: columns, width: width}, nil
}

// LagWidth returns the lookback width recorded in the artifact columns.
func (a *Autoregressive) LagWidth() int { return a.width }

// Forecast emits exactly horizon points with dates advancing seven days
// per step from the series' final observation.
func (a *Autoregressive) Forecast(series domain.WeeklySeries, horizon int) ([]domain.ForecastPoint, error) {
	if horizon <= 0 {
		return nil, domain.Validationf("forecast horizon must be positive, got %d", horizon)
	}
	if len(series.Points) == 0 {
		return nil, &domain.NotFoundError{Key: series.Key}
	}

	buf := series.Amounts()
	lastDate := series.LastDate()

	points := make([]domain.ForecastPoint, 0, horizon)
	for step := 0; step < horizon; step++ {
		lastDate = lastDate.AddDate(0, 0, 7)

		lags := LagVector(buf, a.width)
		week, month, year := CalendarFeatures(lastDate)

		row := make([]float64, len(a.columns))
		for i, col := range a.columns {
			switch col {
			case "week":
				row[i] = week
			case "month":
				row[i] = month
			case "year":
				row[i] = year
			default:
				lag, _ := parseLagColumn(col)
				row[i] = lags[lag-1]
			}
		}

		yhat := a.model.Predict(a.scaler.Transform(row))

		buf = append(buf, yhat)
		points = append(points, domain.ForecastPoint{Date: lastDate, Yhat: yhat})
	}

	return points, nil
}

func parseLagColumn(col string) (int, error) {
	rest, ok := strings.CutPrefix(col, "lag_")
	if !ok {
		return 0, fmt.Errorf("unrecognized feature column %q", col)
	}
	lag, err := strconv.Atoi(rest)
	if err != nil || lag < 1 {
		return 0, fmt.Errorf("unrecognized feature column %q", col)
	}
	return lag, nil
}
