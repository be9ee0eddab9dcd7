// backend-go/internal/domain/models.go
package domain

import "time"

// SalesRecord is a single row of the raw sales table.
type SalesRecord struct {
	LocationID int       `json:"location_id" db:"location_id"`
	CategoryID int       `json:"category_id" db:"category_id"`
	Date       time.Time `json:"date" db:"date"`
	Amount     float64   `json:"amount" db:"amount"`
}

// SeriesKey identifies one weekly series: a location plus a product category.
type SeriesKey struct {
	LocationID int `json:"location_id"`
	CategoryID int `json:"category_id"`
}

// WeeklyPoint is one aggregated observation of a weekly series.
type WeeklyPoint struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// WeeklySeries is the canonical per-key series: strictly increasing dates,
// one point per distinct date. Built fresh per request, never persisted.
type WeeklySeries struct {
	Key    SeriesKey     `json:"key"`
	Points []WeeklyPoint `json:"points"`
}

// Amounts returns the observation values in chronological order.
func (s WeeklySeries) Amounts() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Amount
	}
	return values
}

// LastDate returns the date of the series' final observation.
func (s WeeklySeries) LastDate() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Date
}

// SeriesSummary describes a weekly series for the dashboard.
type SeriesSummary struct {
	MinDate         string  `json:"min_date"`
	MaxDate         string  `json:"max_date"`
	TotalWeeks      int     `json:"total_weeks"`
	TotalAmount     float64 `json:"total_amount"`
	AvgWeeklyAmount float64 `json:"avg_weekly_amount"`
}

// ForecastPoint is one predicted observation.
type ForecastPoint struct {
	Date time.Time `json:"date"`
	Yhat float64   `json:"yhat"`
}

// ForecastLine is a forecast point projected into ordering metrics.
type ForecastLine struct {
	Date          string  `json:"date"`
	Yhat          float64 `json:"yhat"`
	SafetyStock   float64 `json:"safety_stock"`
	RequiredStock float64 `json:"required_stock"`
	OrderQty      float64 `json:"order_qty"`
}

// ForecastOptions are the selectable dataset dimensions.
type ForecastOptions struct {
	Locations  []int `json:"locations"`
	Categories []int `json:"categories"`
}
