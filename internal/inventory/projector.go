// backend-go/internal/inventory/projector.go
package inventory

import "github.com/demandiq/backend-go/internal/domain"

// SafetyStock is the buffer held on top of expected demand.
func SafetyStock(yhat, safetyPercent float64) float64 {
	return yhat * safetyPercent
}

// RequiredStock is expected demand plus the safety buffer.
func RequiredStock(yhat, safetyPercent float64) float64 {
	return yhat + SafetyStock(yhat, safetyPercent)
}

// OrderQty is required stock minus what is already on hand. Negative
// values mean surplus and are valid output, not an error.
func OrderQty(yhat, safetyPercent, currentStock float64) float64 {
	return RequiredStock(yhat, safetyPercent) - currentStock
}

// Project maps forecast points to per-week ordering lines. Pure: the
// same points and parameters always yield the same lines.
func Project(points []domain.ForecastPoint, safetyPercent, currentStock float64) []domain.ForecastLine {
	lines := make([]domain.ForecastLine, len(points))
	for i, p := range points {
		lines[i] = domain.ForecastLine{
			Date:          p.Date.Format("2006-01-02"),
			Yhat:          p.Yhat,
			SafetyStock:   SafetyStock(p.Yhat, safetyPercent),
			RequiredStock: RequiredStock(p.Yhat, safetyPercent),
			OrderQty:      OrderQty(p.Yhat, safetyPercent, currentStock),
		}
	}
	return lines
}
