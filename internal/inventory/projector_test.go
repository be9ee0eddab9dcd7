package inventory

import (
	"testing"
	"time"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderingMetrics(t *testing.T) {
	assert.Equal(t, 20.0, SafetyStock(100, 0.2))
	assert.Equal(t, 120.0, RequiredStock(100, 0.2))
	assert.Equal(t, 70.0, OrderQty(100, 0.2, 50))
}

func TestOrderQtyNegativeMeansSurplus(t *testing.T) {
	assert.Equal(t, -80.0, OrderQty(100, 0.2, 200))
}

func TestZeroSafetyPercent(t *testing.T) {
	assert.Equal(t, 0.0, SafetyStock(100, 0))
	assert.Equal(t, 100.0, RequiredStock(100, 0))
}

func TestProject(t *testing.T) {
	points := []domain.ForecastPoint{
		{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Yhat: 100},
		{Date: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), Yhat: 200},
	}

	lines := Project(points, 0.2, 50)
	require.Len(t, lines, 2)

	assert.Equal(t, domain.ForecastLine{
		Date:          "2026-01-05",
		Yhat:          100,
		SafetyStock:   20,
		RequiredStock: 120,
		OrderQty:      70,
	}, lines[0])

	assert.Equal(t, "2026-01-12", lines[1].Date)
	assert.Equal(t, 40.0, lines[1].SafetyStock)
	assert.Equal(t, 240.0, lines[1].RequiredStock)
	assert.Equal(t, 190.0, lines[1].OrderQty)
}

func TestProjectEmptyPoints(t *testing.T) {
	assert.Empty(t, Project(nil, 0.1, 0))
}
