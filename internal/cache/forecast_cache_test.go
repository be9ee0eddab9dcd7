package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopForecastCache(t *testing.T) {
	c := NewNoopForecastCache()
	ctx := context.Background()
	key := ForecastCacheKey{Series: domain.SeriesKey{LocationID: 1, CategoryID: 1}, Horizon: 4, Strategy: "gbt"}

	lines, ok, err := c.GetForecast(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, lines)

	require.NoError(t, c.SetForecast(ctx, key, []domain.ForecastLine{{Date: "2026-01-05"}}))

	// Still a miss: the noop cache never stores anything.
	_, ok, err = c.GetForecast(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestBuildForecastKeyDistinguishesParameters(t *testing.T) {
	base := ForecastCacheKey{
		Series:        domain.SeriesKey{LocationID: 1, CategoryID: 2},
		Horizon:       12,
		Strategy:      "gbt",
		CurrentStock:  0,
		SafetyPercent: 0.1,
	}

	assert.Equal(t, buildForecastKey(base), buildForecastKey(base))

	variants := []ForecastCacheKey{base, base, base, base, base}
	variants[0].Series.LocationID = 9
	variants[1].Horizon = 13
	variants[2].Strategy = "seasonal"
	variants[3].CurrentStock = 5
	variants[4].SafetyPercent = 0.2
	for _, v := range variants {
		assert.NotEqual(t, buildForecastKey(base), buildForecastKey(v))
	}
}

func TestBuildForecastKeyPrefix(t *testing.T) {
	key := buildForecastKey(ForecastCacheKey{})
	assert.True(t, strings.HasPrefix(key, forecastKeyPrefix+":"))
}

func TestBuildSummaryKey(t *testing.T) {
	key := buildSummaryKey(domain.SeriesKey{LocationID: 3, CategoryID: 7})
	assert.Equal(t, "forecast:summary:3:7", key)
}
