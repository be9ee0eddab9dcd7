package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/demandiq/backend-go/internal/artifact"
	"github.com/demandiq/backend-go/internal/cache"
	"github.com/demandiq/backend-go/internal/domain"
	"github.com/demandiq/backend-go/internal/forecast"
	"github.com/demandiq/backend-go/internal/repository"
	"github.com/demandiq/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := artifact.NewFSStore(t.TempDir())
	require.NoError(t, err)

	var records []domain.SalesRecord
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		records = append(records, domain.SalesRecord{
			LocationID: 1, CategoryID: 1, Date: date, Amount: 10,
		})
		date = date.AddDate(0, 0, 7)
	}

	params := forecast.GBTParams{
		Trees:        25,
		MaxDepth:     3,
		LearningRate: 0.1,
		Subsample:    0.8,
		ColSample:    0.8,
		Seed:         42,
	}
	trainer := forecast.NewTrainer(store, params)
	registry := forecast.NewRegistry(
		forecast.NewLagModelStrategy(store),
		forecast.NewSeasonalStrategy(),
	)
	svc := service.NewForecastService(
		repository.NewDatasetFromRecords(records), registry, trainer, cache.NewNoopForecastCache())

	return NewRouter(svc, nil)
}

func doRequest(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetOptions(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/api/v1/forecast/options")
	require.Equal(t, http.StatusOK, w.Code)

	var options domain.ForecastOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))
	assert.Equal(t, []int{1}, options.Locations)
	assert.Equal(t, []int{1}, options.Categories)
}

func TestGetForecast(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet,
		"/api/v1/forecast?location_id=1&category_id=1&horizon=4&strategy=gbt&current_stock=5&safety_percent=0.1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Horizon  int                   `json:"horizon"`
		Forecast []domain.ForecastLine `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Horizon)
	require.Len(t, body.Forecast, 4)
	for _, line := range body.Forecast {
		assert.InDelta(t, 10.0, line.Yhat, 1e-6)
	}
}

func TestGetForecastDefaults(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/api/v1/forecast?location_id=1&category_id=1&strategy=seasonal")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Strategy string                `json:"strategy"`
		Forecast []domain.ForecastLine `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "seasonal", body.Strategy)
	assert.Len(t, body.Forecast, 12)
}

func TestGetForecastValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	for name, target := range map[string]string{
		"missing location":  "/api/v1/forecast?category_id=1",
		"bad location":      "/api/v1/forecast?location_id=abc&category_id=1",
		"bad horizon":       "/api/v1/forecast?location_id=1&category_id=1&horizon=abc",
		"bad stock":         "/api/v1/forecast?location_id=1&category_id=1&current_stock=abc",
		"unknown strategy":  "/api/v1/forecast?location_id=1&category_id=1&strategy=arima",
		"zero horizon":      "/api/v1/forecast?location_id=1&category_id=1&horizon=0",
		"negative safety":   "/api/v1/forecast?location_id=1&category_id=1&safety_percent=-1",
		"bad history weeks": "/api/v1/forecast/history?location_id=1&category_id=1&weeks=abc",
	} {
		t.Run(name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetForecastUnknownSeriesIs404(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/api/v1/forecast?location_id=9&category_id=9&strategy=seasonal")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistory(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/api/v1/forecast/history?location_id=1&category_id=1&weeks=5")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Points []domain.WeeklyPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Points, 5)
}

func TestGetSummary(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/api/v1/forecast/summary?location_id=1&category_id=1")
	require.Equal(t, http.StatusOK, w.Code)

	var summary domain.SeriesSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 12, summary.TotalWeeks)
	assert.Equal(t, 120.0, summary.TotalAmount)
}

func TestRetrainEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodPost, "/api/v1/forecast/retrain?location_id=1&category_id=1")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/forecast/retrain?location_id=9&category_id=9")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
