// backend-go/internal/api/handlers/forecast_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/demandiq/backend-go/internal/forecast"
	"github.com/demandiq/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultHistoryWeeks  = 52
	defaultHorizon       = 12
	defaultSafetyPercent = 0.1
)

// ForecastHandler exposes the forecast service over HTTP.
type ForecastHandler struct {
	svc *service.ForecastService
}

func NewForecastHandler(svc *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{svc: svc}
}

// GetOptions handles GET /api/v1/forecast/options
func (h *ForecastHandler) GetOptions(c *gin.Context) {
	options, err := h.svc.Options(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

// GetHistory handles GET /api/v1/forecast/history
func (h *ForecastHandler) GetHistory(c *gin.Context) {
	key, err := parseSeriesKey(c)
	if err != nil {
		respondError(c, err)
		return
	}
	weeks, err := parseIntQuery(c, "weeks", defaultHistoryWeeks)
	if err != nil {
		respondError(c, err)
		return
	}

	points, err := h.svc.History(c.Request.Context(), key, weeks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"location_id": key.LocationID,
		"category_id": key.CategoryID,
		"points":      points,
	})
}

// GetSummary handles GET /api/v1/forecast/summary
func (h *ForecastHandler) GetSummary(c *gin.Context) {
	key, err := parseSeriesKey(c)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetForecast handles GET /api/v1/forecast
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	req, err := parseForecastRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}

	lines, err := h.svc.Forecast(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"location_id": req.Key.LocationID,
		"category_id": req.Key.CategoryID,
		"strategy":    req.Strategy,
		"horizon":     req.Horizon,
		"forecast":    lines,
	})
}

// Retrain handles POST /api/v1/forecast/retrain
func (h *ForecastHandler) Retrain(c *gin.Context) {
	key, err := parseSeriesKey(c)
	if err != nil {
		respondError(c, err)
		return
	}

	artifact, err := h.svc.Retrain(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"location_id": key.LocationID,
		"category_id": key.CategoryID,
		"trained_at":  artifact.TrainedAt,
	})
}

func parseForecastRequest(c *gin.Context) (service.ForecastRequest, error) {
	key, err := parseSeriesKey(c)
	if err != nil {
		return service.ForecastRequest{}, err
	}
	horizon, err := parseIntQuery(c, "horizon", defaultHorizon)
	if err != nil {
		return service.ForecastRequest{}, err
	}
	stock, err := parseFloatQuery(c, "current_stock", 0)
	if err != nil {
		return service.ForecastRequest{}, err
	}
	safety, err := parseFloatQuery(c, "safety_percent", defaultSafetyPercent)
	if err != nil {
		return service.ForecastRequest{}, err
	}

	strategy := c.DefaultQuery("strategy", forecast.StrategyGBT)

	return service.ForecastRequest{
		Key:           key,
		Horizon:       horizon,
		Strategy:      strategy,
		CurrentStock:  stock,
		SafetyPercent: safety,
	}, nil
}

func parseSeriesKey(c *gin.Context) (domain.SeriesKey, error) {
	locationID, err := parseRequiredInt(c, "location_id")
	if err != nil {
		return domain.SeriesKey{}, err
	}
	categoryID, err := parseRequiredInt(c, "category_id")
	if err != nil {
		return domain.SeriesKey{}, err
	}
	return domain.SeriesKey{LocationID: locationID, CategoryID: categoryID}, nil
}

func parseRequiredInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, domain.Validationf("%s is required", name)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validationf("%s must be an integer, got %q", name, raw)
	}
	return value, nil
}

func parseIntQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validationf("%s must be an integer, got %q", name, raw)
	}
	return value, nil
}

func parseFloatQuery(c *gin.Context, name string, fallback float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.Validationf("%s must be a number, got %q", name, raw)
	}
	return value, nil
}

func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
