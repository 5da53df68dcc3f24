package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

type forecastRequest struct {
	MedicineID  int64  `json:"medicine_id" binding:"required"`
	Granularity string `json:"granularity"`
	Horizon     int    `json:"horizon"`
}

type bulkForecastRequest struct {
	MedicineIDs []int64 `json:"medicine_ids" binding:"required"`
	Granularity string  `json:"granularity"`
	Horizon     int     `json:"horizon"`
}

func parseGranularityParam(raw string) (domain.Granularity, error) {
	if raw == "" {
		return "", nil
	}
	return domain.ParseGranularity(raw)
}

// CreateForecast fits and stores a forecast run for one medicine.
func (h *ForecastHandler) CreateForecast(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	granularity, err := parseGranularityParam(req.Granularity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.service.Forecast(c.Request.Context(), service.ForecastRequest{
		MedicineID:  req.MedicineID,
		Granularity: granularity,
		Horizon:     req.Horizon,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"forecast":      run,
		"model_quality": run.Metrics.Quality(),
	})
}

// GetForecast returns a stored run by id.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid forecast id"})
		return
	}

	run, err := h.service.GetForecast(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "forecast not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"forecast":      run,
		"model_quality": run.Metrics.Quality(),
	})
}

// LatestForecast returns the newest run for a medicine.
func (h *ForecastHandler) LatestForecast(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid medicine id"})
		return
	}

	run, err := h.service.LatestForecast(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no forecast for medicine"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"forecast":      run,
		"model_quality": run.Metrics.Quality(),
	})
}

// BulkForecast fits forecasts for many medicines; always 200 with per-item
// outcomes so a single short series cannot fail the whole request.
func (h *ForecastHandler) BulkForecast(c *gin.Context) {
	var req bulkForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.MedicineIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "medicine_ids must not be empty"})
		return
	}

	granularity, err := parseGranularityParam(req.Granularity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome := h.service.BulkForecast(c.Request.Context(), req.MedicineIDs, granularity, req.Horizon)
	c.JSON(http.StatusOK, outcome)
}

// ChartData returns the historical series plus the latest forecast for plots.
func (h *ForecastHandler) ChartData(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid medicine id"})
		return
	}

	granularity, err := parseGranularityParam(c.Query("granularity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.service.ChartData(c.Request.Context(), id, granularity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}
