package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/service"
)

const defaultTrendWindowDays = 90

type TrendHandler struct {
	service *service.TrendService
}

func NewTrendHandler(service *service.TrendService) *TrendHandler {
	return &TrendHandler{service: service}
}

func (h *TrendHandler) parseArgs(c *gin.Context) (int64, domain.Granularity, int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid medicine id"})
		return 0, "", 0, false
	}

	granularity := domain.GranularityWeekly
	if raw := c.Query("granularity"); raw != "" {
		granularity, err = domain.ParseGranularity(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return 0, "", 0, false
		}
	}

	days := defaultTrendWindowDays
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return 0, "", 0, false
		}
	}

	return id, granularity, days, true
}

// Recompute rebuilds trend rows for the medicine over the requested window.
func (h *TrendHandler) Recompute(c *gin.Context) {
	id, granularity, days, ok := h.parseArgs(c)
	if !ok {
		return
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	records, err := h.service.Recompute(c.Request.Context(), id, granularity, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medicine_id": id,
		"granularity": granularity,
		"periods":     len(records),
		"trends":      records,
	})
}

// List returns stored trend rows for the medicine.
func (h *TrendHandler) List(c *gin.Context) {
	id, granularity, days, ok := h.parseArgs(c)
	if !ok {
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	records, err := h.service.List(c.Request.Context(), id, granularity, since)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medicine_id": id,
		"granularity": granularity,
		"trends":      records,
	})
}
