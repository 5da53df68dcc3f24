package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oncare/pharmalytics/internal/service"
)

type InventoryHandler struct {
	service *service.SupplyService
}

func NewInventoryHandler(service *service.SupplyService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// optimizeRequest overrides the configured defaults; omitted fields keep them.
type optimizeRequest struct {
	ServiceLevel   *float64 `json:"service_level"`
	LeadTimeDays   *int     `json:"lead_time_days"`
	HoldingCostPct *float64 `json:"holding_cost_pct"`
	OrderingCost   *float64 `json:"ordering_cost"`
}

// Optimize derives and stores an inventory policy for one medicine.
func (h *InventoryHandler) Optimize(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid medicine id"})
		return
	}

	params := h.service.DefaultParams()
	if c.Request.ContentLength > 0 {
		var req optimizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if req.ServiceLevel != nil {
			params.ServiceLevel = *req.ServiceLevel
		}
		if req.LeadTimeDays != nil {
			params.LeadTimeDays = *req.LeadTimeDays
		}
		if req.HoldingCostPct != nil {
			params.HoldingCostPct = *req.HoldingCostPct
		}
		if req.OrderingCost != nil {
			params.OrderingCost = *req.OrderingCost
		}
	}

	policy, err := h.service.Optimize(c.Request.Context(), id, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"policy": policy})
}

// CostBreakdown returns the expected-cost components of the latest policy.
func (h *InventoryHandler) CostBreakdown(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid medicine id"})
		return
	}

	breakdown, err := h.service.CostBreakdown(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if breakdown == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no policy calculated for medicine"})
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// ReorderAlerts lists medicines needing replenishment, most urgent first.
func (h *InventoryHandler) ReorderAlerts(c *gin.Context) {
	report, err := h.service.GenerateAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
