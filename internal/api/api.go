package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/oncare/pharmalytics/internal/api/handlers"
	"github.com/oncare/pharmalytics/internal/api/middleware"
	"github.com/oncare/pharmalytics/internal/service"
)

type Services struct {
	Forecast *service.ForecastService
	Supply   *service.SupplyService
	Trend    *service.TrendService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		analyticsGroup := apiGroup.Group("/analytics")

		if services.Forecast != nil {
			forecastHandler := handlers.NewForecastHandler(services.Forecast)
			{
				analyticsGroup.POST("/forecast", forecastHandler.CreateForecast)
				analyticsGroup.GET("/forecast/:id", forecastHandler.GetForecast)
				analyticsGroup.POST("/forecast/bulk", forecastHandler.BulkForecast)
				analyticsGroup.GET("/medicines/:id/forecast", forecastHandler.LatestForecast)
				analyticsGroup.GET("/medicines/:id/chart", forecastHandler.ChartData)
			}
		}

		if services.Supply != nil {
			inventoryHandler := handlers.NewInventoryHandler(services.Supply)
			{
				analyticsGroup.POST("/medicines/:id/optimization", inventoryHandler.Optimize)
				analyticsGroup.GET("/medicines/:id/costs", inventoryHandler.CostBreakdown)
				analyticsGroup.GET("/reorder_alerts", inventoryHandler.ReorderAlerts)
			}
		}

		if services.Trend != nil {
			trendHandler := handlers.NewTrendHandler(services.Trend)
			{
				analyticsGroup.POST("/medicines/:id/trends/recompute", trendHandler.Recompute)
				analyticsGroup.GET("/medicines/:id/trends", trendHandler.List)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
