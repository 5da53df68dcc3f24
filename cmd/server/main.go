package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oncare/pharmalytics/internal/api"
	"github.com/oncare/pharmalytics/internal/cache"
	"github.com/oncare/pharmalytics/internal/config"
	"github.com/oncare/pharmalytics/internal/repository/postgres"
	"github.com/oncare/pharmalytics/internal/service"
	"github.com/oncare/pharmalytics/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		forecastCache = cache.NewNoopForecastCache()
	}

	salesRepo := postgres.NewSalesRepository(db)
	medicineRepo := postgres.NewMedicineRepository(db)
	forecastRepo := postgres.NewForecastRepository(db)
	policyRepo := postgres.NewPolicyRepository(db)
	trendRepo := postgres.NewTrendRepository(db)

	forecastService := service.NewForecastService(salesRepo, medicineRepo, forecastRepo, forecastCache, cfg.Forecast)
	supplyService := service.NewSupplyService(medicineRepo, policyRepo, forecastService, cfg.Inventory)
	trendService := service.NewTrendService(salesRepo, medicineRepo, trendRepo)

	router := api.NewRouter(&api.Services{
		Forecast: forecastService,
		Supply:   supplyService,
		Trend:    trendService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server")

	// In-flight model fits get a grace period before the listener dies.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}
