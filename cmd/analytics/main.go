package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/oncare/pharmalytics/internal/cache"
	"github.com/oncare/pharmalytics/internal/config"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/repository/postgres"
	"github.com/oncare/pharmalytics/internal/service"
	"github.com/oncare/pharmalytics/pkg/logger"
	"github.com/urfave/cli/v2"
)

// services bundles what every subcommand needs after Before has run.
type services struct {
	db       *postgres.DB
	forecast *service.ForecastService
	supply   *service.SupplyService
	trend    *service.TrendService
	cfg      *config.Config
}

var svc services

func setup(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	salesRepo := postgres.NewSalesRepository(db)
	medicineRepo := postgres.NewMedicineRepository(db)
	forecastRepo := postgres.NewForecastRepository(db)
	policyRepo := postgres.NewPolicyRepository(db)
	trendRepo := postgres.NewTrendRepository(db)

	forecastService := service.NewForecastService(salesRepo, medicineRepo, forecastRepo, cache.NewNoopForecastCache(), cfg.Forecast)

	svc = services{
		db:       db,
		forecast: forecastService,
		supply:   service.NewSupplyService(medicineRepo, policyRepo, forecastService, cfg.Inventory),
		trend:    service.NewTrendService(salesRepo, medicineRepo, trendRepo),
		cfg:      cfg,
	}
	return nil
}

func teardown(c *cli.Context) error {
	if svc.db != nil {
		return svc.db.Close()
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func granularityFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "granularity",
		Usage: "Aggregation period: daily, weekly or monthly",
	}
}

func main() {
	app := &cli.App{
		Name:   "analytics",
		Usage:  "Run demand forecasts, inventory optimization and trend rebuilds from the command line",
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			{
				Name:  "forecast",
				Usage: "Fit and store a demand forecast",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "medicine-id", Usage: "Medicine to forecast"},
					&cli.BoolFlag{Name: "all", Usage: "Forecast every active medicine"},
					granularityFlag(),
					&cli.IntFlag{Name: "horizon", Usage: "Periods to project (0 uses the configured default)"},
				},
				Action: runForecast,
			},
			{
				Name:  "optimize",
				Usage: "Derive and store an inventory policy from the latest forecast",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "medicine-id", Usage: "Medicine to optimize"},
					&cli.BoolFlag{Name: "all", Usage: "Optimize every active medicine"},
					&cli.Float64Flag{Name: "service-level", Usage: "Target service level percent (0 uses the configured default)"},
					&cli.IntFlag{Name: "lead-time-days", Usage: "Supplier lead time in days (0 uses the configured default)"},
				},
				Action: runOptimize,
			},
			{
				Name:  "trends",
				Usage: "Rebuild per-period sales trend rows",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "medicine-id", Usage: "Medicine to rebuild", Required: true},
					granularityFlag(),
					&cli.IntFlag{Name: "days", Usage: "Window length in days", Value: 90},
				},
				Action: runTrends,
			},
			{
				Name:   "alerts",
				Usage:  "Print the current reorder alerts, most urgent first",
				Action: runAlerts,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func resolveGranularity(c *cli.Context) (domain.Granularity, error) {
	raw := c.String("granularity")
	if raw == "" {
		return "", nil
	}
	return domain.ParseGranularity(raw)
}

func targetIDs(c *cli.Context) ([]int64, error) {
	if c.Bool("all") {
		meds, err := postgres.NewMedicineRepository(svc.db).ListActiveMedicines(c.Context)
		if err != nil {
			return nil, err
		}
		ids := make([]int64, len(meds))
		for i, med := range meds {
			ids[i] = med.ID
		}
		return ids, nil
	}

	id := c.Int64("medicine-id")
	if id <= 0 {
		return nil, fmt.Errorf("either --medicine-id or --all is required")
	}
	return []int64{id}, nil
}

func runForecast(c *cli.Context) error {
	granularity, err := resolveGranularity(c)
	if err != nil {
		return err
	}
	ids, err := targetIDs(c)
	if err != nil {
		return err
	}

	if len(ids) == 1 {
		run, err := svc.forecast.Forecast(c.Context, service.ForecastRequest{
			MedicineID:  ids[0],
			Granularity: granularity,
			Horizon:     c.Int("horizon"),
		})
		if err != nil {
			return err
		}
		return printJSON(run)
	}

	outcome := svc.forecast.BulkForecast(c.Context, ids, granularity, c.Int("horizon"))
	return printJSON(outcome)
}

func runOptimize(c *cli.Context) error {
	ids, err := targetIDs(c)
	if err != nil {
		return err
	}

	params := svc.supply.DefaultParams()
	if v := c.Float64("service-level"); v > 0 {
		params.ServiceLevel = v
	}
	if v := c.Int("lead-time-days"); v > 0 {
		params.LeadTimeDays = v
	}

	if len(ids) == 1 {
		policy, err := svc.supply.Optimize(c.Context, ids[0], params)
		if err != nil {
			return err
		}
		return printJSON(policy)
	}

	failed := svc.supply.OptimizeMany(c.Context, ids, params, svc.cfg.Forecast.BulkWorkers)
	fmt.Printf("optimized %d of %d medicines\n", len(ids)-len(failed), len(ids))
	for id, err := range failed {
		fmt.Printf("  medicine %d: %v\n", id, err)
	}
	return nil
}

func runTrends(c *cli.Context) error {
	granularity, err := resolveGranularity(c)
	if err != nil {
		return err
	}
	if granularity == "" {
		granularity = domain.GranularityWeekly
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -c.Int("days"))
	records, err := svc.trend.Recompute(c.Context, c.Int64("medicine-id"), granularity, start, end)
	if err != nil {
		return err
	}
	return printJSON(records)
}

func runAlerts(c *cli.Context) error {
	report, err := svc.supply.GenerateAlerts(c.Context)
	if err != nil {
		return err
	}
	return printJSON(report)
}
