package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/oncare/pharmalytics/internal/config"
	"github.com/oncare/pharmalytics/internal/storage"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing CSV exports",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *sql.DB {
	return c.Context.Value(dbKey).(*sql.DB)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Import pharmacy catalog and sales history from CSV exports",
		Commands: []*cli.Command{
			{
				Name:  "medicines",
				Usage: "Import the medicine catalog (medicines.csv)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newDataDirFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					return importMedicines(c.Context, dbFrom(c), filepath.Join(c.String("data-dir"), "medicines.csv"))
				},
			},
			{
				Name:  "orders",
				Usage: "Import order history (orders.csv and order_items.csv)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newDataDirFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					dir := c.String("data-dir")
					if err := importOrders(c.Context, dbFrom(c), filepath.Join(dir, "orders.csv")); err != nil {
						return err
					}
					return importOrderItems(c.Context, dbFrom(c), filepath.Join(dir, "order_items.csv"))
				},
			},
			{
				Name:  "all",
				Usage: "Import catalog then order history",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newDataDirFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					dir := c.String("data-dir")
					if err := importMedicines(c.Context, dbFrom(c), filepath.Join(dir, "medicines.csv")); err != nil {
						return err
					}
					if err := importOrders(c.Context, dbFrom(c), filepath.Join(dir, "orders.csv")); err != nil {
						return err
					}
					return importOrderItems(c.Context, dbFrom(c), filepath.Join(dir, "order_items.csv"))
				},
			},
			{
				Name:  "download",
				Usage: "Pull CSV exports from the configured S3 bucket into the data directory",
				Flags: []cli.Flag{
					newDataDirFlag(),
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object key prefix to download",
						Value: "exports/",
					},
				},
				Action: downloadExports,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func downloadExports(c *cli.Context) error {
	cfg := config.Load()
	client, err := storage.NewS3Client(cfg.Storage)
	if err != nil {
		return err
	}

	prefix := c.String("prefix")
	objects, err := client.ListObjects(c.Context, prefix)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return fmt.Errorf("no objects found under prefix %q", prefix)
	}

	dataDir := c.String("data-dir")
	for _, obj := range objects {
		dest := filepath.Join(dataDir, filepath.Base(obj.Key))
		log.Printf("downloading %s (%d bytes) to %s", obj.Key, obj.Size, dest)
		if err := client.DownloadObject(c.Context, obj.Key, dest); err != nil {
			return err
		}
	}

	log.Printf("downloaded %d files to %s", len(objects), dataDir)
	return nil
}
