package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/oncare/pharmalytics/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB creates the shared connection pool. Model fitting can hold requests
// open for seconds, so writes go through a semaphore-limited transaction
// helper rather than competing for the whole pool.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

		var db *sqlx.DB
		db, err = sqlx.Connect("postgres", connStr)
		if err != nil {
			return
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		dbInstance = &DB{
			DB:  db,
			sem: semaphore.NewWeighted(10),
		}
	})

	return dbInstance, err
}

// WithTx executes fn within a transaction, bounded by the write semaphore.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}
