package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/repository"
)

type medicineRepository struct {
	db *DB
}

func NewMedicineRepository(db *DB) repository.MedicineRepository {
	return &medicineRepository{db: db}
}

const medicineColumns = `id, name, unit_price, current_stock, reorder_point, is_active`

func (r *medicineRepository) GetMedicine(ctx context.Context, id int64) (*domain.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`

	var med domain.Medicine
	if err := r.db.GetContext(ctx, &med, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get medicine %d: %w", id, err)
	}
	return &med, nil
}

func (r *medicineRepository) ListActiveMedicines(ctx context.Context) ([]domain.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE is_active ORDER BY id`

	var meds []domain.Medicine
	if err := r.db.SelectContext(ctx, &meds, query); err != nil {
		return nil, fmt.Errorf("could not list active medicines: %w", err)
	}
	return meds, nil
}

func (r *medicineRepository) ListBelowReorderPoint(ctx context.Context) ([]domain.Medicine, error) {
	query := `SELECT ` + medicineColumns + `
		FROM medicines
		WHERE is_active AND current_stock <= reorder_point
		ORDER BY current_stock::float / GREATEST(reorder_point, 1)`

	var meds []domain.Medicine
	if err := r.db.SelectContext(ctx, &meds, query); err != nil {
		return nil, fmt.Errorf("could not list medicines below reorder point: %w", err)
	}
	return meds, nil
}
