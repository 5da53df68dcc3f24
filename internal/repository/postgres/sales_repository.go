package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/repository"
)

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) repository.SalesRepository {
	return &salesRepository{db: db}
}

// Only orders that were actually committed count as demand. Cancelled and
// still-pending carts would bias the series upward.
var soldStatuses = []string{"confirmed", "processing", "shipped", "delivered"}

func (r *salesRepository) FetchOrderLines(ctx context.Context, medicineID int64, start, end time.Time) ([]domain.OrderLine, error) {
	query := `
		SELECT oi.order_id, oi.medicine_id, oi.quantity, o.created_at
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.medicine_id = $1
		  AND o.status = ANY($2)
		  AND o.created_at >= $3
		  AND o.created_at <= $4
		ORDER BY o.created_at ASC`

	var lines []domain.OrderLine
	if err := r.db.SelectContext(ctx, &lines, query, medicineID, pq.Array(soldStatuses), start, end); err != nil {
		return nil, fmt.Errorf("could not fetch order lines: %w", err)
	}
	return lines, nil
}
