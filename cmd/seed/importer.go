package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// openCSV returns a reader positioned after the header row, plus an index from
// column name to position so exports with reordered columns still import.
func openCSV(path string) (*csv.Reader, map[string]int, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		f.Close()
		return nil, nil, nil, fmt.Errorf("could not read header of %s: %w", path, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return reader, columns, f, nil
}

func field(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func importMedicines(ctx context.Context, db *sql.DB, path string) error {
	reader, columns, f, err := openCSV(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO medicines (id, name, unit_price, current_stock, reorder_point, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			unit_price = EXCLUDED.unit_price,
			current_stock = EXCLUDED.current_stock,
			reorder_point = EXCLUDED.reorder_point,
			is_active = EXCLUDED.is_active`)
	if err != nil {
		return fmt.Errorf("failed to prepare medicine insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed reading %s: %w", path, err)
		}

		id, err := strconv.ParseInt(field(record, columns, "id"), 10, 64)
		if err != nil {
			log.Printf("skipping medicine row with bad id: %v", record)
			continue
		}

		currentStock, _ := strconv.Atoi(field(record, columns, "current_stock"))
		reorderPoint, _ := strconv.Atoi(field(record, columns, "reorder_point"))
		isActive := field(record, columns, "is_active") != "false"

		if _, err := stmt.ExecContext(ctx, id,
			field(record, columns, "name"),
			field(record, columns, "unit_price"),
			currentStock, reorderPoint, isActive,
		); err != nil {
			return fmt.Errorf("failed inserting medicine %d: %w", id, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit medicines: %w", err)
	}
	log.Printf("imported %d medicines from %s", count, path)
	return nil
}

func importOrders(ctx context.Context, db *sql.DB, path string) error {
	reader, columns, f, err := openCSV(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO orders (id, status, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare order insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed reading %s: %w", path, err)
		}

		id, err := strconv.ParseInt(field(record, columns, "id"), 10, 64)
		if err != nil {
			log.Printf("skipping order row with bad id: %v", record)
			continue
		}

		createdAt, err := parseTimestamp(field(record, columns, "created_at"))
		if err != nil {
			log.Printf("skipping order %d with bad created_at: %v", id, err)
			continue
		}

		if _, err := stmt.ExecContext(ctx, id, field(record, columns, "status"), createdAt); err != nil {
			return fmt.Errorf("failed inserting order %d: %w", id, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit orders: %w", err)
	}
	log.Printf("imported %d orders from %s", count, path)
	return nil
}

func importOrderItems(ctx context.Context, db *sql.DB, path string) error {
	reader, columns, f, err := openCSV(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (order_id, medicine_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id, medicine_id) DO UPDATE SET
			quantity = EXCLUDED.quantity`)
	if err != nil {
		return fmt.Errorf("failed to prepare order item insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed reading %s: %w", path, err)
		}

		orderID, err := strconv.ParseInt(field(record, columns, "order_id"), 10, 64)
		if err != nil {
			log.Printf("skipping order item row with bad order_id: %v", record)
			continue
		}
		medicineID, err := strconv.ParseInt(field(record, columns, "medicine_id"), 10, 64)
		if err != nil {
			log.Printf("skipping order item row with bad medicine_id: %v", record)
			continue
		}
		quantity, err := strconv.Atoi(field(record, columns, "quantity"))
		if err != nil || quantity <= 0 {
			log.Printf("skipping order item (%d, %d) with bad quantity", orderID, medicineID)
			continue
		}

		if _, err := stmt.ExecContext(ctx, orderID, medicineID, quantity); err != nil {
			return fmt.Errorf("failed inserting order item (%d, %d): %w", orderID, medicineID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order items: %w", err)
	}
	log.Printf("imported %d order items from %s", count, path)
	return nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
