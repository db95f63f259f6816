package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// OrderRefStore is the durable cross-reference between a SureCart order and
// the Printify order created from it, plus an append-only note log. This is
// the order-side mirror of the product join key.
type OrderRefStore interface {
	PrintifyOrderID(ctx context.Context, orderID string) (string, error)
	SavePrintifyOrderID(ctx context.Context, orderID, printifyOrderID string) error
	AppendNote(ctx context.Context, orderID, note string) error
	Notes(ctx context.Context, orderID string) ([]string, error)
}

type mysqlOrderRefStore struct {
	db *sql.DB
}

func NewMysqlOrderRefStore(db *sql.DB) OrderRefStore {
	return &mysqlOrderRefStore{db: db}
}

// EnsureSchema creates the two tables on first use.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS order_sync_refs (
			order_id VARCHAR(64) PRIMARY KEY,
			printify_order_id VARCHAR(64) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS order_sync_notes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			order_id VARCHAR(64) NOT NULL,
			note TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_order_sync_notes_order (order_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("order schema: %w", err)
		}
	}
	return nil
}

func (s *mysqlOrderRefStore) PrintifyOrderID(ctx context.Context, orderID string) (string, error) {
	var printifyID string
	err := s.db.QueryRowContext(ctx,
		"SELECT printify_order_id FROM order_sync_refs WHERE order_id = ?", orderID,
	).Scan(&printifyID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("order ref load: %w", err)
	}
	return printifyID, nil
}

func (s *mysqlOrderRefStore) SavePrintifyOrderID(ctx context.Context, orderID, printifyOrderID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO order_sync_refs (order_id, printify_order_id) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE printify_order_id = VALUES(printify_order_id)`,
		orderID, printifyOrderID,
	)
	if err != nil {
		return fmt.Errorf("order ref save: %w", err)
	}
	return nil
}

func (s *mysqlOrderRefStore) AppendNote(ctx context.Context, orderID, note string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO order_sync_notes (order_id, note) VALUES (?, ?)",
		orderID, note,
	)
	if err != nil {
		return fmt.Errorf("order note append: %w", err)
	}
	return nil
}

func (s *mysqlOrderRefStore) Notes(ctx context.Context, orderID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT note FROM order_sync_notes WHERE order_id = ? ORDER BY id", orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("order notes load: %w", err)
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var note string
		if err := rows.Scan(&note); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
