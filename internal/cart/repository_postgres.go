package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PostgresRepository stores the cart as a jsonb document keyed by vendor.
// It is the fallback when no Redis instance is configured.
type PostgresRepository struct {
	db *sql.DB
}

const (
	loadCartQuery = `SELECT entries FROM vendor_carts WHERE vendor_id = $1`
	saveCartQuery = `
        INSERT INTO vendor_carts (vendor_id, entries, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (vendor_id) DO UPDATE SET entries = EXCLUDED.entries, updated_at = EXCLUDED.updated_at`
	deleteCartQuery = `DELETE FROM vendor_carts WHERE vendor_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context, vendorID int64) (*Cart, error) {
	var raw []byte
	if err := r.db.QueryRowContext(ctx, loadCartQuery, vendorID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return New(), nil
		}
		return nil, err
	}
	c := New()
	if len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Save(ctx context.Context, vendorID int64, c *Cart) error {
	if c.IsEmpty() {
		return r.Delete(ctx, vendorID)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, saveCartQuery, vendorID, raw, time.Now().UTC())
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, vendorID int64) error {
	_, err := r.db.ExecContext(ctx, deleteCartQuery, vendorID)
	return err
}
