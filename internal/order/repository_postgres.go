package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	createOrderQuery = `
        INSERT INTO orders (vendor_id, supplier_id, total_amount, status, delivery_address, expected_delivery, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`
	createItemQuery = `
        INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`
	listByVendorQuery = `
        SELECT id, vendor_id, supplier_id, total_amount, status, delivery_address, expected_delivery, created_at
        FROM orders
        WHERE vendor_id = $1
        ORDER BY created_at DESC, id DESC`
	listItemsQuery = `
        SELECT id, order_id, product_id, quantity, unit_price, total_price
        FROM order_items
        WHERE order_id = ANY($1::bigint[])
        ORDER BY order_id, id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, ord Order) (Order, error) {
	err := r.db.QueryRowContext(ctx, createOrderQuery,
		ord.VendorID, ord.SupplierID, ord.TotalAmount, string(ord.Status), ord.DeliveryAddress, ord.ExpectedDelivery, ord.CreatedAt).
		Scan(&ord.ID)
	if err != nil {
		return Order{}, classify("create order", err)
	}
	return ord, nil
}

func (r *PostgresRepository) CreateOrderItem(ctx context.Context, item Item) (Item, error) {
	err := r.db.QueryRowContext(ctx, createItemQuery,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice).
		Scan(&item.ID)
	if err != nil {
		return Item{}, classify("create order item", err)
	}
	return item, nil
}

func (r *PostgresRepository) ListByVendor(ctx context.Context, vendorID int64) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listByVendorQuery, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var (
			ord    Order
			status string
		)
		if err := rows.Scan(&ord.ID, &ord.VendorID, &ord.SupplierID, &ord.TotalAmount, &status,
			&ord.DeliveryAddress, &ord.ExpectedDelivery, &ord.CreatedAt); err != nil {
			return nil, err
		}
		if ord.Status, err = ParseStatus(status); err != nil {
			return nil, fmt.Errorf("order %d: %w", ord.ID, err)
		}
		orders = append(orders, ord)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) ListItems(ctx context.Context, orderIDs []int64) ([]Item, error) {
	if len(orderIDs) == 0 {
		return []Item{}, nil
	}
	rows, err := r.db.QueryContext(ctx, listItemsQuery, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// classify tags integrity constraint violations (SQLSTATE class 23) with
// ErrConstraint. Anything else is reported as a transport failure.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
