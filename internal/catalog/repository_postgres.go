package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	catalogColumns = `
        SELECT p.id, p.supplier_id, p.name, p.category, p.unit, p.price, p.stock_quantity, p.min_order_quantity,
               s.business_name, s.rating, s.area, s.kyc_verified
        FROM products p
        JOIN suppliers s ON s.id = p.supplier_id`

	fetchCatalogQuery  = catalogColumns + ` ORDER BY p.id`
	fetchProductsQuery = catalogColumns + `
        WHERE p.id = ANY($1::bigint[])
        ORDER BY array_position($1::bigint[], p.id)`

	fetchSuppliersQuery = `
        SELECT id, business_name, owner_name, phone, area, kyc_verified, rating, total_reviews
        FROM suppliers
        ORDER BY id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FetchCatalog(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, fetchCatalogQuery)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *PostgresRepository) FetchProducts(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.db.QueryContext(ctx, fetchProductsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *PostgresRepository) FetchSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.QueryContext(ctx, fetchSuppliersQuery)
	if err != nil {
		return nil, fmt.Errorf("fetch suppliers: %w", err)
	}
	defer rows.Close()

	out := make([]Supplier, 0)
	for rows.Next() {
		var (
			s     Supplier
			owner sql.NullString
			phone sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.BusinessName, &owner, &phone, &s.Area, &s.KYCVerified, &s.Rating, &s.TotalReviews); err != nil {
			return nil, err
		}
		s.OwnerName = owner.String
		s.Phone = phone.String
		if s, err = NewSupplier(s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	out := make([]Product, 0)
	for rows.Next() {
		var (
			p        Product
			category sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.Name, &category, &p.Unit, &p.Price, &p.StockQuantity, &p.MinOrderQuantity,
			&p.Supplier.BusinessName, &p.Supplier.Rating, &p.Supplier.Area, &p.Supplier.KYCVerified); err != nil {
			return nil, err
		}
		p.Category = category.String
		p, err := NewProduct(p)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
