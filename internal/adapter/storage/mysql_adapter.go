package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/qleroy/procure/internal/core/domain"
)

// MySQLCatalog reads the product master from the relational catalog. The
// pipeline never writes through this adapter.
type MySQLCatalog struct {
	db *sql.DB
}

func NewMySQLCatalog(db *sql.DB) *MySQLCatalog {
	return &MySQLCatalog{db: db}
}

func (c *MySQLCatalog) Products(ctx context.Context) (map[string]domain.Product, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT sku, product_name, category, COALESCE(supplier_id, 0),
		       unit_price, pack_size, case_size, min_order_quantity, safety_stock
		FROM products`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make(map[string]domain.Product)
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(&p.SKU, &p.ProductName, &p.Category, &p.SupplierID,
			&p.UnitPrice, &p.PackSize, &p.CaseSize, &p.MinOrderQuantity, &p.SafetyStock)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products[p.SKU] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (c *MySQLCatalog) CountMissingSupplier(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE supplier_id IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unmapped products: %w", err)
	}
	return count, nil
}
