package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SupplierOrderItem is one ordered SKU within a purchase order.
type SupplierOrderItem struct {
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	NetDemand     int             `json:"net_demand"`
	OrderQuantity int             `json:"order_quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineValue     decimal.Decimal `json:"line_value"`
}

// SupplierOrder is one purchase order to one supplier for one date. A given
// (supplier, date) pair always regenerates the same reference, so re-runs
// overwrite rather than duplicate.
type SupplierOrder struct {
	SupplierID     int               `json:"supplier_id"`
	OrderDate      string            `json:"order_date"`
	OrderReference string            `json:"order_reference"`
	TotalItems     int               `json:"total_items"`
	TotalQuantity  int               `json:"total_quantity"`
	TotalValue     decimal.Decimal   `json:"total_value"`
	Items          []SupplierOrderItem `json:"items"`
}

// OrderReference derives the deterministic purchase-order reference for one
// supplier and date.
func OrderReference(p Partition, supplierID int) string {
	return fmt.Sprintf("ORD-%s-SUP%03d", p, supplierID)
}
