package domain

import "github.com/shopspring/decimal"

// Product is a catalog master record. The pipeline reads these, never writes
// them. SupplierID == 0 means no supplier is assigned.
type Product struct {
	SKU              string
	ProductName      string
	Category         string
	SupplierID       int
	UnitPrice        decimal.Decimal
	PackSize         int
	CaseSize         int
	MinOrderQuantity int
	SafetyStock      int
}
