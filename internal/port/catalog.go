package port

import (
	"context"

	"github.com/qleroy/procure/internal/core/domain"
)

// Catalog is the read-only product master. The pipeline loads it once per
// invocation and never writes to it.
type Catalog interface {
	// Products returns every product keyed by SKU.
	Products(ctx context.Context) (map[string]domain.Product, error)

	// CountMissingSupplier returns how many products lack a supplier assignment.
	CountMissingSupplier(ctx context.Context) (int, error)
}
