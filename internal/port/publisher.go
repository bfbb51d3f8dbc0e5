package port

import (
	"context"

	"github.com/qleroy/procure/internal/core/domain"
)

// OrderPublisher dispatches generated purchase orders downstream. Delivery is
// at-least-once; re-runs may republish a (supplier, date) document with the
// same order reference.
type OrderPublisher interface {
	Publish(ctx context.Context, order domain.SupplierOrder) error
}
