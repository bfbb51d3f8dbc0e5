package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
	"github.com/qleroy/procure/internal/port"
)

// SupplierOrderGenerator fans the actionable net-demand rows of one partition
// out into one purchase order per supplier.
type SupplierOrderGenerator struct {
	netDemandRoot string
	ordersRoot    string
	publisher     port.OrderPublisher // optional
	log           zerolog.Logger
}

func NewSupplierOrderGenerator(netDemandRoot, ordersRoot string, publisher port.OrderPublisher, log zerolog.Logger) *SupplierOrderGenerator {
	return &SupplierOrderGenerator{
		netDemandRoot: netDemandRoot,
		ordersRoot:    ordersRoot,
		publisher:     publisher,
		log:           log,
	}
}

// Run reads the persisted net-demand artifact, writes one document per
// supplier and republishes each downstream when a publisher is wired. Zero
// actionable rows produce zero documents and no error. Publish failures are
// logged, not fatal: the persisted document is the source of truth and
// delivery is at-least-once.
func (g *SupplierOrderGenerator) Run(ctx context.Context, p domain.Partition, products map[string]domain.Product) ([]domain.SupplierOrder, error) {
	rows, err := artifact.ReadNetDemand(artifact.NetDemandPath(g.netDemandRoot, p))
	if err != nil {
		return nil, fmt.Errorf("supplier orders %s: %w", p, err)
	}

	orders := BuildSupplierOrders(p, rows, products)
	for _, order := range orders {
		path := artifact.SupplierOrderPath(g.ordersRoot, p, order.SupplierID)
		if err := artifact.WriteSupplierOrder(path, order); err != nil {
			return nil, fmt.Errorf("supplier orders %s: %w", p, err)
		}
		if g.publisher != nil {
			if err := g.publisher.Publish(ctx, order); err != nil {
				g.log.Warn().Err(err).
					Str("order_reference", order.OrderReference).
					Msg("order publish failed, document persisted")
			}
		}
	}

	g.log.Info().
		Str("date", p.String()).
		Int("suppliers", len(orders)).
		Int("skus", len(rows)).
		Msg("supplier orders generated")

	return orders, nil
}

// BuildSupplierOrders groups rows by supplier and derives one order document
// per supplier. Suppliers come out in ascending id and items keep source-row
// order, so regeneration over the same inputs is byte-identical. The document
// total is always the sum of its items, never tracked separately.
func BuildSupplierOrders(p domain.Partition, rows []domain.NetDemandRow, products map[string]domain.Product) []domain.SupplierOrder {
	bySupplier := make(map[int][]domain.NetDemandRow)
	for _, row := range rows {
		bySupplier[row.SupplierID] = append(bySupplier[row.SupplierID], row)
	}

	supplierIDs := make([]int, 0, len(bySupplier))
	for id := range bySupplier {
		supplierIDs = append(supplierIDs, id)
	}
	sort.Ints(supplierIDs)

	orders := make([]domain.SupplierOrder, 0, len(supplierIDs))
	for _, id := range supplierIDs {
		group := bySupplier[id]
		items := make([]domain.SupplierOrderItem, 0, len(group))
		totalQty := 0
		totalValue := decimal.Zero
		for _, row := range group {
			unitPrice := products[row.SKU].UnitPrice
			lineValue := unitPrice.Mul(decimal.NewFromInt(int64(row.OrderQuantity)))
			items = append(items, domain.SupplierOrderItem{
				SKU:           row.SKU,
				ProductName:   row.ProductName,
				NetDemand:     row.NetDemand,
				OrderQuantity: row.OrderQuantity,
				UnitPrice:     unitPrice,
				LineValue:     lineValue,
			})
			totalQty += row.OrderQuantity
			totalValue = totalValue.Add(lineValue)
		}
		orders = append(orders, domain.SupplierOrder{
			SupplierID:     id,
			OrderDate:      p.String(),
			OrderReference: domain.OrderReference(p, id),
			TotalItems:     len(items),
			TotalQuantity:  totalQty,
			TotalValue:     totalValue,
			Items:          items,
		})
	}
	return orders
}
