package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
)

// NetDemandResult is the outcome of one partition's derivation. UnmatchedSKUs
// lists SKUs that were ordered but have no catalog record; they are excluded
// from the actionable rows and surfaced instead of silently vanishing.
type NetDemandResult struct {
	Rows          []domain.NetDemandRow
	UnmatchedSKUs []string
}

// NetDemandCalculator joins the persisted aggregate, the reconciled stock and
// the product master into the actionable reorder set for one partition.
type NetDemandCalculator struct {
	aggregateRoot string
	netDemandRoot string
	reconciler    *StockReconciler
	log           zerolog.Logger
}

func NewNetDemandCalculator(aggregateRoot, netDemandRoot string, reconciler *StockReconciler, log zerolog.Logger) *NetDemandCalculator {
	return &NetDemandCalculator{
		aggregateRoot: aggregateRoot,
		netDemandRoot: netDemandRoot,
		reconciler:    reconciler,
		log:           log,
	}
}

// Run derives and persists the net-demand artifact for one partition,
// overwriting any prior artifact. It reads the aggregate from disk rather
// than taking it in memory, so the stage can be re-run on its own. A missing
// stock partition returns ErrMissingStockPartition and writes nothing.
func (c *NetDemandCalculator) Run(ctx context.Context, p domain.Partition, products map[string]domain.Product) (NetDemandResult, error) {
	agg, err := artifact.ReadAggregate(artifact.AggregatePath(c.aggregateRoot, p))
	if err != nil {
		return NetDemandResult{}, fmt.Errorf("net demand %s: %w", p, err)
	}

	stock, err := c.reconciler.Run(ctx, p)
	if err != nil {
		return NetDemandResult{}, err
	}

	result := ComputeNetDemand(agg, stock, products)

	path := artifact.NetDemandPath(c.netDemandRoot, p)
	if err := artifact.WriteNetDemand(path, result.Rows); err != nil {
		return NetDemandResult{}, fmt.Errorf("net demand %s: %w", p, err)
	}

	totalUnits := 0
	for _, row := range result.Rows {
		totalUnits += row.OrderQuantity
	}
	c.log.Info().
		Str("date", p.String()).
		Int("skus_to_order", len(result.Rows)).
		Int("units", totalUnits).
		Int("unmatched_skus", len(result.UnmatchedSKUs)).
		Msg("net demand calculated")

	return result, nil
}

// ComputeNetDemand left-joins aggregated demand with stock positions and the
// product master, keyed on SKU from the order side. A SKU absent from stock
// nets against zero available and zero reserved. A SKU absent from the
// catalog cannot be routed to a supplier and is reported as unmatched. Only
// rows with a positive order quantity are actionable.
func ComputeNetDemand(agg []domain.AggregatedDemand, stock map[string]domain.StockPosition, products map[string]domain.Product) NetDemandResult {
	var result NetDemandResult
	for _, a := range agg {
		prod, ok := products[a.SKU]
		if !ok {
			result.UnmatchedSKUs = append(result.UnmatchedSKUs, a.SKU)
			continue
		}
		pos := stock[a.SKU]

		net, orderQty := domain.Replenishment(
			a.TotalQuantity, prod.SafetyStock,
			pos.Available, pos.Reserved,
			prod.PackSize, prod.MinOrderQuantity,
		)
		if orderQty == 0 {
			continue
		}

		result.Rows = append(result.Rows, domain.NetDemandRow{
			SKU:            a.SKU,
			TotalQuantity:  a.TotalQuantity,
			ProductName:    a.ProductName,
			AvailableStock: pos.Available,
			ReservedStock:  pos.Reserved,
			SupplierID:     prod.SupplierID,
			PackSize:       prod.PackSize,
			MOQ:            prod.MinOrderQuantity,
			SafetyStock:    prod.SafetyStock,
			NetDemand:      net,
			OrderQuantity:  orderQty,
		})
	}
	return result
}
