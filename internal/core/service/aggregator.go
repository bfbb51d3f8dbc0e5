package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
)

// OrderAggregator consolidates the per-store order-line extracts of one
// partition into one AggregatedDemand row per SKU.
type OrderAggregator struct {
	ordersRoot    string
	aggregateRoot string
	log           zerolog.Logger
}

func NewOrderAggregator(ordersRoot, aggregateRoot string, log zerolog.Logger) *OrderAggregator {
	return &OrderAggregator{
		ordersRoot:    ordersRoot,
		aggregateRoot: aggregateRoot,
		log:           log,
	}
}

// Run aggregates one partition and persists the artifact, overwriting any
// prior aggregate for that date. An empty partition yields an empty artifact;
// the completeness check of the exception pass reports it, not this stage.
func (a *OrderAggregator) Run(ctx context.Context, p domain.Partition) ([]domain.AggregatedDemand, error) {
	lines, err := artifact.ReadOrderLines(filepath.Join(a.ordersRoot, p.String()))
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", p, err)
	}

	rows := Aggregate(lines)

	path := artifact.AggregatePath(a.aggregateRoot, p)
	if err := artifact.WriteAggregate(path, rows); err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", p, err)
	}

	a.log.Info().
		Str("date", p.String()).
		Int("order_lines", len(lines)).
		Int("skus", len(rows)).
		Msg("orders aggregated")

	return rows, nil
}

// Aggregate unions order lines, sums quantity per SKU and keeps the first
// observed product name as the display label. Input order across extracts is
// not significant; the result is sorted by SKU so the artifact is
// byte-reproducible for the same inputs.
func Aggregate(lines []domain.OrderLine) []domain.AggregatedDemand {
	totals := make(map[string]*domain.AggregatedDemand)
	for _, l := range lines {
		agg, ok := totals[l.SKU]
		if !ok {
			agg = &domain.AggregatedDemand{SKU: l.SKU, ProductName: l.ProductName}
			totals[l.SKU] = agg
		}
		agg.TotalQuantity += l.Quantity
	}

	rows := make([]domain.AggregatedDemand, 0, len(totals))
	for _, agg := range totals {
		rows = append(rows, *agg)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SKU < rows[j].SKU })
	return rows
}
