package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
	"github.com/qleroy/procure/internal/port"
)

// Stage names recorded in the run ledger.
const (
	StageAggregate      = "aggregate"
	StageNetDemand      = "net_demand"
	StageSupplierOrders = "supplier_orders"
	StageArchive        = "archive"
)

// PipelineSummary tallies one full run.
type PipelineSummary struct {
	DatesProcessed int
	DatesSkipped   int
	DatesFailed    int
	SKUsOrdered    int
	UnitsOrdered   int
	OrdersWritten  int
}

// Pipeline runs the replenishment stages over every date partition found
// under the raw orders root, in ascending date order. Partitions are
// independent: one date's failure is logged and never blocks the others.
type Pipeline struct {
	ordersRoot string
	aggregator *OrderAggregator
	calculator *NetDemandCalculator
	generator  *SupplierOrderGenerator
	archiver   *Archiver
	catalog    port.Catalog
	ledger     port.RunLedger // optional
	log        zerolog.Logger
}

func NewPipeline(
	ordersRoot string,
	aggregator *OrderAggregator,
	calculator *NetDemandCalculator,
	generator *SupplierOrderGenerator,
	archiver *Archiver,
	catalog port.Catalog,
	ledger port.RunLedger,
	log zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		ordersRoot: ordersRoot,
		aggregator: aggregator,
		calculator: calculator,
		generator:  generator,
		archiver:   archiver,
		catalog:    catalog,
		ledger:     ledger,
		log:        log,
	}
}

// Run loads the catalog once, then processes every partition. It returns an
// error only when no work can be attempted at all (unreadable catalog or
// partition listing); per-date failures are reflected in the summary.
func (pl *Pipeline) Run(ctx context.Context) (PipelineSummary, error) {
	var summary PipelineSummary

	products, err := pl.catalog.Products(ctx)
	if err != nil {
		return summary, fmt.Errorf("load product catalog: %w", err)
	}
	pl.log.Info().Int("products", len(products)).Msg("catalog loaded")

	parts, err := artifact.ListPartitions(pl.ordersRoot)
	if err != nil {
		return summary, fmt.Errorf("list partitions: %w", err)
	}
	pl.log.Info().Int("dates", len(parts)).Msg("starting pipeline run")

	for _, p := range parts {
		switch err := pl.runPartition(ctx, p, products, &summary); {
		case errors.Is(err, ErrMissingStockPartition):
			pl.log.Warn().Str("date", p.String()).Msg("no stock snapshot, date skipped")
			summary.DatesSkipped++
		case err != nil:
			pl.log.Error().Err(err).Str("date", p.String()).Msg("date failed, continuing")
			summary.DatesFailed++
		default:
			summary.DatesProcessed++
		}
	}
	return summary, nil
}

func (pl *Pipeline) runPartition(ctx context.Context, p domain.Partition, products map[string]domain.Product, summary *PipelineSummary) error {
	agg, err := pl.aggregator.Run(ctx, p)
	if err != nil {
		return err
	}
	pl.markStage(ctx, p, StageAggregate, len(agg))

	result, err := pl.calculator.Run(ctx, p, products)
	if err != nil {
		return err
	}
	for _, sku := range result.UnmatchedSKUs {
		pl.log.Warn().Str("date", p.String()).Str("sku", sku).Msg("sku has no catalog record, dropped from ordering")
	}
	pl.markStage(ctx, p, StageNetDemand, len(result.Rows))

	orders, err := pl.generator.Run(ctx, p, products)
	if err != nil {
		return err
	}
	pl.markStage(ctx, p, StageSupplierOrders, len(orders))

	if err := pl.archiver.Run(ctx, p); err != nil {
		return err
	}
	pl.markStage(ctx, p, StageArchive, 0)

	summary.SKUsOrdered += len(result.Rows)
	for _, row := range result.Rows {
		summary.UnitsOrdered += row.OrderQuantity
	}
	summary.OrdersWritten += len(orders)
	return nil
}

// markStage records stage completion when a ledger is wired. Ledger failures
// are operational noise, never pipeline failures.
func (pl *Pipeline) markStage(ctx context.Context, p domain.Partition, stage string, rows int) {
	if pl.ledger == nil {
		return
	}
	if err := pl.ledger.MarkStage(ctx, p, stage, rows); err != nil {
		pl.log.Warn().Err(err).Str("date", p.String()).Str("stage", stage).Msg("run ledger update failed")
	}
}
