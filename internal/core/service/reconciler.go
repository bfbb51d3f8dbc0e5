package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
)

// ErrMissingStockPartition marks a date that has order data but no stock
// snapshot directory. The calculator skips such dates; the exception pass
// escalates them.
var ErrMissingStockPartition = errors.New("stock partition missing")

// StockReconciler unions the warehouse snapshots of one partition into a
// network-wide position per SKU.
type StockReconciler struct {
	stockRoot string
	log       zerolog.Logger
}

func NewStockReconciler(stockRoot string, log zerolog.Logger) *StockReconciler {
	return &StockReconciler{stockRoot: stockRoot, log: log}
}

func (r *StockReconciler) Run(ctx context.Context, p domain.Partition) (map[string]domain.StockPosition, error) {
	dir := filepath.Join(r.stockRoot, p.String())
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("reconcile %s: %w", p, ErrMissingStockPartition)
	}

	snaps, err := artifact.ReadStockSnapshots(dir)
	if err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", p, err)
	}

	positions := ReconcileStock(snaps)
	r.log.Info().
		Str("date", p.String()).
		Int("snapshots", len(snaps)).
		Int("skus", len(positions)).
		Msg("stock reconciled")
	return positions, nil
}

// ReconcileStock sums available and reserved quantity per SKU across all
// warehouses, independently of snapshot order.
func ReconcileStock(snaps []domain.StockSnapshot) map[string]domain.StockPosition {
	positions := make(map[string]domain.StockPosition, len(snaps))
	for _, s := range snaps {
		pos := positions[s.SKU]
		pos.SKU = s.SKU
		pos.Available += s.AvailableQuantity
		pos.Reserved += s.ReservedQuantity
		positions[s.SKU] = pos
	}
	return positions
}
