package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
)

func TestReconcileStock(t *testing.T) {
	snaps := []domain.StockSnapshot{
		{WarehouseCode: "WH01", SKU: "SKU-A", AvailableQuantity: 30, ReservedQuantity: 5},
		{WarehouseCode: "WH02", SKU: "SKU-A", AvailableQuantity: 20, ReservedQuantity: 5},
		{WarehouseCode: "WH01", SKU: "SKU-B", AvailableQuantity: 7, ReservedQuantity: 0},
	}

	positions := ReconcileStock(snaps)
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(positions))
	}
	if a := positions["SKU-A"]; a.Available != 50 || a.Reserved != 10 {
		t.Errorf("SKU-A = %+v, want available 50 reserved 10", a)
	}
	if b := positions["SKU-B"]; b.Available != 7 || b.Reserved != 0 {
		t.Errorf("SKU-B = %+v, want available 7 reserved 0", b)
	}
}

func TestStockReconciler_Run(t *testing.T) {
	dir := t.TempDir()
	p := mustPartition(t, "2025-11-03")

	snaps := []domain.StockSnapshot{
		{WarehouseCode: "WH01", SKU: "SKU-A", ProductName: "Olive Oil", AvailableQuantity: 50, ReservedQuantity: 10, SnapshotDate: p, SnapshotTime: "23:59:59"},
	}
	path := filepath.Join(dir, p.String(), "stock_WH01.csv")
	if err := artifact.WriteStockSnapshots(path, snaps); err != nil {
		t.Fatal(err)
	}

	rec := NewStockReconciler(dir, zerolog.Nop())
	positions, err := rec.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if pos := positions["SKU-A"]; pos.Available != 50 || pos.Reserved != 10 {
		t.Errorf("SKU-A = %+v, want available 50 reserved 10", pos)
	}
}

func TestStockReconciler_Run_MissingPartition(t *testing.T) {
	rec := NewStockReconciler(t.TempDir(), zerolog.Nop())
	_, err := rec.Run(context.Background(), mustPartition(t, "2025-11-03"))
	if !errors.Is(err, ErrMissingStockPartition) {
		t.Errorf("err = %v, want ErrMissingStockPartition", err)
	}
}
