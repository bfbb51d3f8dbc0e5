package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
)

func testProducts() map[string]domain.Product {
	return map[string]domain.Product{
		"SKU-A": {
			SKU: "SKU-A", ProductName: "Olive Oil", SupplierID: 1,
			UnitPrice: decimal.RequireFromString("4.50"),
			PackSize:  24, MinOrderQuantity: 48, SafetyStock: 20,
		},
		"SKU-B": {
			SKU: "SKU-B", ProductName: "Green Tea", SupplierID: 2,
			UnitPrice: decimal.RequireFromString("2.10"),
			PackSize:  24, MinOrderQuantity: 48, SafetyStock: 0,
		},
	}
}

func TestComputeNetDemand(t *testing.T) {
	agg := []domain.AggregatedDemand{
		{SKU: "SKU-A", TotalQuantity: 120, ProductName: "Olive Oil"},
		{SKU: "SKU-B", TotalQuantity: 10, ProductName: "Green Tea"},
		{SKU: "SKU-X", TotalQuantity: 99, ProductName: "Mystery"},
	}
	stock := map[string]domain.StockPosition{
		"SKU-A": {SKU: "SKU-A", Available: 50, Reserved: 10},
	}

	result := ComputeNetDemand(agg, stock, testProducts())

	// SKU-A: net 100, floored to 96. SKU-B nets 10, below one pack, dropped.
	// SKU-X has no catalog record and is reported, not ordered.
	if len(result.Rows) != 1 {
		t.Fatalf("rows = %+v, want exactly SKU-A", result.Rows)
	}
	row := result.Rows[0]
	if row.SKU != "SKU-A" || row.NetDemand != 100 || row.OrderQuantity != 96 {
		t.Errorf("row = %+v, want SKU-A net 100 order 96", row)
	}
	if row.AvailableStock != 50 || row.ReservedStock != 10 || row.SupplierID != 1 {
		t.Errorf("row carries wrong join columns: %+v", row)
	}
	if !reflect.DeepEqual(result.UnmatchedSKUs, []string{"SKU-X"}) {
		t.Errorf("unmatched = %v, want [SKU-X]", result.UnmatchedSKUs)
	}
}

func TestComputeNetDemand_NoStockRecordNetsAgainstZero(t *testing.T) {
	agg := []domain.AggregatedDemand{{SKU: "SKU-B", TotalQuantity: 30, ProductName: "Green Tea"}}

	result := ComputeNetDemand(agg, map[string]domain.StockPosition{}, testProducts())
	if len(result.Rows) != 1 {
		t.Fatalf("rows = %+v, want one", result.Rows)
	}
	// net 30, one pack of 24, raised to MOQ 48.
	if row := result.Rows[0]; row.NetDemand != 30 || row.OrderQuantity != 48 {
		t.Errorf("row = %+v, want net 30 order 48", row)
	}
}

func netDemandFixture(t *testing.T) (calc *NetDemandCalculator, netDemandRoot string, p domain.Partition) {
	t.Helper()
	dir := t.TempDir()
	aggregateRoot := filepath.Join(dir, "aggregated")
	stockRoot := filepath.Join(dir, "stock")
	netDemandRoot = filepath.Join(dir, "net_demand")
	p = mustPartition(t, "2025-11-03")

	agg := []domain.AggregatedDemand{
		{SKU: "SKU-A", TotalQuantity: 120, ProductName: "Olive Oil"},
		{SKU: "SKU-B", TotalQuantity: 70, ProductName: "Green Tea"},
	}
	if err := artifact.WriteAggregate(artifact.AggregatePath(aggregateRoot, p), agg); err != nil {
		t.Fatal(err)
	}
	snaps := []domain.StockSnapshot{
		{WarehouseCode: "WH01", SKU: "SKU-A", ProductName: "Olive Oil", AvailableQuantity: 50, ReservedQuantity: 10, SnapshotDate: p, SnapshotTime: "23:59:59"},
	}
	if err := artifact.WriteStockSnapshots(filepath.Join(stockRoot, p.String(), "stock_WH01.csv"), snaps); err != nil {
		t.Fatal(err)
	}

	reconciler := NewStockReconciler(stockRoot, zerolog.Nop())
	calc = NewNetDemandCalculator(aggregateRoot, netDemandRoot, reconciler, zerolog.Nop())
	return calc, netDemandRoot, p
}

func TestNetDemandCalculator_Run(t *testing.T) {
	calc, netDemandRoot, p := netDemandFixture(t)

	result, err := calc.Run(context.Background(), p, testProducts())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("rows = %+v, want SKU-A and SKU-B", result.Rows)
	}

	persisted, err := artifact.ReadNetDemand(artifact.NetDemandPath(netDemandRoot, p))
	if err != nil {
		t.Fatalf("read persisted artifact: %v", err)
	}
	if !reflect.DeepEqual(persisted, result.Rows) {
		t.Errorf("persisted = %+v, want %+v", persisted, result.Rows)
	}
}

func TestNetDemandCalculator_Run_Idempotent(t *testing.T) {
	calc, netDemandRoot, p := netDemandFixture(t)
	ctx := context.Background()
	path := artifact.NetDemandPath(netDemandRoot, p)

	if _, err := calc.Run(ctx, p, testProducts()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := calc.Run(ctx, p, testProducts()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("re-run over identical inputs produced a different artifact")
	}
}
