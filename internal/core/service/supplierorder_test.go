package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
)

type capturePublisher struct {
	published []domain.SupplierOrder
	err       error
}

func (p *capturePublisher) Publish(ctx context.Context, order domain.SupplierOrder) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, order)
	return nil
}

func demandRows() []domain.NetDemandRow {
	return []domain.NetDemandRow{
		{SKU: "SKU-B", TotalQuantity: 70, ProductName: "Green Tea", SupplierID: 2, PackSize: 24, MOQ: 48, NetDemand: 70, OrderQuantity: 48},
		{SKU: "SKU-A", TotalQuantity: 120, ProductName: "Olive Oil", SupplierID: 1, PackSize: 24, MOQ: 48, SafetyStock: 20, AvailableStock: 50, ReservedStock: 10, NetDemand: 100, OrderQuantity: 96},
	}
}

func TestBuildSupplierOrders(t *testing.T) {
	p := mustPartition(t, "2025-11-03")
	orders := BuildSupplierOrders(p, demandRows(), testProducts())

	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	// Ascending supplier id regardless of row order.
	if orders[0].SupplierID != 1 || orders[1].SupplierID != 2 {
		t.Fatalf("supplier order ids = %d,%d, want 1,2", orders[0].SupplierID, orders[1].SupplierID)
	}

	first := orders[0]
	if first.OrderReference != "ORD-2025-11-03-SUP001" {
		t.Errorf("reference = %q", first.OrderReference)
	}
	if first.TotalItems != 1 || first.TotalQuantity != 96 {
		t.Errorf("totals = %d items / %d units, want 1 / 96", first.TotalItems, first.TotalQuantity)
	}
	// 96 × 4.50
	if got := first.TotalValue.String(); got != "432" && got != "432.00" {
		t.Errorf("total value = %s, want 432.00", got)
	}
	if got := first.Items[0].LineValue; !got.Equal(first.TotalValue) {
		t.Errorf("line value %s does not match single-item total %s", got, first.TotalValue)
	}

	// Quantity conservation: order totals sum to the row order quantities.
	sum := 0
	for _, o := range orders {
		sum += o.TotalQuantity
	}
	if sum != 96+48 {
		t.Errorf("summed order quantity = %d, want %d", sum, 96+48)
	}
}

func TestBuildSupplierOrders_Empty(t *testing.T) {
	p := mustPartition(t, "2025-11-03")
	if orders := BuildSupplierOrders(p, nil, testProducts()); len(orders) != 0 {
		t.Errorf("orders = %+v, want none", orders)
	}
}

func TestSupplierOrderGenerator_Run(t *testing.T) {
	dir := t.TempDir()
	netDemandRoot := filepath.Join(dir, "net_demand")
	ordersRoot := filepath.Join(dir, "supplier_orders")
	p := mustPartition(t, "2025-11-03")

	if err := artifact.WriteNetDemand(artifact.NetDemandPath(netDemandRoot, p), demandRows()); err != nil {
		t.Fatal(err)
	}

	pub := &capturePublisher{}
	gen := NewSupplierOrderGenerator(netDemandRoot, ordersRoot, pub, zerolog.Nop())
	orders, err := gen.Run(context.Background(), p, testProducts())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}

	for _, o := range orders {
		path := artifact.SupplierOrderPath(ordersRoot, p, o.SupplierID)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("order document missing: %v", err)
		}
	}
	if len(pub.published) != 2 {
		t.Errorf("published %d orders, want 2", len(pub.published))
	}
}

func TestSupplierOrderGenerator_Run_ZeroRows(t *testing.T) {
	dir := t.TempDir()
	netDemandRoot := filepath.Join(dir, "net_demand")
	ordersRoot := filepath.Join(dir, "supplier_orders")
	p := mustPartition(t, "2025-11-03")

	if err := artifact.WriteNetDemand(artifact.NetDemandPath(netDemandRoot, p), nil); err != nil {
		t.Fatal(err)
	}

	gen := NewSupplierOrderGenerator(netDemandRoot, ordersRoot, nil, zerolog.Nop())
	orders, err := gen.Run(context.Background(), p, testProducts())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("orders = %+v, want none", orders)
	}
	if _, err := os.Stat(filepath.Join(ordersRoot, p.String())); !os.IsNotExist(err) {
		t.Errorf("expected no order directory for an empty date, stat err = %v", err)
	}
}

func TestSupplierOrderGenerator_Run_PublishFailureNotFatal(t *testing.T) {
	dir := t.TempDir()
	netDemandRoot := filepath.Join(dir, "net_demand")
	ordersRoot := filepath.Join(dir, "supplier_orders")
	p := mustPartition(t, "2025-11-03")

	if err := artifact.WriteNetDemand(artifact.NetDemandPath(netDemandRoot, p), demandRows()); err != nil {
		t.Fatal(err)
	}

	pub := &capturePublisher{err: errors.New("broker down")}
	gen := NewSupplierOrderGenerator(netDemandRoot, ordersRoot, pub, zerolog.Nop())
	orders, err := gen.Run(context.Background(), p, testProducts())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Documents are still the source of truth.
	for _, o := range orders {
		if _, err := os.Stat(artifact.SupplierOrderPath(ordersRoot, p, o.SupplierID)); err != nil {
			t.Errorf("order document missing despite publish failure: %v", err)
		}
	}
}
