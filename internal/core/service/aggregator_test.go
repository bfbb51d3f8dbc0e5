package service

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
)

func mustPartition(t *testing.T, s string) domain.Partition {
	t.Helper()
	p, err := domain.ParsePartition(s)
	if err != nil {
		t.Fatalf("parse partition %q: %v", s, err)
	}
	return p
}

func TestAggregate(t *testing.T) {
	date := domain.Partition{}
	lines := []domain.OrderLine{
		{OrderID: "O1", StoreID: "S01", OrderDate: date, SKU: "SKU-B", ProductName: "Green Tea", Quantity: 3},
		{OrderID: "O2", StoreID: "S02", OrderDate: date, SKU: "SKU-A", ProductName: "Olive Oil", Quantity: 5},
		{OrderID: "O3", StoreID: "S01", OrderDate: date, SKU: "SKU-B", ProductName: "Green Tea Premium", Quantity: 4},
		{OrderID: "O4", StoreID: "S03", OrderDate: date, SKU: "SKU-A", ProductName: "Olive Oil", Quantity: 2},
	}

	got := Aggregate(lines)
	want := []domain.AggregatedDemand{
		{SKU: "SKU-A", TotalQuantity: 7, ProductName: "Olive Oil"},
		{SKU: "SKU-B", TotalQuantity: 7, ProductName: "Green Tea"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate = %+v, want %+v", got, want)
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("Aggregate(nil) = %+v, want empty", got)
	}
}

func TestOrderAggregator_Run(t *testing.T) {
	dir := t.TempDir()
	ordersRoot := filepath.Join(dir, "orders")
	aggregateRoot := filepath.Join(dir, "aggregated")
	p := mustPartition(t, "2025-11-03")

	store1 := []domain.OrderLine{
		{OrderID: "O1", StoreID: "S01", OrderDate: p, OrderTime: "09:00:00", SKU: "SKU-A", ProductName: "Olive Oil", Quantity: 60},
	}
	store2 := []domain.OrderLine{
		{OrderID: "O2", StoreID: "S02", OrderDate: p, OrderTime: "10:30:00", SKU: "SKU-A", ProductName: "Olive Oil", Quantity: 60},
	}
	partDir := filepath.Join(ordersRoot, p.String())
	if err := artifact.WriteOrderLines(filepath.Join(partDir, "orders_store_01.csv"), store1); err != nil {
		t.Fatal(err)
	}
	if err := artifact.WriteOrderLines(filepath.Join(partDir, "orders_store_02.csv"), store2); err != nil {
		t.Fatal(err)
	}

	agg := NewOrderAggregator(ordersRoot, aggregateRoot, zerolog.Nop())
	rows, err := agg.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 1 || rows[0].TotalQuantity != 120 {
		t.Fatalf("rows = %+v, want one SKU-A row totalling 120", rows)
	}

	persisted, err := artifact.ReadAggregate(artifact.AggregatePath(aggregateRoot, p))
	if err != nil {
		t.Fatalf("read persisted aggregate: %v", err)
	}
	if !reflect.DeepEqual(persisted, rows) {
		t.Errorf("persisted = %+v, want %+v", persisted, rows)
	}
}

func TestOrderAggregator_Run_EmptyPartition(t *testing.T) {
	dir := t.TempDir()
	p := mustPartition(t, "2025-11-03")

	agg := NewOrderAggregator(filepath.Join(dir, "orders"), filepath.Join(dir, "aggregated"), zerolog.Nop())
	rows, err := agg.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %+v, want none", rows)
	}

	// The artifact still exists so the exception pass can tell "empty" from
	// "never ran".
	persisted, err := artifact.ReadAggregate(artifact.AggregatePath(filepath.Join(dir, "aggregated"), p))
	if err != nil {
		t.Fatalf("read persisted aggregate: %v", err)
	}
	if len(persisted) != 0 {
		t.Errorf("persisted = %+v, want empty", persisted)
	}
}
