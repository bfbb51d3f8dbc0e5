package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/qleroy/procure/internal/core/domain"
)

var aggregateHeader = []string{"sku", "total_quantity", "product_name"}

var netDemandHeader = []string{
	"sku", "total_quantity", "product_name", "available_stock", "reserved_stock",
	"supplier_id", "pack_size", "moq", "safety_stock", "net_demand", "order_quantity",
}

// AggregatePath returns the aggregate artifact path for a partition.
func AggregatePath(root string, p domain.Partition) string {
	return filepath.Join(root, fmt.Sprintf("aggregated_orders_%s.csv", p))
}

// NetDemandPath returns the net-demand artifact path for a partition.
func NetDemandPath(root string, p domain.Partition) string {
	return filepath.Join(root, fmt.Sprintf("net_demand_%s.csv", p))
}

// SupplierOrderPath returns the purchase-order document path for one supplier
// and partition.
func SupplierOrderPath(root string, p domain.Partition, supplierID int) string {
	return filepath.Join(root, p.String(), fmt.Sprintf("supplier_%03d_order_%s.json", supplierID, p))
}

// ReportPath returns the exception-report path for a run date.
func ReportPath(root string, p domain.Partition) string {
	return filepath.Join(root, fmt.Sprintf("exception_report_%s.json", p))
}

// WriteAggregate persists the per-SKU aggregate, overwriting any prior
// artifact for the partition. An empty row set still writes the header so the
// artifact exists and reads back as empty.
func WriteAggregate(path string, rows []domain.AggregatedDemand) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.SKU, strconv.Itoa(r.TotalQuantity), r.ProductName})
	}
	return writeTable(path, aggregateHeader, out)
}

func ReadAggregate(path string) ([]domain.AggregatedDemand, error) {
	records, err := readTable(path, aggregateHeader)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.AggregatedDemand, 0, len(records))
	for i, rec := range records {
		qty, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad total_quantity %q: %w", path, i+2, rec[1], err)
		}
		rows = append(rows, domain.AggregatedDemand{SKU: rec[0], TotalQuantity: qty, ProductName: rec[2]})
	}
	return rows, nil
}

func WriteNetDemand(path string, rows []domain.NetDemandRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.SKU,
			strconv.Itoa(r.TotalQuantity),
			r.ProductName,
			strconv.Itoa(r.AvailableStock),
			strconv.Itoa(r.ReservedStock),
			strconv.Itoa(r.SupplierID),
			strconv.Itoa(r.PackSize),
			strconv.Itoa(r.MOQ),
			strconv.Itoa(r.SafetyStock),
			strconv.Itoa(r.NetDemand),
			strconv.Itoa(r.OrderQuantity),
		})
	}
	return writeTable(path, netDemandHeader, out)
}

func ReadNetDemand(path string) ([]domain.NetDemandRow, error) {
	records, err := readTable(path, netDemandHeader)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.NetDemandRow, 0, len(records))
	for i, rec := range records {
		var fieldErr error
		atoi := func(idx int, col string) int {
			v, err := strconv.Atoi(rec[idx])
			if err != nil && fieldErr == nil {
				fieldErr = fmt.Errorf("%s row %d: bad %s %q: %w", path, i+2, col, rec[idx], err)
			}
			return v
		}
		row := domain.NetDemandRow{
			SKU:            rec[0],
			TotalQuantity:  atoi(1, "total_quantity"),
			ProductName:    rec[2],
			AvailableStock: atoi(3, "available_stock"),
			ReservedStock:  atoi(4, "reserved_stock"),
			SupplierID:     atoi(5, "supplier_id"),
			PackSize:       atoi(6, "pack_size"),
			MOQ:            atoi(7, "moq"),
			SafetyStock:    atoi(8, "safety_stock"),
			NetDemand:      atoi(9, "net_demand"),
			OrderQuantity:  atoi(10, "order_quantity"),
		}
		if fieldErr != nil {
			return nil, fieldErr
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteSupplierOrder persists one purchase-order document as indented JSON.
func WriteSupplierOrder(path string, order domain.SupplierOrder) error {
	return writeJSON(path, order)
}

// WriteExceptionReport persists the structured audit report.
func WriteExceptionReport(path string, report *domain.ExceptionReport) error {
	return writeJSON(path, report)
}

// ListPartitions returns every date-named subdirectory of root in ascending
// date order. Non-date entries are ignored. A missing root yields no
// partitions.
func ListPartitions(root string) ([]domain.Partition, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", root, err)
	}

	var parts []domain.Partition
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, err := domain.ParsePartition(e.Name())
		if err != nil {
			continue
		}
		parts = append(parts, p)
	}
	// ReadDir returns names sorted, and the partition layout sorts
	// lexicographically in date order.
	return parts, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
