package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/qleroy/procure/internal/core/domain"
)

var orderHeader = []string{"order_id", "store_id", "order_date", "order_time", "sku", "product_name", "quantity"}

var stockHeader = []string{"warehouse_code", "sku", "product_name", "available_quantity", "reserved_quantity", "snapshot_date", "snapshot_time"}

// ReadOrderLines reads every order-line extract (*.csv) in a partition
// directory, in file-name order. A missing directory is not an error; it
// yields no lines so completeness problems surface in the exception pass
// instead of aborting a stage.
func ReadOrderLines(dir string) ([]domain.OrderLine, error) {
	files, err := listCSV(dir)
	if err != nil {
		return nil, err
	}

	var lines []domain.OrderLine
	for _, file := range files {
		records, err := readTable(file, orderHeader)
		if err != nil {
			return nil, err
		}
		for i, rec := range records {
			qty, err := strconv.Atoi(rec[6])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: bad quantity %q: %w", file, i+2, rec[6], err)
			}
			date, err := domain.ParsePartition(rec[2])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", file, i+2, err)
			}
			lines = append(lines, domain.OrderLine{
				OrderID:     rec[0],
				StoreID:     rec[1],
				OrderDate:   date,
				OrderTime:   rec[3],
				SKU:         rec[4],
				ProductName: rec[5],
				Quantity:    qty,
			})
		}
	}
	return lines, nil
}

// ReadStockSnapshots reads every warehouse snapshot (*.csv) in a partition
// directory, in file-name order.
func ReadStockSnapshots(dir string) ([]domain.StockSnapshot, error) {
	files, err := listCSV(dir)
	if err != nil {
		return nil, err
	}

	var snaps []domain.StockSnapshot
	for _, file := range files {
		records, err := readTable(file, stockHeader)
		if err != nil {
			return nil, err
		}
		for i, rec := range records {
			available, err := strconv.Atoi(rec[3])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: bad available_quantity %q: %w", file, i+2, rec[3], err)
			}
			reserved, err := strconv.Atoi(rec[4])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: bad reserved_quantity %q: %w", file, i+2, rec[4], err)
			}
			date, err := domain.ParsePartition(rec[5])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", file, i+2, err)
			}
			snaps = append(snaps, domain.StockSnapshot{
				WarehouseCode:     rec[0],
				SKU:               rec[1],
				ProductName:       rec[2],
				AvailableQuantity: available,
				ReservedQuantity:  reserved,
				SnapshotDate:      date,
				SnapshotTime:      rec[6],
			})
		}
	}
	return snaps, nil
}

// WriteOrderLines writes one store extract, overwriting any existing file.
func WriteOrderLines(path string, lines []domain.OrderLine) error {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			l.OrderID, l.StoreID, l.OrderDate.String(), l.OrderTime,
			l.SKU, l.ProductName, strconv.Itoa(l.Quantity),
		})
	}
	return writeTable(path, orderHeader, rows)
}

// WriteStockSnapshots writes one warehouse snapshot, overwriting any existing file.
func WriteStockSnapshots(path string, snaps []domain.StockSnapshot) error {
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			s.WarehouseCode, s.SKU, s.ProductName,
			strconv.Itoa(s.AvailableQuantity), strconv.Itoa(s.ReservedQuantity),
			s.SnapshotDate.String(), s.SnapshotTime,
		})
	}
	return writeTable(path, stockHeader, rows)
}

// CountExtracts returns how many extract files a partition directory holds.
// A missing directory counts as zero.
func CountExtracts(dir string) (int, error) {
	files, err := listCSV(dir)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

func listCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func readTable(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}
	if !sameHeader(records[0], header) {
		return nil, fmt.Errorf("%s: header mismatch, expected %v, got %v", path, header, records[0])
	}
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d", path, i+2, len(header), len(rec))
		}
	}
	return records[1:], nil
}

func writeTable(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func sameHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
