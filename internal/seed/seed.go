package seed

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/config"
	"github.com/qleroy/procure/internal/core/domain"
)

var categories = []string{
	"Produce", "Meat & Fish", "Dairy", "Pantry", "Snacks",
	"Beverages", "Frozen", "Health & Beauty", "Household", "Baby",
}

var namesByCategory = map[string][]string{
	"Produce":         {"Apples", "Bananas", "Tomatoes", "Carrots", "Lettuce", "Oranges"},
	"Meat & Fish":     {"Chicken", "Beef", "Salmon", "Tuna", "Pork", "Shrimp"},
	"Dairy":           {"Milk", "Yogurt", "Cheese", "Butter", "Cream", "Eggs"},
	"Pantry":          {"Pasta", "Rice", "Olive Oil", "Salt", "Canned Beans", "Tomato Sauce"},
	"Snacks":          {"Chocolate", "Biscuits", "Jam", "Cereal", "Honey", "Sugar"},
	"Beverages":       {"Water", "Juice", "Soda", "Coffee", "Tea", "Wine"},
	"Frozen":          {"Pizza", "Ice Cream", "Frozen Vegetables", "Fish Sticks", "Fries"},
	"Health & Beauty": {"Shampoo", "Soap", "Toothpaste", "Deodorant", "Lotion"},
	"Household":       {"Detergent", "Dish Soap", "Sponges", "Cleaner", "Paper Towels"},
	"Baby":            {"Diapers", "Wipes", "Formula", "Baby Food", "Bottles"},
}

var brandSuffixes = []string{
	"Select", "Classic", "Premium", "Daily", "Gold", "Fresh", "Value", "Origin",
}

var cities = []string{"Paris", "Lyon", "Marseille", "Toulouse", "Bordeaux", "Nantes"}

// Seeder fabricates master data in the catalog and operational extracts on
// disk. It is a one-shot utility, not a runtime behavior; the RNG is injected
// so runs are reproducible.
type Seeder struct {
	db    *sql.DB
	cfg   config.Seed
	paths config.Paths
	rng   *rand.Rand
	log   zerolog.Logger
}

func New(db *sql.DB, cfg config.Seed, paths config.Paths, rng *rand.Rand, log zerolog.Logger) *Seeder {
	return &Seeder{db: db, cfg: cfg, paths: paths, rng: rng, log: log}
}

// Master rebuilds the suppliers, warehouses and products tables and returns
// the generated products and warehouse codes for operational seeding.
func (s *Seeder) Master(ctx context.Context) ([]domain.Product, []string, error) {
	if err := s.createSchema(ctx); err != nil {
		return nil, nil, err
	}

	if err := s.insertSuppliers(ctx); err != nil {
		return nil, nil, err
	}
	warehouses, err := s.insertWarehouses(ctx)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.insertProducts(ctx)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Int("suppliers", s.cfg.Suppliers).
		Int("warehouses", len(warehouses)).
		Int("products", len(products)).
		Msg("master data seeded")
	return products, warehouses, nil
}

func (s *Seeder) createSchema(ctx context.Context) error {
	stmts := []string{
		`DROP TABLE IF EXISTS products`,
		`DROP TABLE IF EXISTS warehouses`,
		`DROP TABLE IF EXISTS suppliers`,
		`CREATE TABLE suppliers (
			supplier_id INT AUTO_INCREMENT PRIMARY KEY,
			supplier_name VARCHAR(200) NOT NULL,
			supplier_code VARCHAR(20) NOT NULL UNIQUE,
			lead_time_days INT NOT NULL
		)`,
		`CREATE TABLE warehouses (
			warehouse_id INT AUTO_INCREMENT PRIMARY KEY,
			warehouse_name VARCHAR(200) NOT NULL,
			warehouse_code VARCHAR(20) NOT NULL UNIQUE,
			city VARCHAR(100) NOT NULL,
			capacity INT NOT NULL
		)`,
		`CREATE TABLE products (
			product_id INT AUTO_INCREMENT PRIMARY KEY,
			sku VARCHAR(20) NOT NULL UNIQUE,
			product_name VARCHAR(200) NOT NULL,
			category VARCHAR(100) NOT NULL,
			supplier_id INT,
			unit_price DECIMAL(10,2) NOT NULL,
			pack_size INT NOT NULL,
			case_size INT NOT NULL,
			min_order_quantity INT NOT NULL,
			safety_stock INT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *Seeder) insertSuppliers(ctx context.Context) error {
	query := `INSERT INTO suppliers (supplier_name, supplier_code, lead_time_days) VALUES `
	var values []any
	for i := 1; i <= s.cfg.Suppliers; i++ {
		query += "(?, ?, ?),"
		values = append(values,
			fmt.Sprintf("%s Distribution %d", brandSuffixes[s.rng.Intn(len(brandSuffixes))], i),
			fmt.Sprintf("SUP%03d", i),
			1+s.rng.Intn(5),
		)
	}
	query = strings.TrimSuffix(query, ",")
	if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("insert suppliers: %w", err)
	}
	return nil
}

func (s *Seeder) insertWarehouses(ctx context.Context) ([]string, error) {
	query := `INSERT INTO warehouses (warehouse_name, warehouse_code, city, capacity) VALUES `
	var values []any
	codes := make([]string, 0, s.cfg.Warehouses)
	for i := 1; i <= s.cfg.Warehouses; i++ {
		city := cities[(i-1)%len(cities)]
		code := fmt.Sprintf("WH%02d", i)
		codes = append(codes, code)
		query += "(?, ?, ?, ?),"
		values = append(values, "Warehouse "+city, code, city, 10000+s.rng.Intn(40001))
	}
	query = strings.TrimSuffix(query, ",")
	if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
		return nil, fmt.Errorf("insert warehouses: %w", err)
	}
	return codes, nil
}

func (s *Seeder) insertProducts(ctx context.Context) ([]domain.Product, error) {
	packSizes := []int{1, 6, 12, 24}
	caseSizes := []int{6, 12, 24, 48}
	moqs := []int{1, 2, 5, 10}

	products := make([]domain.Product, 0, s.cfg.Products)
	query := `INSERT INTO products (sku, product_name, category, supplier_id, unit_price,
		pack_size, case_size, min_order_quantity, safety_stock) VALUES `
	var values []any
	for i := 1; i <= s.cfg.Products; i++ {
		category := categories[s.rng.Intn(len(categories))]
		names := namesByCategory[category]
		p := domain.Product{
			SKU:              fmt.Sprintf("SKU%05d", i),
			ProductName:      names[s.rng.Intn(len(names))] + " " + brandSuffixes[s.rng.Intn(len(brandSuffixes))],
			Category:         category,
			SupplierID:       1 + s.rng.Intn(s.cfg.Suppliers),
			UnitPrice:        decimal.NewFromFloat(0.5 + s.rng.Float64()*49.5).Round(2),
			PackSize:         packSizes[s.rng.Intn(len(packSizes))],
			CaseSize:         caseSizes[s.rng.Intn(len(caseSizes))],
			MinOrderQuantity: moqs[s.rng.Intn(len(moqs))],
			SafetyStock:      10 + s.rng.Intn(91),
		}
		products = append(products, p)
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?),"
		values = append(values, p.SKU, p.ProductName, p.Category, p.SupplierID,
			p.UnitPrice, p.PackSize, p.CaseSize, p.MinOrderQuantity, p.SafetyStock)
	}
	query = strings.TrimSuffix(query, ",")
	if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
		return nil, fmt.Errorf("insert products: %w", err)
	}
	return products, nil
}

// Operational writes per-store order extracts and per-warehouse stock
// snapshots for each seeded day, ending today.
func (s *Seeder) Operational(ctx context.Context, products []domain.Product, warehouses []string) error {
	base := time.Now()
	for offset := s.cfg.Days - 1; offset >= 0; offset-- {
		p := domain.NewPartition(base.AddDate(0, 0, -offset))

		for store := 1; store <= s.cfg.Stores; store++ {
			lines := s.storeOrders(p, store, products)
			path := filepath.Join(s.paths.RawOrders, p.String(), fmt.Sprintf("orders_store_%02d.csv", store))
			if err := artifact.WriteOrderLines(path, lines); err != nil {
				return fmt.Errorf("seed orders %s: %w", p, err)
			}
		}

		for _, code := range warehouses {
			snaps := s.warehouseSnapshot(p, code, products)
			path := filepath.Join(s.paths.RawStock, p.String(), fmt.Sprintf("stock_%s.csv", code))
			if err := artifact.WriteStockSnapshots(path, snaps); err != nil {
				return fmt.Errorf("seed stock %s: %w", p, err)
			}
		}

		s.log.Info().Str("date", p.String()).Msg("operational data seeded")
	}
	return nil
}

func (s *Seeder) storeOrders(p domain.Partition, store int, products []domain.Product) []domain.OrderLine {
	var lines []domain.OrderLine
	numOrders := 50 + s.rng.Intn(151)
	for n := 1; n <= numOrders; n++ {
		orderID := fmt.Sprintf("ORD-%s-S%02d-%04d", p, store, n)
		orderTime := fmt.Sprintf("%02d:%02d:%02d", 8+s.rng.Intn(14), s.rng.Intn(60), s.rng.Intn(60))
		numItems := 1 + s.rng.Intn(10)
		for i := 0; i < numItems; i++ {
			prod := products[s.rng.Intn(len(products))]
			lines = append(lines, domain.OrderLine{
				OrderID:     orderID,
				StoreID:     fmt.Sprintf("STORE%02d", store),
				OrderDate:   p,
				OrderTime:   orderTime,
				SKU:         prod.SKU,
				ProductName: prod.ProductName,
				Quantity:    1 + s.rng.Intn(5),
			})
		}
	}
	return lines
}

func (s *Seeder) warehouseSnapshot(p domain.Partition, code string, products []domain.Product) []domain.StockSnapshot {
	snaps := make([]domain.StockSnapshot, 0, len(products))
	for _, prod := range products {
		available := s.rng.Intn(501)
		reserved := 0
		if available > 0 {
			reserved = s.rng.Intn(available/5 + 1)
		}
		snaps = append(snaps, domain.StockSnapshot{
			WarehouseCode:     code,
			SKU:               prod.SKU,
			ProductName:       prod.ProductName,
			AvailableQuantity: available,
			ReservedQuantity:  reserved,
			SnapshotDate:      p,
			SnapshotTime:      "23:59:59",
		})
	}
	return snaps
}
