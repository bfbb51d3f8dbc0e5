package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/core/domain"
	"github.com/qleroy/procure/internal/port"
)

// DetectorConfig carries the paths and expectations of one audit pass.
type DetectorConfig struct {
	OrdersRoot         string
	StockRoot          string
	AggregateRoot      string
	NetDemandRoot      string
	SupplierOrdersRoot string
	ArchiveRoot        string

	// ExpectedStores is the store-extract count each order partition must hold.
	ExpectedStores int

	// RequiredFiles are file names that must exist in each date's archive
	// directory; the literal "{date}" expands to the partition key.
	RequiredFiles []string
}

// ExceptionDetector audits the partitioned artifacts and the master catalog.
// Its checks are independent and non-short-circuiting: a check that cannot
// run is logged and skipped, never aborts the pass.
type ExceptionDetector struct {
	cfg     DetectorConfig
	catalog port.Catalog // may be nil when the catalog is unreachable
	store   port.FileStore
	log     zerolog.Logger
	now     func() time.Time
}

func NewExceptionDetector(cfg DetectorConfig, catalog port.Catalog, store port.FileStore, log zerolog.Logger) *ExceptionDetector {
	return &ExceptionDetector{
		cfg:     cfg,
		catalog: catalog,
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

// Run executes every check over all order partitions and returns the
// structured report. Records are appended in check order, then partition
// order; severities are fixed per occurrence regardless of counts.
func (d *ExceptionDetector) Run(ctx context.Context) (*domain.ExceptionReport, error) {
	parts, err := artifact.ListPartitions(d.cfg.OrdersRoot)
	if err != nil {
		return nil, fmt.Errorf("exception pass: %w", err)
	}

	var records []domain.ExceptionRecord
	records = append(records, d.checkCompleteness(parts)...)
	records = append(records, d.checkAbnormalDemand(parts)...)
	records = append(records, d.checkReferential(ctx, parts)...)
	records = append(records, d.checkStockConsistency(parts)...)
	records = append(records, d.checkArtifacts(parts)...)
	records = append(records, d.checkRequiredFiles(ctx, parts)...)

	runDate := domain.NewPartition(d.now())
	return domain.NewExceptionReport(uuid.NewString(), d.now(), runDate, records), nil
}

// checkCompleteness flags partitions holding fewer store extracts than
// expected.
func (d *ExceptionDetector) checkCompleteness(parts []domain.Partition) []domain.ExceptionRecord {
	var records []domain.ExceptionRecord
	for _, p := range parts {
		count, err := artifact.CountExtracts(filepath.Join(d.cfg.OrdersRoot, p.String()))
		if err != nil {
			d.log.Warn().Err(err).Str("date", p.String()).Msg("completeness check skipped")
			continue
		}
		if count < d.cfg.ExpectedStores {
			records = append(records, domain.ExceptionRecord{
				Date:     p.String(),
				Type:     domain.ExcMissingFiles,
				Severity: domain.SeverityWarning,
				Count:    count,
				Message:  fmt.Sprintf("only %d/%d store files found", count, d.cfg.ExpectedStores),
			})
		}
	}
	return records
}

// checkAbnormalDemand pools order quantities across every examined partition
// and flags rows above mean + 3 standard deviations. The threshold is global
// for the run: one unusually large day raises the bar for all days.
func (d *ExceptionDetector) checkAbnormalDemand(parts []domain.Partition) []domain.ExceptionRecord {
	type dated struct {
		date domain.Partition
		rows []domain.NetDemandRow
	}

	var all []dated
	var quantities []int
	for _, p := range parts {
		path := artifact.NetDemandPath(d.cfg.NetDemandRoot, p)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		rows, err := artifact.ReadNetDemand(path)
		if err != nil {
			d.log.Warn().Err(err).Str("date", p.String()).Msg("anomaly check skipped for date")
			continue
		}
		all = append(all, dated{date: p, rows: rows})
		for _, row := range rows {
			quantities = append(quantities, row.OrderQuantity)
		}
	}
	if len(quantities) == 0 {
		return nil
	}

	mean, stddev := meanStddev(quantities)
	threshold := mean + 3*stddev

	var records []domain.ExceptionRecord
	for _, day := range all {
		for _, row := range day.rows {
			if float64(row.OrderQuantity) > threshold {
				records = append(records, domain.ExceptionRecord{
					Date:     day.date.String(),
					Type:     domain.ExcAbnormalDemand,
					Severity: domain.SeverityWarning,
					SKU:      row.SKU,
					Quantity: row.OrderQuantity,
					Message:  fmt.Sprintf("abnormal order quantity: %d units (threshold: %d)", row.OrderQuantity, int(threshold)),
				})
			}
		}
	}
	return records
}

// checkReferential audits the catalog side of the joins: products without a
// supplier assignment, and aggregated SKUs with no catalog record at all (the
// rows the calculator drops from the actionable set).
func (d *ExceptionDetector) checkReferential(ctx context.Context, parts []domain.Partition) []domain.ExceptionRecord {
	if d.catalog == nil {
		d.log.Warn().Msg("catalog unavailable, referential check skipped")
		return nil
	}

	var records []domain.ExceptionRecord

	missing, err := d.catalog.CountMissingSupplier(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("supplier mapping check skipped")
	} else if missing > 0 {
		records = append(records, domain.ExceptionRecord{
			Date:     domain.NewPartition(d.now()).String(),
			Type:     domain.ExcMissingSupplierMapping,
			Severity: domain.SeverityError,
			Count:    missing,
			Message:  fmt.Sprintf("%d products without supplier mapping", missing),
		})
	}

	products, err := d.catalog.Products(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("unknown SKU check skipped")
		return records
	}
	for _, p := range parts {
		path := artifact.AggregatePath(d.cfg.AggregateRoot, p)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		agg, err := artifact.ReadAggregate(path)
		if err != nil {
			d.log.Warn().Err(err).Str("date", p.String()).Msg("unknown SKU check skipped for date")
			continue
		}
		for _, row := range agg {
			if _, ok := products[row.SKU]; !ok {
				records = append(records, domain.ExceptionRecord{
					Date:     p.String(),
					Type:     domain.ExcUnknownSKU,
					Severity: domain.SeverityWarning,
					SKU:      row.SKU,
					Message:  fmt.Sprintf("sku %s not present in product catalog", row.SKU),
				})
			}
		}
	}
	return records
}

// checkStockConsistency requires a stock partition for every order partition.
func (d *ExceptionDetector) checkStockConsistency(parts []domain.Partition) []domain.ExceptionRecord {
	var records []domain.ExceptionRecord
	for _, p := range parts {
		if _, err := os.Stat(filepath.Join(d.cfg.StockRoot, p.String())); os.IsNotExist(err) {
			records = append(records, domain.ExceptionRecord{
				Date:     p.String(),
				Type:     domain.ExcMissingStockSnapshot,
				Severity: domain.SeverityError,
				Message:  fmt.Sprintf("stock snapshot missing for %s", p),
			})
		}
	}
	return records
}

// checkArtifacts requires the downstream artifacts of every partition: the
// aggregate file, and the per-supplier order directory whenever the date's
// net-demand artifact holds actionable rows (zero rows legitimately produce
// zero order files).
func (d *ExceptionDetector) checkArtifacts(parts []domain.Partition) []domain.ExceptionRecord {
	var records []domain.ExceptionRecord
	for _, p := range parts {
		aggPath := artifact.AggregatePath(d.cfg.AggregateRoot, p)
		if _, err := os.Stat(aggPath); os.IsNotExist(err) {
			records = append(records, domain.ExceptionRecord{
				Date:     p.String(),
				Type:     domain.ExcMissingArtifact,
				Severity: domain.SeverityError,
				Message:  fmt.Sprintf("aggregate artifact missing: %s", filepath.Base(aggPath)),
			})
		} else if agg, err := artifact.ReadAggregate(aggPath); err == nil && len(agg) == 0 {
			records = append(records, domain.ExceptionRecord{
				Date:     p.String(),
				Type:     domain.ExcEmptyArtifact,
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("aggregate artifact empty: %s", filepath.Base(aggPath)),
			})
		}

		demandPath := artifact.NetDemandPath(d.cfg.NetDemandRoot, p)
		rows, err := readNetDemandIfPresent(demandPath)
		if err != nil {
			d.log.Warn().Err(err).Str("date", p.String()).Msg("artifact check skipped for date")
			continue
		}
		if len(rows) == 0 {
			continue
		}
		orderDir := filepath.Join(d.cfg.SupplierOrdersRoot, p.String())
		entries, err := os.ReadDir(orderDir)
		switch {
		case os.IsNotExist(err):
			records = append(records, domain.ExceptionRecord{
				Date:     p.String(),
				Type:     domain.ExcMissingArtifact,
				Severity: domain.SeverityError,
				Message:  fmt.Sprintf("supplier order directory missing for %s", p),
			})
		case err == nil && len(entries) == 0:
			records = append(records, domain.ExceptionRecord{
				Date:     p.String(),
				Type:     domain.ExcEmptyArtifact,
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("supplier order directory empty for %s", p),
			})
		}
	}
	return records
}

// checkRequiredFiles requires the configured file names in each date's
// archive directory, through the storage-transfer capability.
func (d *ExceptionDetector) checkRequiredFiles(ctx context.Context, parts []domain.Partition) []domain.ExceptionRecord {
	if len(d.cfg.RequiredFiles) == 0 {
		return nil
	}

	var records []domain.ExceptionRecord
	for _, p := range parts {
		for _, tmpl := range d.cfg.RequiredFiles {
			name := strings.ReplaceAll(tmpl, "{date}", p.String())
			path := filepath.Join(d.cfg.ArchiveRoot, p.String(), name)
			ok, err := d.store.Exists(ctx, path)
			if err != nil {
				d.log.Warn().Err(err).Str("path", path).Msg("required file check skipped")
				continue
			}
			if !ok {
				records = append(records, domain.ExceptionRecord{
					Date:     p.String(),
					Type:     domain.ExcMissingFile,
					Severity: domain.SeverityError,
					Message:  fmt.Sprintf("required file missing from archive: %s", name),
				})
			}
		}
	}
	return records
}

func readNetDemandIfPresent(path string) ([]domain.NetDemandRow, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return artifact.ReadNetDemand(path)
}

// meanStddev returns the mean and population standard deviation.
func meanStddev(values []int) (mean, stddev float64) {
	sum := 0
	for _, v := range values {
		sum += v
	}
	mean = float64(sum) / float64(len(values))

	var variance float64
	for _, v := range values {
		diff := float64(v) - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
