package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/artifact"
	"github.com/qleroy/procure/internal/adapter/storage"
	"github.com/qleroy/procure/internal/config"
	"github.com/qleroy/procure/internal/core/domain"
	"github.com/qleroy/procure/internal/core/service"
	"github.com/qleroy/procure/internal/port"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}

	report, err := run(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("exception pass failed")
	}

	printSummary(os.Stdout, report)

	switch {
	case report.HasErrors():
		fmt.Fprintln(os.Stdout, "critical exceptions detected")
		os.Exit(1)
	case report.TotalExceptions > 0:
		fmt.Fprintln(os.Stdout, "warnings detected, pipeline output usable")
	default:
		fmt.Fprintln(os.Stdout, "no exceptions detected, pipeline healthy")
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*domain.ExceptionReport, error) {
	// The audit degrades to filesystem-only checks when the catalog is down;
	// it never refuses to run.
	var catalog port.Catalog
	db, err := sql.Open("mysql", cfg.Database.DSN)
	if err == nil {
		if pingErr := db.PingContext(ctx); pingErr != nil {
			logger.Warn().Err(pingErr).Msg("catalog unreachable, referential checks will be skipped")
			db.Close()
		} else {
			defer db.Close()
			catalog = storage.NewMySQLCatalog(db)
		}
	} else {
		logger.Warn().Err(err).Msg("catalog unreachable, referential checks will be skipped")
	}

	detector := service.NewExceptionDetector(service.DetectorConfig{
		OrdersRoot:         cfg.Paths.RawOrders,
		StockRoot:          cfg.Paths.RawStock,
		AggregateRoot:      cfg.Paths.Aggregated,
		NetDemandRoot:      cfg.Paths.NetDemand,
		SupplierOrdersRoot: cfg.Paths.SupplierOrders,
		ArchiveRoot:        cfg.Paths.Archive,
		ExpectedStores:     cfg.Pipeline.ExpectedStores,
		RequiredFiles:      cfg.Pipeline.RequiredFiles,
	}, catalog, storage.NewLocalStore(), logger)

	report, err := detector.Run(ctx)
	if err != nil {
		return nil, err
	}

	path := artifact.ReportPath(cfg.Paths.Exceptions, domain.NewPartition(time.Now()))
	if err := artifact.WriteExceptionReport(path, report); err != nil {
		return nil, err
	}
	logger.Info().Str("path", path).Msg("exception report written")
	return report, nil
}

func printSummary(w io.Writer, r *domain.ExceptionReport) {
	fmt.Fprintf(w, "exception report %s (%s)\n", r.PipelineDate, r.RunID)
	fmt.Fprintf(w, "total exceptions: %d (errors: %d, warnings: %d)\n",
		r.TotalExceptions, r.BySeverity[domain.SeverityError], r.BySeverity[domain.SeverityWarning])

	if len(r.ByType) > 0 {
		fmt.Fprintln(w, "by type:")
		for _, t := range []string{
			domain.ExcMissingFiles, domain.ExcAbnormalDemand, domain.ExcMissingSupplierMapping,
			domain.ExcUnknownSKU, domain.ExcMissingStockSnapshot, domain.ExcMissingArtifact,
			domain.ExcEmptyArtifact, domain.ExcMissingFile,
		} {
			if count, ok := r.ByType[t]; ok {
				fmt.Fprintf(w, "  %s: %d\n", t, count)
			}
		}
	}

	if len(r.Exceptions) > 0 {
		fmt.Fprintln(w, "most recent:")
		start := len(r.Exceptions) - 5
		if start < 0 {
			start = 0
		}
		for _, rec := range r.Exceptions[start:] {
			fmt.Fprintf(w, "  [%s] %s %s: %s\n", rec.Severity, rec.Date, rec.Type, rec.Message)
		}
	}
}
