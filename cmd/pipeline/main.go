package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/adapter/publish"
	"github.com/qleroy/procure/internal/adapter/storage"
	"github.com/qleroy/procure/internal/config"
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

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("pipeline run failed")
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	db, err := sql.Open("mysql", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mysql: %w", err)
	}
	logger.Info().Msg("connected to mysql")

	var ledger port.RunLedger
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, run ledger disabled")
		} else {
			ledger = storage.NewRedisLedger(rdb)
			logger.Info().Msg("connected to redis")
		}
	}

	var publisher port.OrderPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := publish.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		publisher = kp
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("order dispatch enabled")
	}

	catalog := storage.NewMySQLCatalog(db)
	store := storage.NewLocalStore()

	aggregator := service.NewOrderAggregator(cfg.Paths.RawOrders, cfg.Paths.Aggregated, logger)
	reconciler := service.NewStockReconciler(cfg.Paths.RawStock, logger)
	calculator := service.NewNetDemandCalculator(cfg.Paths.Aggregated, cfg.Paths.NetDemand, reconciler, logger)
	generator := service.NewSupplierOrderGenerator(cfg.Paths.NetDemand, cfg.Paths.SupplierOrders, publisher, logger)
	archiver := service.NewArchiver(cfg.Paths.Aggregated, cfg.Paths.NetDemand, cfg.Paths.SupplierOrders, cfg.Paths.Archive, store, logger)

	pipeline := service.NewPipeline(cfg.Paths.RawOrders, aggregator, calculator, generator, archiver, catalog, ledger, logger)

	summary, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Int("dates_processed", summary.DatesProcessed).
		Int("dates_skipped", summary.DatesSkipped).
		Int("dates_failed", summary.DatesFailed).
		Int("skus_ordered", summary.SKUsOrdered).
		Int("units_ordered", summary.UnitsOrdered).
		Int("orders_written", summary.OrdersWritten).
		Msg("pipeline complete")

	if summary.DatesFailed > 0 {
		return fmt.Errorf("%d date partitions failed", summary.DatesFailed)
	}
	return nil
}
