package main

import (
	"context"
	"database/sql"
	"flag"
	"math/rand"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"github.com/qleroy/procure/internal/config"
	"github.com/qleroy/procure/internal/seed"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}

	ctx := context.Background()
	db, err := sql.Open("mysql", cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("open mysql")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping mysql")
	}

	rng := rand.New(rand.NewSource(cfg.Seed.RNGSeed))
	seeder := seed.New(db, cfg.Seed, cfg.Paths, rng, logger)

	products, warehouses, err := seeder.Master(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed master data")
	}
	if err := seeder.Operational(ctx, products, warehouses); err != nil {
		logger.Fatal().Err(err).Msg("seed operational data")
	}
	logger.Info().Msg("seeding complete")
}
