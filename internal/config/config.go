package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is loaded once in main and passed down by value; components never
// reach for process-wide state.
type Config struct {
	Paths    Paths    `yaml:"paths"`
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Pipeline Pipeline `yaml:"pipeline"`
	Seed     Seed     `yaml:"seed"`
}

type Paths struct {
	RawOrders      string `yaml:"raw_orders"`
	RawStock       string `yaml:"raw_stock"`
	Aggregated     string `yaml:"aggregated"`
	NetDemand      string `yaml:"net_demand"`
	SupplierOrders string `yaml:"supplier_orders"`
	Archive        string `yaml:"archive"`
	Exceptions     string `yaml:"exceptions"`
}

type Database struct {
	DSN string `yaml:"dsn"`
}

// Redis is optional; an empty address disables the run ledger.
type Redis struct {
	Addr string `yaml:"addr"`
}

// Kafka is optional; no brokers disables order dispatch.
type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Pipeline struct {
	// ExpectedStores is the store-extract count each order partition should hold.
	ExpectedStores int `yaml:"expected_stores"`
	// RequiredFiles must exist in each date's archive directory; "{date}"
	// expands to the partition key.
	RequiredFiles []string `yaml:"required_files"`
}

type Seed struct {
	Suppliers  int   `yaml:"suppliers"`
	Warehouses int   `yaml:"warehouses"`
	Products   int   `yaml:"products"`
	Stores     int   `yaml:"stores"`
	Days       int   `yaml:"days"`
	RNGSeed    int64 `yaml:"rng_seed"`
}

// Default returns the configuration used when a field is absent from the file.
func Default() Config {
	return Config{
		Paths: Paths{
			RawOrders:      "data/raw/orders",
			RawStock:       "data/raw/stock",
			Aggregated:     "data/processed/aggregated_orders",
			NetDemand:      "data/processed/net_demand",
			SupplierOrders: "data/output/supplier_orders",
			Archive:        "data/output/archives",
			Exceptions:     "data/logs/exceptions",
		},
		Database: Database{
			DSN: "root:root@tcp(localhost:3306)/procurement?parseTime=true",
		},
		Kafka: Kafka{
			Topic: "supplier-orders",
		},
		Pipeline: Pipeline{
			ExpectedStores: 5,
			RequiredFiles: []string{
				"aggregated_orders_{date}.csv",
				"net_demand_{date}.csv",
			},
		},
		Seed: Seed{
			Suppliers:  3,
			Warehouses: 3,
			Products:   100,
			Stores:     5,
			Days:       7,
			RNGSeed:    42,
		},
	}
}

// Load reads a YAML file over the defaults. A missing file returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
