package main

import (
	"flag"
	"log"
	"log/slog"

	"github.com/amirasaad/ledger/infra"
	"github.com/amirasaad/ledger/pkg/config"
)

func main() {
	direction := flag.String("direction", string(infra.Up), "up or down")
	envFile := flag.String("env", "", "optional .env file")
	flag.Parse()

	var paths []string
	if *envFile != "" {
		paths = append(paths, *envFile)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		log.Fatalf("Failed to load application configuration: %v", err)
	}
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close() //nolint:errcheck
	}
	if err := infra.Migrate(db, infra.Direction(*direction), slog.Default()); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}
