package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericogr/mtcg/internal/archive"
	"github.com/ericogr/mtcg/internal/config"
	"github.com/ericogr/mtcg/internal/logging"
	"github.com/ericogr/mtcg/internal/service"
	"github.com/ericogr/mtcg/internal/storage"
)

func loadConfigOrExit(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logging.Fatal("Missing or invalid mtcg configuration", err, logging.Fields{
			"config_path": path,
			"hint":        "create a mtcg.yaml with server.session_secret and a 'cards' list (name,kind,element,damage)",
		})
	}
	return cfg
}

func createRepositoryOrExit(cfg config.DatabaseConfig) storage.Repository {
	if cfg.Driver == storage.DriverSQLite && !strings.HasPrefix(cfg.DSN, ":memory:") && !strings.HasPrefix(cfg.DSN, "file:") {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			logging.Fatal("Failed to create database directory", err, logging.Fields{"dsn": cfg.DSN})
		}
	}
	db, err := storage.OpenAndMigrate(cfg.Driver, cfg.DSN)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"driver": cfg.Driver})
	}
	return storage.NewRepository(db)
}

// newArchiver returns nil when no bucket is configured.
func newArchiver(cfg config.ArchiveConfig) service.Archiver {
	if cfg.Bucket == "" {
		return nil
	}
	a, err := archive.NewS3Archiver(context.Background(), cfg)
	if err != nil {
		logging.Fatal("Failed to configure battle archive", err, logging.Fields{"bucket": cfg.Bucket})
	}
	logging.Info("Battle archive enabled", logging.Fields{"bucket": cfg.Bucket, "prefix": cfg.Prefix})
	return a
}
