package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ericogr/mtcg/internal/api"
	"github.com/ericogr/mtcg/internal/config"
	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/logging"
	"github.com/ericogr/mtcg/internal/service"
	"github.com/ericogr/mtcg/internal/version"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to read .env", err, nil)
	}

	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg := loadConfigOrExit(configPath)
	logging.SetDebug(cfg.Log.Debug)
	logging.Info("Starting mtcg", logging.Fields{"version": version.String(), "config_path": configPath})

	repo := createRepositoryOrExit(cfg.Database)

	rng, seed, err := service.NewRand(cfg.Battle.Seed)
	if err != nil {
		logging.Fatal("Failed to seed random source", err, nil)
	}
	logging.Info("Random source ready", logging.Fields{constants.LogFieldSeed: seed})

	battles := service.NewBattleService(repo, rng, service.BattleOptions{
		Archiver:     newArchiver(cfg.Archive),
		StoreTimeout: cfg.Battle.StoreTimeout,
		Templates:    cfg.Templates(),
	})

	sweeper, err := service.StartSweeper(battles, cfg.Battle.SweepInterval, cfg.Battle.AbandonedAfter)
	if err != nil {
		logging.Fatal("Failed to start battle sweeper", err, nil)
	}

	handler := api.NewHandler(api.HandlerOptions{
		Repo:    repo,
		Battles: battles,
		Rand:    rng,
		Economy: service.Economy{
			StartCoins:  cfg.Economy.StartCoins,
			StartElo:    cfg.Economy.StartElo,
			PackageCost: cfg.Economy.PackageCost,
			PackageSize: cfg.Economy.PackageSize,
		},
		Templates: cfg.Templates(),
		Sessions:  api.NewSessions(cfg.Server.SessionSecret, cfg.Server.SessionTTL),
		Driver:    cfg.Database.Driver,
	})

	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	handler.Register(router)

	serve(cfg.Server.Address, router, func() {
		if err := sweeper.Shutdown(); err != nil {
			logging.Error("sweeper shutdown failed", err, nil)
		}
	})
}
