package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/logging"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite, "":
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// OpenAndMigrate opens the database, migrates the schema and makes sure the
// system opponent account exists.
func OpenAndMigrate(driver, dsn string) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if db.Dialector.Name() == DriverSQLite {
		// a single connection keeps :memory: databases alive and avoids
		// SQLITE_BUSY between writers
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(&game.User{}, &game.Card{}, &game.DeckCard{}, &game.PowerUp{}, &game.Battle{}, &game.LogEntry{})
	if err != nil {
		return nil, err
	}

	repo := NewRepository(db)
	if err := repo.EnsureSystemUser(context.Background(), game.AIOpponent); err != nil {
		return nil, err
	}
	logging.Info("database ready", logging.Fields{"driver": db.Dialector.Name()})
	return db, nil
}
