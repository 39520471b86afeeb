package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/config"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// getDatabase opens the relational database for the database backend.
// sqlite is meant for development and tests; Name is resolved against the workdir.
func getDatabase(cfg config.DBConfig, workdir string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		name := cfg.Name
		if name == "" {
			name = "yammi.db"
		}
		if name != ":memory:" && !filepath.IsAbs(name) {
			name = filepath.Join(workdir, "data", name)
		}
		if name != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
				return nil, errors.Wrap(err, "create sqlite dir")
			}
		}
		dialector = sqlite.Open(name)
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, time.Local.String())
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported database type: %s", cfg.Type)
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Type)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get database handle")
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.IdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}
