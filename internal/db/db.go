// Package db opens the store, applies the schema and seeds demo data.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-chantiers/internal/config"
	"github.com/diewo77/go-chantiers/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const connectAttempts = 10

// requiredTables must exist once the schema is applied.
var requiredTables = []string{"companies", "users", "chantiers", "materiels", "rapports"}

// Connect opens the configured store, retrying while Postgres starts up.
func Connect(cfg config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	if cfg.UsesSQLite() {
		log.WithField("path", cfg.Path).Info("using sqlite store")
		return gorm.Open(sqlite.Open(sqliteDSN(cfg.Path)), gcfg)
	}

	dsn := NormalizeDSN(cfg.URL)
	log.WithField("dsn", MaskDSN(dsn)).Info("connecting to postgres")
	var (
		conn *gorm.DB
		err  error
	)
	for i := 1; i <= connectAttempts; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			err = Ping(context.Background(), conn)
		}
		if err == nil {
			return conn, nil
		}
		log.WithError(err).WithField("attempt", i).Warn("database not ready, retrying")
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
}

// sqliteDSN turns on foreign keys, which sqlite leaves off by default.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// Ping runs a trivial query.
func Ping(ctx context.Context, conn *gorm.DB) error {
	return conn.WithContext(ctx).Exec("SELECT 1").Error
}

// Migrate applies the schema. SQL migrations run when enabled and the store is
// Postgres; otherwise gorm AutoMigrate creates or updates the tables.
func Migrate(conn *gorm.DB, cfg config.DatabaseConfig) error {
	if cfg.Migrations && !cfg.UsesSQLite() {
		if err := runSQLMigrations(ToURLDSN(NormalizeDSN(cfg.URL))); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
	} else if err := AutoMigrate(conn); err != nil {
		return err
	}
	for _, table := range requiredTables {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// AutoMigrate creates or updates every model table.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func runSQLMigrations(dsn string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
