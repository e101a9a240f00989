package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/adampdxdotcom/subfloor-sub002/internal/config"
	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&models.Installer{},
		&models.Project{},
		&models.Quote{},
		&models.ChangeOrder{},
		&models.Job{},
		&models.Appointment{},
	}
}

var requiredTables = []string{"projects", "quotes", "change_orders", "jobs", "appointments"}

// GormConfig returns the GORM config; DB_DEBUG turns on SQL logging.
func GormConfig(debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}

// Connect opens the Postgres connection, retrying while the database starts up.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DSN())
	if dsn == "" {
		return nil, errors.New("empty database dsn")
	}
	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	var db *gorm.DB
	var err error
	for i := 0; i < retries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), GormConfig(cfg.Debug))
		if err == nil {
			break
		}
		log.Warn("retrying database connection", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	log.Info("database connected", zap.String("dsn", MaskDSN(dsn)))
	return db, nil
}

// Migrate brings the schema up to date. With MIGRATIONS enabled it applies the SQL
// files through golang-migrate; otherwise it falls back to AutoMigrate.
func Migrate(db *gorm.DB, cfg config.Config) error {
	if cfg.App.Migrations {
		if err := RunSQLMigrations(ToURLDSN(NormalizeDSN(cfg.Database.URL())), cfg.App.MigrationsDir); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := AutoMigrate(db); err != nil {
		return err
	}
	return CheckTables(db)
}

// AutoMigrate creates or updates every model table.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// CheckTables makes sure the core tables exist after migration.
func CheckTables(db *gorm.DB) error {
	for _, table := range requiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations executes the migrations in dir using the golang-migrate file source.
func RunSQLMigrations(url, dir string) error {
	m, err := migrate.New("file://"+dir, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
