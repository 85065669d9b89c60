package database

import (
	"fmt"
	"log/slog"
	"time"

	commonsdb "github.com/JorgeSaicoski/microservice-commons/database"
	"github.com/JorgeSaicoski/pgconnect"
	"github.com/JorgeSaicoski/timekeeper/internal/config"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured store. Postgres goes through the shared
// connection manager and its retry loop; that manager only speaks postgres,
// so sqlite is opened here.
func Connect(cfg config.DatabaseConfig) (*pgconnect.DB, error) {
	switch cfg.Driver {
	case "postgres":
		conn, err := commonsdb.ConnectWithConfig(cfg.Commons())
		if err != nil {
			return nil, err
		}
		Configure(conn, NewGormLogger(nil))
		slog.Info("database connected", "driver", cfg.Driver)
		return conn, nil
	case "sqlite":
		conn, err := Open(sqlite.Open(cfg.Path))
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer; one connection keeps command
		// transactions strictly serialised.
		sqlDB, err := conn.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		slog.Info("database connected", "driver", cfg.Driver)
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open wraps gorm.Open for dialectors the connection manager does not cover.
func Open(dialector gorm.Dialector) (*pgconnect.DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn := &pgconnect.DB{DB: gdb}
	Configure(conn, NewGormLogger(nil))
	return conn, nil
}

// Configure applies the settings every handle shares, whoever opened it.
// Driver errors are translated so unique violations surface as
// gorm.ErrDuplicatedKey.
func Configure(conn *pgconnect.DB, log logger.Interface) {
	conn.Config.TranslateError = true
	conn.Config.Logger = log
}

// NewGormLogger reports slow queries and failures to w. Misses on First are
// expected on every start of an absent timer and are not logged. A nil w
// writes through the default slog logger.
func NewGormLogger(w logger.Writer) logger.Interface {
	if w == nil {
		w = slog.NewLogLogger(slog.Default().With(slog.String("layer", "gorm")).Handler(), slog.LevelWarn)
	}
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate auto-migrates models. The shared migrator's extra indexes target
// another schema, so they are switched off.
func Migrate(conn *pgconnect.DB, models ...any) error {
	migrator := commonsdb.NewMigrator(conn, commonsdb.MigrationOptions{
		CreateIndexes: false,
		Verbose:       false,
	})
	return migrator.AddModels(models...).Migrate()
}
