package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/km-arc/go-lifespan/framework/config"
	"github.com/km-arc/go-lifespan/framework/lifespan"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrUnsupportedDriver is returned when DBConfig.Driver names a driver this
// package cannot open.
var ErrUnsupportedDriver = errors.New("providers: unsupported database driver")

// Database opens a gorm connection pool on setup and closes it on teardown.
//
// Supported drivers:
//   - "sqlite": pure-Go SQLite (github.com/glebarez/sqlite), DSN as accepted
//     by the driver, e.g. "file::memory:?cache=shared" or "file:app.db"
func Database(cfg config.DBConfig) lifespan.SetupFunc[*gorm.DB] {
	return func(ctx context.Context, _ lifespan.Deps) (*gorm.DB, lifespan.Teardown, error) {
		var dialector gorm.Dialector
		switch cfg.Driver {
		case "sqlite":
			dialector = sqlite.Open(cfg.DSN)
		default:
			return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
		}

		db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			return nil, nil, fmt.Errorf("providers: open %s database: %w", cfg.Driver, err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("providers: %s connection pool: %w", cfg.Driver, err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("providers: ping %s database: %w", cfg.Driver, err)
		}

		return db, func(context.Context) error { return sqlDB.Close() }, nil
	}
}
