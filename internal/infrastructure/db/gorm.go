package db

import (
	"time"

	"loan-marketplace/internal/infrastructure/logging"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool sizes the database/sql connection pool.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

func DefaultPool() Pool {
	return Pool{MaxOpen: 30, MaxIdle: 10, MaxLifetime: 30 * time.Minute, MaxIdleTime: 10 * time.Minute}
}

// OpenGorm connects to MySQL.
func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), DefaultPool())
}

// OpenSQLite opens a file-backed SQLite database. SQLite allows one writer, so
// the pool holds a single connection.
func OpenSQLite(path string) (*gorm.DB, error) {
	pool := DefaultPool()
	pool.MaxOpen, pool.MaxIdle = 1, 1
	return OpenGormWithDialector(sqlite.Open(path), pool)
}

// OpenGormWithDialector configures the pool and pings before returning.
// gorm's own log lines go to the global zap logger.
func OpenGormWithDialector(dial gorm.Dialector, pool Pool) (*gorm.DB, error) {
	log := logging.L().Named("gorm")
	cfg := &gorm.Config{
		Logger: logger.New(zap.NewStdLog(log.Logger), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.MaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Info("connected", zap.String("dialect", dial.Name()), zap.Int("max_open", pool.MaxOpen))
	return db, nil
}
