package db

import (
	"context"
	"fmt"
	"time"

	"github.com/scienceol/labinv/pkg/middleware/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type LogConf struct {
	Level         string
	SlowThreshold time.Duration
}

type Config struct {
	Driver  string
	Host    string
	Port    int
	User    string
	PW      string
	DBName  string
	SSLMode string
	MaxOpen int
	MaxIdle int
	LogConf LogConf
}

var ds *Datastore

func dialector(conf *Config) (gorm.Dialector, error) {
	switch conf.Driver {
	case DriverPostgres, "":
		sslMode := conf.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			conf.Host, conf.User, conf.PW, conf.DBName, conf.Port, sslMode)
		return postgres.Open(dsn), nil
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			conf.User, conf.PW, conf.Host, conf.Port, conf.DBName)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}
}

// Init opens the global datastore. It exits the process on failure.
func Init(ctx context.Context, conf *Config) {
	d, err := dialector(conf)
	if err != nil {
		logger.Fatalf(ctx, "init database err: %+v", err)
	}

	gdb, err := Open(d, conf.LogConf)
	if err != nil {
		logger.Fatalf(ctx, "open database err: %+v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Fatalf(ctx, "get sql db err: %+v", err)
	}
	if conf.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxOpen)
	}
	if conf.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(conf.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Fatalf(ctx, "ping database err: %+v", err)
	}

	ds = NewDatastore(gdb)
	logger.Infof(ctx, "database %s connected host: %s, db: %s", conf.Driver, conf.Host, conf.DBName)
}

// Open wraps gorm.Open with the service logger and tracing plugin.
func Open(d gorm.Dialector, conf LogConf) (*gorm.DB, error) {
	gdb, err := gorm.Open(d, &gorm.Config{
		Logger:                 newGormLogger(conf),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := gdb.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	return gdb, nil
}

func Close(ctx context.Context) {
	if ds == nil {
		return
	}
	if sqlDB, err := ds.DBIns().DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Errorf(ctx, "close database err: %+v", err)
		}
	}
	ds = nil
}

// DB returns the global datastore, nil before Init.
func DB() *Datastore {
	return ds
}
