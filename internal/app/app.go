package app

import (
	"database/sql"

	"go-attendance/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra holds the shared connections of one process.
type Infra struct {
	DB    *gorm.DB
	SQL   *sql.DB
	Redis *redis.Client
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.SQL != nil {
		_ = i.SQL.Close()
	}
}

func connectDB(cfg Config) (*gorm.DB, *sql.DB, error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
		cfg.ConnectRetries,
	)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	return gormDB, sqlDB, nil
}

// BuildApp connects the database and Redis, migrates the schema and mounts
// every route on router. The caller closes the returned Infra.
func BuildApp(router *gin.Engine, cfg Config, logger *zap.Logger) (*Infra, error) {
	if err := cfg.RequireAPI(); err != nil {
		return nil, err
	}

	gormDB, sqlDB, err := connectDB(cfg)
	if err != nil {
		return nil, err
	}
	infra := &Infra{DB: gormDB, SQL: sqlDB}
	logger.Info("database connection established")

	if err := Migrate(gormDB); err != nil {
		infra.Close()
		return nil, err
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.ConnectRetries)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Redis = rdb
	logger.Info("redis connection established")

	if err := registerModules(router, cfg, sqlDB, gormDB, rdb, logger); err != nil {
		infra.Close()
		return nil, err
	}
	return infra, nil
}
