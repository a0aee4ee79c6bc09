package app

import (
	"os"
	"time"

	"nia-hrms/internal/middleware"
	"nia-hrms/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func postgresConfigFromEnv() connection.PostgresConfig {
	return connection.PostgresConfig{
		Host:     os.Getenv("DB_HOST"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		Port:     os.Getenv("DB_PORT"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}
}

// BuildApp wires infrastructure, modules and routes onto the router.
func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	db, err := connection.ConnectGORM(postgresConfigFromEnv(), 30*time.Second)
	if err != nil {
		return err
	}

	rdb, err := connection.ConnectRedis(os.Getenv("REDIS_ADDR"), 30*time.Second)
	if err != nil {
		// Cache is an optimization; the API serves without it.
		logger.Warn("redis unavailable, running without cache", zap.Error(err))
		rdb = nil
	}

	router.Use(middleware.RequestID())

	return registerModules(router, db, rdb, zap.L())
}
