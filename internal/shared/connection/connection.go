package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresConfig struct {
	Host     string
	User     string
	Password string
	DBName   string
	Port     string
	SSLMode  string
}

func (c PostgresConfig) dsn() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode,
	)
}

// ConnectGORM opens the primary database with exponential backoff. The
// returned handle has the pool configured for request-per-operation load.
func ConnectGORM(cfg PostgresConfig, maxElapsed time.Duration) (*gorm.DB, error) {
	var db *gorm.DB

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed

	operation := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.dsn()), &gorm.Config{})
		if err != nil {
			zap.L().Warn("gorm open failed, retrying", zap.Error(err))
			return err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.Ping(); err != nil {
			zap.L().Warn("db ping failed, retrying", zap.Error(err))
			return err
		}

		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	zap.L().Info("connected to database", zap.String("host", cfg.Host), zap.String("db", cfg.DBName))
	return db, nil
}

// ConnectRedis pings the cache with backoff before handing out the client.
func ConnectRedis(addr string, maxElapsed time.Duration) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed

	operation := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zap.L().Warn("redis ping failed, retrying", zap.Error(err))
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	zap.L().Info("connected to redis", zap.String("addr", addr))
	return rdb, nil
}

// ConnectKafka verifies the broker is reachable before returning a writer.
// The writer itself dials lazily per batch.
func ConnectKafka(broker string, maxElapsed time.Duration) (*kafkago.Writer, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed

	operation := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		conn, err := kafkago.DialContext(ctx, "tcp", broker)
		if err != nil {
			zap.L().Warn("kafka dial failed, retrying", zap.Error(err))
			return err
		}
		return conn.Close()
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("kafka connection failed: %w", err)
	}

	zap.L().Info("connected to kafka", zap.String("broker", broker))
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(broker),
		Balancer:               &kafkago.LeastBytes{},
		AllowAutoTopicCreation: true,
	}, nil
}
