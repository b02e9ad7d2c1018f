package cache

import (
	"context"
	"fmt"
	"time"

	"nestquery-listings/pkg/logger"
	"nestquery-listings/pkg/metrics"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client
var registerPageKeyScript *redis.Script
var invalidatePageCacheScript *redis.Script

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func InitRedis(cfg *RedisConfig) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	_, err := RedisClient.Ping(ctx).Result()
	duration := time.Since(start).Seconds()
	metrics.RedisOperationDuration.WithLabelValues("ping").Observe(duration)
	if err != nil {
		metrics.RedisErrorsTotal.WithLabelValues("ping").Inc()
		logger.GlobalLogger.Errorf("failed to connect to Redis: %v", err)
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	registerPageKeyScript = redis.NewScript(`
		local page_key = ARGV[1]
		local page_json = ARGV[2]
		local expiration = tonumber(ARGV[3])
		redis.call('SET', page_key, page_json)
		redis.call('EXPIRE', page_key, expiration)
		redis.call('SADD', 'listings:page-keys', page_key)
		redis.call('EXPIRE', 'listings:page-keys', expiration)
		return 1
	`)

	invalidatePageCacheScript = redis.NewScript(`
		local page_keys = redis.call('SMEMBERS', 'listings:page-keys')
		if #page_keys > 0 then
			redis.call('DEL', unpack(page_keys))
		end
		redis.call('DEL', 'listings:page-keys')
		return 1
	`)

	logger.GlobalLogger.Println("Redis connected successfully")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.GlobalLogger.Errorf("Error closing Redis: %v", err)
		} else {
			logger.GlobalLogger.Println("Redis connection closed")
		}
	}
}
