package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nestquery-listings/pkg/logger"
	"nestquery-listings/pkg/metrics"
)

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	start := time.Now()
	data, err := json.Marshal(value)
	if err != nil {
		metrics.RedisErrorsTotal.WithLabelValues("set_marshal").Inc()
		logger.GlobalLogger.Errorf("failed to marshal value for key %s: %v", key, err)
		return fmt.Errorf("failed to marshal value: %v", err)
	}
	err = RedisClient.Set(ctx, key, data, expiration).Err()
	duration := time.Since(start).Seconds()
	metrics.RedisOperationDuration.WithLabelValues("set").Observe(duration)
	if err != nil {
		metrics.RedisErrorsTotal.WithLabelValues("set").Inc()
		logger.GlobalLogger.Errorf("failed to set key %s: %v", key, err)
		return err
	}
	return nil
}

func Get(ctx context.Context, key string, dest interface{}) error {
	start := time.Now()
	val, err := RedisClient.Get(ctx, key).Result()
	duration := time.Since(start).Seconds()
	metrics.RedisOperationDuration.WithLabelValues("get").Observe(duration)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		metrics.RedisErrorsTotal.WithLabelValues("get_unmarshal").Inc()
		logger.GlobalLogger.Errorf("failed to unmarshal value for key %s: %v", key, err)
		return fmt.Errorf("failed to unmarshal value: %v", err)
	}
	return nil
}

func Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := RedisClient.Del(ctx, key).Err()
	duration := time.Since(start).Seconds()
	metrics.RedisOperationDuration.WithLabelValues("delete").Observe(duration)
	if err != nil {
		metrics.RedisErrorsTotal.WithLabelValues("delete").Inc()
		logger.GlobalLogger.Errorf("failed to delete key %s: %v", key, err)
		return err
	}
	return nil
}

// SetPage stores a serialized listing page and registers its key in the
// page-key set so a mutation can drop every cached page at once.
func SetPage(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		metrics.RedisErrorsTotal.WithLabelValues("set_page_marshal").Inc()
		return fmt.Errorf("failed to marshal value: %v", err)
	}
	start := time.Now()
	err = registerPageKeyScript.Run(ctx, RedisClient, nil, key, string(data), int(expiration.Seconds())).Err()
	metrics.RedisOperationDuration.WithLabelValues("set_page").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RedisErrorsTotal.WithLabelValues("set_page").Inc()
		logger.GlobalLogger.Errorf("failed to set page key %s: %v", key, err)
		return err
	}
	return nil
}

// InvalidatePages drops every cached listing page. Called after any listing
// create, update or delete since totals and page boundaries shift.
func InvalidatePages(ctx context.Context) error {
	start := time.Now()
	err := invalidatePageCacheScript.Run(ctx, RedisClient, nil).Err()
	metrics.RedisOperationDuration.WithLabelValues("invalidate_pages").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RedisErrorsTotal.WithLabelValues("invalidate_pages").Inc()
		logger.GlobalLogger.Errorf("failed to invalidate page cache: %v", err)
		return err
	}
	return nil
}
