// Package cache provides the idempotency stores the ERP import uses to skip
// records it has already applied.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Idempotency store backends accepted by erp.idempotency_backend
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// IdempotencyStoreFactory creates idempotency stores based on configuration
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	memoryOpts            []MemoryOption
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Default is false.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithMemorySweep sets how often in-memory stores created by the factory
// purge expired keys
func WithMemorySweep(d time.Duration) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.memoryOpts = append(f.memoryOpts, WithCleanupInterval(d))
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the store for backend ("memory" or "redis")
func (f *IdempotencyStoreFactory) Create(ctx context.Context, backend string) (shared.IdempotencyStore, error) {
	switch backend {
	case "", BackendMemory:
		f.logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(f.memoryOpts...), nil
	case BackendRedis:
		return f.createRedis(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown idempotency backend %q", shared.ErrInvalidInput, backend)
	}
}

func (f *IdempotencyStoreFactory) createRedis(ctx context.Context) (shared.IdempotencyStore, error) {
	store, err := NewRedisIdempotencyStore(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
		"Imports running on other instances will not share processed keys.",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(f.memoryOpts...), nil
}
