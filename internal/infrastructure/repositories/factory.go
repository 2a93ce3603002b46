package repositories

import (
	"context"

	"github.com/hansubae/Ghighlights/internal/core/ports"
	"github.com/hansubae/Ghighlights/internal/infrastructure/repositories/memory"
	redisrepo "github.com/hansubae/Ghighlights/internal/infrastructure/repositories/redis"
	"github.com/hansubae/Ghighlights/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	cfg         *config.Config
	logger      *zap.SugaredLogger

	memoryLedger *memory.MemoryViewLedger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		cfg:      cfg,
		logger:   logger,
	}

	// Try to connect to Redis if enabled
	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

// CreateClipRepository creates a clip repository (Redis or memory with fallback)
func (f *RepositoryFactory) CreateClipRepository() ports.ClipRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisClipRepository(f.redisClient)
	}
	return memory.NewMemoryClipRepository()
}

// CreateViewLedger creates the view ledger. The Redis ledger is the
// hardened variant (atomic insert-if-absent); the memory ledger keeps
// the original best-effort check-then-act behavior and needs pruning.
func (f *RepositoryFactory) CreateViewLedger() ports.ViewLedger {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisViewLedger(f.redisClient, f.cfg.Views.Window)
	}
	if f.memoryLedger == nil {
		f.memoryLedger = memory.NewMemoryViewLedger(f.cfg.Views.Window)
	}
	return f.memoryLedger
}

// StartHousekeeping launches the ledger pruning loop for the memory
// backend. Redis keys expire on their own.
func (f *RepositoryFactory) StartHousekeeping(ctx context.Context) {
	if f.memoryLedger != nil {
		f.memoryLedger.StartPruning(ctx, f.cfg.Views.PruneInterval)
	}
}

// RedisClient exposes the shared client for components that speak Redis
// directly (the cross-instance event relay). Nil when running on memory.
func (f *RepositoryFactory) RedisClient() *redis.Client {
	if f.useRedis {
		return f.redisClient
	}
	return nil
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
