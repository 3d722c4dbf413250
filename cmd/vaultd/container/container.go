package container

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vaultbin/vaultbin/cmd/vaultd/repository"
	"github.com/vaultbin/vaultbin/cmd/vaultd/service"
	"github.com/vaultbin/vaultbin/common/bootstrap"
	"github.com/vaultbin/vaultbin/common/chunker"
	"github.com/vaultbin/vaultbin/common/ratelimit"
	rediscommon "github.com/vaultbin/vaultbin/common/redis"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components
	Redis      *rediscommon.Client

	// Repositories
	ContentRepo    *repository.ContentRepository
	EntryRepo      *repository.EntryRepository
	CollectionRepo *repository.CollectionRepository

	// Services
	ContentService    *service.ContentService
	EntryService      *service.EntryService
	CollectionService *service.CollectionService
	ReclaimService    *service.ReclaimService

	// RateLimiter is nil when rate limiting is disabled
	RateLimiter *ratelimit.RateLimiter
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Redis backs the rate limiter and, optionally, the content cache. Only
	// connect when something needs it.
	var redisClient *rediscommon.Client
	if cfg.RateLimit.Enabled || (cfg.Cache.Enabled && cfg.Cache.Backend == "redis") {
		raw := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisClient = rediscommon.NewClient(raw, components.Logger)
		components.AddCleanup(redisClient.Close)
	}

	// The memory cache is built by bootstrap; the redis cache needs the
	// client above, so it is wired here.
	if cfg.Cache.Enabled && cfg.Cache.Backend == "redis" {
		if redisClient == nil {
			return nil, fmt.Errorf("redis cache backend requires a redis client")
		}
		components.Cache = rediscommon.NewCache(redisClient, "cache:")
	}

	// Initialize repositories
	contentRepo := repository.NewContentRepository(components.DB)
	entryRepo := repository.NewEntryRepository(components.DB)
	collectionRepo := repository.NewCollectionRepository(components.DB)

	// Initialize services (bottom-up: dependencies first)
	contentService := service.NewContentService(
		contentRepo,
		chunker.New(cfg.Storage.BlockSize),
		components.Cache,
		cfg.Cache.DefaultTTL,
		cfg.Cache.MaxItemBytes,
		components.Logger,
	)
	entryService := service.NewEntryService(entryRepo, contentService, components.Logger)
	collectionService := service.NewCollectionService(collectionRepo, components.Logger)
	reclaimService := service.NewReclaimService(
		contentRepo,
		contentService,
		cfg.Storage.ReclaimBatchSize,
		components.Logger,
	)

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(redisClient.GetUnderlying(), components.Logger)
	}

	return &Container{
		Components:        components,
		Redis:             redisClient,
		ContentRepo:       contentRepo,
		EntryRepo:         entryRepo,
		CollectionRepo:    collectionRepo,
		ContentService:    contentService,
		EntryService:      entryService,
		CollectionService: collectionService,
		ReclaimService:    reclaimService,
		RateLimiter:       rateLimiter,
	}, nil
}
