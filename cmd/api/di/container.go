package di

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rating-user-service/cmd/api/infrastructure"
	"rating-user-service/internal/adapter/cache"
	"rating-user-service/internal/adapter/db/postgres"
	ginhandler "rating-user-service/internal/adapter/gin/handler"
	grpcadapter "rating-user-service/internal/adapter/grpc"
	"rating-user-service/internal/adapter/grpc/middleware"
	"rating-user-service/internal/adapter/openai"
	"rating-user-service/internal/adapter/repository/cached"
	"rating-user-service/internal/config"
	"rating-user-service/internal/usecase/joke"
	"rating-user-service/internal/usecase/user"
	redisclient "rating-user-service/pkg/redis"
)

// healthInterval is how often the gRPC health service re-checks the database.
const healthInterval = 10 * time.Second

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	SQLDB       *sql.DB
	RedisClient *redisclient.Client // nil when Redis is disabled
	UserUC      user.Usecase
	JokeUC      joke.Usecase
	RateLimiter *middleware.RateLimiter // nil when rate limiting is disabled
	UserHandler *ginhandler.UserHandler
	RootHandler *ginhandler.RootHandler
	Health      *grpcadapter.HealthReporter
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	var listCache cache.UserListCache
	var rateLimiter *middleware.RateLimiter
	if rdb != nil {
		listCache = cache.NewRedisUserListCache(rdb.Client, cfg.Redis.CacheTTL, l)
		if cfg.RateLimiter.Enabled {
			rateLimiter = middleware.NewRateLimiter(rdb.Client, middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimiter.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimiter.BurstCapacity,
				Enabled:           true,
			}, l)
		}
	}

	repo := cached.NewCachedUserRepository(postgres.NewUserRepoPG(db, l), listCache, l)
	userUC := user.New(repo, l)
	jokeUC := joke.New(newJokeGenerator(cfg.OpenAI, l), l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		SQLDB:       sqlDB,
		RedisClient: rdb,
		UserUC:      userUC,
		JokeUC:      jokeUC,
		RateLimiter: rateLimiter,
		UserHandler: ginhandler.NewUserHandler(userUC, l),
		RootHandler: ginhandler.NewRootHandler(jokeUC, sqlDB, l),
		Health:      grpcadapter.NewHealthReporter(sqlDB, healthInterval, l),
	}, nil
}

// newJokeGenerator returns nil without an API key so the joke endpoint
// reports itself as not configured.
func newJokeGenerator(cfg config.OpenAIConfig, l *zap.Logger) joke.Generator {
	if !cfg.Configured() {
		l.Warn("OPENAI_API_KEY not set, joke endpoint disabled")
		return nil
	}
	return openai.NewClient(openai.Config{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}, l)
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
