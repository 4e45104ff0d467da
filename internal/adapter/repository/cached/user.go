package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"rating-user-service/internal/adapter/cache"
	domain "rating-user-service/internal/domain/user"
	"rating-user-service/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and caches pages of the user listing.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserListCache
	log    *zap.Logger
	group  *singleflight.Group
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
// A nil cache turns every call into a plain delegation.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserListCache, log *zap.Logger) user.Repository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
		group:  &singleflight.Group{},
	}
}

// Create inserts through the DB repository and invalidates the list cache.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := r.dbRepo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return created, nil
}

// GetByUsername delegates to the DB repository.
func (r *CachedUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.dbRepo.GetByUsername(ctx, username)
}

// GetByEmail delegates to the DB repository.
func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// List retrieves a page of users using the Cache-Aside pattern.
func (r *CachedUserRepository) List(ctx context.Context, opts domain.ListOptions) ([]domain.User, error) {
	if r.cache == nil {
		return r.dbRepo.List(ctx, opts)
	}

	// The generation is read before the DB so a page loaded across a
	// concurrent Create is stored under the generation it already retired.
	gen, err := r.cache.Generation(ctx)
	if err != nil {
		r.log.Warn("cache generation error, falling back to database", zap.Error(err))
		return r.dbRepo.List(ctx, opts)
	}

	if users, err := r.cache.Get(ctx, gen, opts); err != nil {
		r.log.Warn("cache get error, falling back to database", zap.Error(err))
	} else if users != nil {
		r.log.Debug("users retrieved from cache", zap.Int("skip", opts.Skip), zap.Int("limit", opts.Limit))
		return users, nil
	}

	// Cache miss - use single-flight to prevent stampede
	key := cache.PageKey(gen, opts)
	result, err, _ := r.group.Do(key, func() (any, error) {
		users, err := r.dbRepo.List(ctx, opts)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(ctx, gen, opts, users); err != nil {
			r.log.Warn("failed to cache users", zap.String("key", key), zap.Error(err))
		}

		return users, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]domain.User), nil
}

// WithinTx runs fn in a DB transaction and invalidates the list cache
// once a transaction that inserted a user has committed.
func (r *CachedUserRepository) WithinTx(ctx context.Context, fn func(repo user.Repository) error) error {
	var wrote bool
	err := r.dbRepo.WithinTx(ctx, func(tx user.Repository) error {
		return fn(&txRepository{Repository: tx, wrote: &wrote})
	})
	if err != nil {
		return err
	}

	if wrote {
		r.invalidate(ctx)
	}
	return nil
}

func (r *CachedUserRepository) invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx); err != nil {
		r.log.Warn("failed to invalidate user list cache", zap.Error(err))
	}
}

// txRepository records successful writes made inside a transaction.
type txRepository struct {
	user.Repository
	wrote *bool
}

func (t *txRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := t.Repository.Create(ctx, u)
	if err == nil {
		*t.wrote = true
	}
	return created, err
}

func (t *txRepository) WithinTx(ctx context.Context, fn func(repo user.Repository) error) error {
	return t.Repository.WithinTx(ctx, func(inner user.Repository) error {
		return fn(&txRepository{Repository: inner, wrote: t.wrote})
	})
}
