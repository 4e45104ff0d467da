package cached

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"rating-user-service/internal/adapter/cache"
	"rating-user-service/internal/adapter/db/postgres"
	domain "rating-user-service/internal/domain/user"
	"rating-user-service/internal/usecase/user"
)

type fixture struct {
	repo  user.Repository
	db    *gorm.DB
	cache cache.UserListCache
	mr    *miniredis.Miniredis
}

func setup(t *testing.T) fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.Migrate(context.Background(), db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zaptest.NewLogger(t)
	c := cache.NewRedisUserListCache(client, time.Minute, log)

	return fixture{
		repo:  NewCachedUserRepository(postgres.NewUserRepoPG(db, log), c, log),
		db:    db,
		cache: c,
		mr:    mr,
	}
}

func seed(t *testing.T, repo user.Repository, n int) {
	rating := 3.0
	for i := 0; i < n; i++ {
		_, err := repo.Create(context.Background(), &domain.User{
			Username: fmt.Sprintf("user_%d", i),
			Email:    fmt.Sprintf("user_%d@example.com", i),
			Rating:   &rating,
		})
		require.NoError(t, err)
	}
}

func TestCachedUserRepository_List_ServesFromCache(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	seed(t, f.repo, 3)
	opts := domain.NewListOptions()

	first, err := f.repo.List(ctx, opts)
	require.NoError(t, err)
	require.Len(t, first, 3)

	gen, err := f.cache.Generation(ctx)
	require.NoError(t, err)
	assert.True(t, f.mr.Exists(cache.PageKey(gen, opts)))

	// Rows removed behind the cache's back stay visible until invalidation.
	require.NoError(t, f.db.Exec("DELETE FROM users").Error)

	second, err := f.repo.List(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCachedUserRepository_Create_InvalidatesList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	seed(t, f.repo, 2)
	opts := domain.NewListOptions()

	before, err := f.repo.List(ctx, opts)
	require.NoError(t, err)
	require.Len(t, before, 2)

	rating := 4.0
	_, err = f.repo.Create(ctx, &domain.User{Username: "late", Email: "late@example.com", Rating: &rating})
	require.NoError(t, err)

	after, err := f.repo.List(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, after, 3)
}

func TestCachedUserRepository_WithinTx_InvalidatesAfterCommit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	opts := domain.NewListOptions()

	empty, err := f.repo.List(ctx, opts)
	require.NoError(t, err)
	assert.Empty(t, empty)

	rating := 2.5
	err = f.repo.WithinTx(ctx, func(tx user.Repository) error {
		_, err := tx.Create(ctx, &domain.User{Username: "txuser", Email: "tx@example.com", Rating: &rating})
		return err
	})
	require.NoError(t, err)

	users, err := f.repo.List(ctx, opts)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "txuser", users[0].Username)
}

func TestCachedUserRepository_WithinTx_RollbackKeepsGeneration(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	errAbort := errors.New("abort")

	before, err := f.cache.Generation(ctx)
	require.NoError(t, err)

	rating := 2.5
	err = f.repo.WithinTx(ctx, func(tx user.Repository) error {
		_, err := tx.Create(ctx, &domain.User{Username: "ghost", Email: "ghost@example.com", Rating: &rating})
		require.NoError(t, err)
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	after, err := f.cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCachedUserRepository_RedisDown_FallsBackToDatabase(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	seed(t, f.repo, 2)
	f.mr.Close()

	users, err := f.repo.List(ctx, domain.NewListOptions())
	require.NoError(t, err)
	assert.Len(t, users, 2)

	rating := 1.5
	_, err = f.repo.Create(ctx, &domain.User{Username: "offline", Email: "offline@example.com", Rating: &rating})
	assert.NoError(t, err)
}

func TestCachedUserRepository_NilCache(t *testing.T) {
	f := setup(t)
	repo := NewCachedUserRepository(postgres.NewUserRepoPG(f.db, zaptest.NewLogger(t)), nil, zaptest.NewLogger(t))
	seed(t, repo, 2)

	users, err := repo.List(context.Background(), domain.ListOptions{Skip: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "user_1", users[0].Username)
}
