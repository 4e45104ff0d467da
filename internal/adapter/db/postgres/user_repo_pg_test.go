package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domain "rating-user-service/internal/domain/user"
	"rating-user-service/internal/usecase/user"
	pkgerrors "rating-user-service/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection to ":memory:" would otherwise see its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func setupTestRepo(t *testing.T) (*UserRepoPG, *gorm.DB) {
	db := setupTestDB(t)
	return NewUserRepoPG(db, zaptest.NewLogger(t)), db
}

func ptr[T any](v T) *T {
	return &v
}

func TestUserRepoPG_CreateAndLookup(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{
		Username: "testuser",
		Email:    "test@example.com",
		FullName: ptr("Test User"),
		Rating:   ptr(4.5),
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, 4.5, *created.Rating)

	byName, err := repo.GetByUsername(ctx, "testuser")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, "Test User", *byName.FullName)
	assert.Equal(t, 4.5, *byName.Rating)

	byEmail, err := repo.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, created.ID, byEmail.ID)

	missing, err := repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepoPG_Create_ReturnsStoredRow(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()

	// Stand-in for NUMERIC(2,1) rounding, which SQLite does not apply.
	require.NoError(t, db.Exec(`CREATE TRIGGER round_rating AFTER INSERT ON users
BEGIN
	UPDATE users SET rating = ROUND(NEW.rating, 1), full_name = TRIM(NEW.full_name) WHERE id = NEW.id;
END`).Error)

	created, err := repo.Create(ctx, &domain.User{
		Username: "rounded",
		Email:    "rounded@example.com",
		FullName: ptr("  Padded Name  "),
		Rating:   ptr(4.5000000001),
	})
	require.NoError(t, err)
	require.NotNil(t, created.Rating)
	assert.Equal(t, 4.5, *created.Rating)
	assert.Equal(t, "Padded Name", *created.FullName)

	stored, err := repo.GetByUsername(ctx, "rounded")
	require.NoError(t, err)
	assert.Equal(t, stored, created)
}

func TestUserRepoPG_Create_OptionalFieldsNull(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Username: "bare", Email: "bare@example.com"})
	require.NoError(t, err)

	got, err := repo.GetByUsername(ctx, "bare")
	require.NoError(t, err)
	assert.Nil(t, got.FullName)
	assert.Nil(t, got.Rating)
}

func TestUserRepoPG_Create_UniqueIndexes(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Username: "existinguser", Email: "existing@example.com", Rating: ptr(3.0)})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "existinguser", Email: "other@example.com", Rating: ptr(3.0)})
	assert.ErrorIs(t, err, pkgerrors.ErrUsernameTaken)

	_, err = repo.Create(ctx, &domain.User{Username: "otheruser", Email: "existing@example.com", Rating: ptr(3.0)})
	assert.ErrorIs(t, err, pkgerrors.ErrEmailTaken)

	users, err := repo.List(ctx, domain.NewListOptions())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepoPG_Create_CheckConstraints(t *testing.T) {
	tests := []struct {
		name       string
		rating     float64
		constraint string
	}{
		{name: "below range", rating: 0.5, constraint: ConstraintRatingRange},
		{name: "above range", rating: 5.5, constraint: ConstraintRatingRange},
		{name: "off step", rating: 3.2, constraint: ConstraintRatingIncrement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := setupTestRepo(t)

			// The repository does not validate, so this reaches the storage checks.
			_, err := repo.Create(context.Background(), &domain.User{
				Username: "bypass",
				Email:    "bypass@example.com",
				Rating:   ptr(tt.rating),
			})

			var ierr *pkgerrors.IntegrityError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, tt.constraint, ierr.Constraint)
		})
	}
}

func TestUserRepoPG_Create_AcceptsEveryValidRating(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	for i, r := range []float64{1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0} {
		_, err := repo.Create(ctx, &domain.User{
			Username: fmt.Sprintf("rater_%d", i),
			Email:    fmt.Sprintf("rater_%d@example.com", i),
			Rating:   ptr(r),
		})
		require.NoError(t, err, "rating %v", r)
	}
}

func TestUserRepoPG_List_OrderAndWindow(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := repo.Create(ctx, &domain.User{
			Username: fmt.Sprintf("user_%d", i),
			Email:    fmt.Sprintf("user_%d@example.com", i),
			Rating:   ptr(3.0),
		})
		require.NoError(t, err)
	}

	users, err := repo.List(ctx, domain.ListOptions{Skip: 2, Limit: 3})
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "user_2", users[0].Username)
	assert.Equal(t, "user_3", users[1].Username)
	assert.Equal(t, "user_4", users[2].Username)

	all, err := repo.List(ctx, domain.NewListOptions())
	require.NoError(t, err)
	assert.Len(t, all, 10)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	again, err := repo.List(ctx, domain.NewListOptions())
	require.NoError(t, err)
	assert.Equal(t, all, again)

	past, err := repo.List(ctx, domain.ListOptions{Skip: 20, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestUserRepoPG_WithinTx_RollsBackOnError(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	errAbort := errors.New("abort")

	err := repo.WithinTx(ctx, func(tx user.Repository) error {
		_, err := tx.Create(ctx, &domain.User{Username: "ghost", Email: "ghost@example.com", Rating: ptr(3.0)})
		require.NoError(t, err)
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	got, err := repo.GetByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepoPG_WithinTx_CommitsOnSuccess(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	err := repo.WithinTx(ctx, func(tx user.Repository) error {
		_, err := tx.Create(ctx, &domain.User{Username: "kept", Email: "kept@example.com", Rating: ptr(2.5)})
		return err
	})
	require.NoError(t, err)

	got, err := repo.GetByUsername(ctx, "kept")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2.5, *got.Rating)
}

func TestDDL(t *testing.T) {
	pg, err := DDL(DialectPostgres)
	require.NoError(t, err)
	assert.Contains(t, pg, "id BIGSERIAL PRIMARY KEY")
	assert.Contains(t, pg, "CONSTRAINT ck_users_rating_range CHECK (rating >= 1.0 AND rating <= 5.0)")
	assert.Contains(t, pg, "CONSTRAINT ck_users_rating_increment CHECK (MOD(rating * 10, 5) = 0)")
	assert.Contains(t, pg, "CONSTRAINT uq_users_username UNIQUE (username)")

	lite, err := DDL(DialectSQLite)
	require.NoError(t, err)
	assert.Contains(t, lite, "id INTEGER PRIMARY KEY AUTOINCREMENT")
	assert.Contains(t, lite, "CHECK ((rating * 10) % 5 = 0)")

	_, err = DDL("mysql")
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))
}
