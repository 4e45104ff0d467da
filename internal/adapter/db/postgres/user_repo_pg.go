package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "rating-user-service/internal/domain/user"
	"rating-user-service/internal/usecase/user"
)

var _ user.Repository = (*UserRepoPG)(nil)

// UserRepoPG implements the Repository interface using GORM.
// It runs against PostgreSQL in production and SQLite in tests.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection, or the open transaction inside WithinTx
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// WithinTx runs fn inside a single transaction. The transaction is committed
// when fn returns nil and rolled back on error or panic.
func (r *UserRepoPG) WithinTx(ctx context.Context, fn func(repo user.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepoPG{db: tx, log: r.log})
	})
}

// Create inserts a new user and returns the row as stored, including its assigned ID.
func (r *UserRepoPG) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Rating:   u.Rating,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if translated := translateWriteError(err); translated != nil {
			r.log.Warn("user insert rejected by constraint", zap.Error(err), zap.String("username", u.Username))
			return nil, translated
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("username", u.Username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Read back what the column types kept, e.g. NUMERIC(2,1) rounding.
	var stored UserSchema
	if err := r.db.WithContext(ctx).Take(&stored, model.ID).Error; err != nil {
		r.log.Error("failed to read back created user", zap.Error(err), zap.Int64("id", model.ID))
		return nil, fmt.Errorf("failed to read created user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", stored.ID))
	return toDomain(stored), nil
}

// GetByUsername retrieves a user by username. It returns nil, nil when no user matches.
func (r *UserRepoPG) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// GetByEmail retrieves a user by email address. It returns nil, nil when no user matches.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepoPG) findOne(ctx context.Context, cond string, value string) (*domain.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where(cond, value).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.String("condition", cond), zap.String("value", value))
			return nil, nil
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("condition", cond))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toDomain(model), nil
}

// List retrieves a window of users ordered by ID ascending.
func (r *UserRepoPG) List(ctx context.Context, opts domain.ListOptions) ([]domain.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id ASC").Offset(opts.Skip).Limit(opts.Limit).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.Int("skip", opts.Skip), zap.Int("limit", opts.Limit))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, len(models))
	for i, model := range models {
		users[i] = *toDomain(model)
	}

	return users, nil
}

func toDomain(model UserSchema) *domain.User {
	return &domain.User{
		ID:       model.ID,
		Username: model.Username,
		Email:    model.Email,
		FullName: model.FullName,
		Rating:   model.Rating,
	}
}
