package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	domain "rating-user-service/internal/domain/user"
)

// Constraint names shared by the DDL and error translation.
const (
	ConstraintUsernameUnique  = "uq_users_username"
	ConstraintEmailUnique     = "uq_users_email"
	ConstraintRatingRange     = "ck_users_rating_range"
	ConstraintRatingIncrement = "ck_users_rating_increment"
)

// Supported dialect names, as reported by gorm.Dialector.Name().
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID       int64    `gorm:"column:id;primaryKey;autoIncrement"` // Unique identifier with auto-increment
	Username string   `gorm:"column:username;not null"`           // unique via uq_users_username
	Email    string   `gorm:"column:email;not null"`              // unique via uq_users_email
	FullName *string  `gorm:"column:full_name"`
	Rating   *float64 `gorm:"column:rating;type:numeric(2,1)"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// ratingRangeCheck mirrors domain.RatingInRange.
func ratingRangeCheck() string {
	return fmt.Sprintf("rating >= %.1f AND rating <= %.1f", domain.MinRating, domain.MaxRating)
}

// ratingIncrementCheck mirrors domain.RatingOnStep using integer remainder
// arithmetic on the one-decimal value.
func ratingIncrementCheck(dialect string) string {
	step := int(domain.RatingStep * 10)
	if dialect == DialectPostgres {
		return fmt.Sprintf("MOD(rating * 10, %d) = 0", step)
	}
	return fmt.Sprintf("(rating * 10) %% %d = 0", step)
}

// DDL returns the CREATE TABLE statement for the users table in the given dialect.
func DDL(dialect string) (string, error) {
	var idColumn string
	switch dialect {
	case DialectPostgres:
		idColumn = "id BIGSERIAL PRIMARY KEY"
	case DialectSQLite:
		idColumn = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	default:
		return "", fmt.Errorf("unsupported dialect: %q", dialect)
	}

	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
	%s,
	username TEXT NOT NULL,
	email TEXT NOT NULL,
	full_name TEXT,
	rating NUMERIC(2,1),
	CONSTRAINT %s UNIQUE (username),
	CONSTRAINT %s UNIQUE (email),
	CONSTRAINT %s CHECK (%s),
	CONSTRAINT %s CHECK (%s)
)`,
		idColumn,
		ConstraintUsernameUnique,
		ConstraintEmailUnique,
		ConstraintRatingRange, ratingRangeCheck(),
		ConstraintRatingIncrement, ratingIncrementCheck(dialect),
	), nil
}

// Migrate creates the users table if it does not exist yet.
func Migrate(ctx context.Context, db *gorm.DB) error {
	stmt, err := DDL(db.Dialector.Name())
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}
