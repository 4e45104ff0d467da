package user

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "rating-user-service/internal/domain/user"
	pkgerrors "rating-user-service/pkg/errors"
	"rating-user-service/pkg/logger"
)

// Repository defines the interface for user data access operations.
// Lookups return nil, nil when no user matches.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)         // Insert a user and return it with its ID
	GetByUsername(ctx context.Context, username string) (*domain.User, error) // Retrieve user by username
	GetByEmail(ctx context.Context, email string) (*domain.User, error)       // Retrieve user by email
	List(ctx context.Context, opts domain.ListOptions) ([]domain.User, error) // List users ordered by ID
	WithinTx(ctx context.Context, fn func(repo Repository) error) error       // Run fn in one transaction
}

var _ Usecase = (*Service)(nil)

// Service implements the business logic for user registration.
// It provides a clean separation between the transport layer and data layer.
type Service struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

// New creates a new user Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: NewValidator()}
}

// CreateUser validates the request, checks username and email uniqueness and
// inserts the user, all within one transaction.
func (uc *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("creating user", zap.String("username", in.Username), zap.String("email", in.Email))

	if err := uc.validateCreate(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	rating := domain.DefaultRating
	if in.Rating != nil {
		rating = *in.Rating
	}

	var created *domain.User
	err := uc.repo.WithinTx(ctx, func(repo Repository) error {
		existing, err := repo.GetByUsername(ctx, in.Username)
		if err != nil {
			return pkgerrors.NewInternalError("failed to validate username uniqueness", err)
		}
		if existing != nil {
			log.Warn("username already exists", zap.String("username", in.Username))
			return pkgerrors.ErrUsernameTaken
		}

		existing, err = repo.GetByEmail(ctx, in.Email)
		if err != nil {
			return pkgerrors.NewInternalError("failed to validate email uniqueness", err)
		}
		if existing != nil {
			log.Warn("email already exists", zap.String("email", in.Email))
			return pkgerrors.ErrEmailTaken
		}

		created, err = repo.Create(ctx, &domain.User{
			Username: in.Username,
			Email:    in.Email,
			FullName: in.FullName,
			Rating:   &rating,
		})
		return err
	})
	if err != nil {
		return nil, uc.classify(log, "failed to create user", err)
	}

	log.Info("user created", zap.Int64("id", created.ID))
	return &CreateUserResponse{User: toDTO(*created)}, nil
}

// ListUsers retrieves users ordered by ID ascending within the requested window.
func (uc *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, ToValidationError(err, LocationQuery)
	}

	log.Info("listing users", zap.Int("skip", in.Skip), zap.Int("limit", in.Limit))

	domainUsers, err := uc.repo.List(ctx, domain.ListOptions{Skip: in.Skip, Limit: in.Limit})
	if err != nil {
		return nil, uc.classify(log, "failed to list users", err)
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = toDTO(du)
	}

	return &ListUsersResponse{Users: users}, nil
}

// validateCreate collects every field failure of in, including an explicit null rating.
func (uc *Service) validateCreate(in CreateUserRequest) error {
	verr := &pkgerrors.ValidationError{}
	if err := uc.validate.Struct(in); err != nil {
		converted := ToValidationError(err, LocationBody)
		var fields *pkgerrors.ValidationError
		if !errors.As(converted, &fields) {
			return converted
		}
		verr = fields
	}

	if in.RatingNull && in.Rating == nil {
		verr.Add([]string{LocationBody, "rating"}, ErrRatingNull, pkgerrors.TypeType)
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// classify logs err at a level matching its class and wraps unknown errors as internal.
func (uc *Service) classify(log *zap.Logger, msg string, err error) error {
	var (
		conflict  *pkgerrors.ConflictError
		integrity *pkgerrors.IntegrityError
		internal  *pkgerrors.InternalError
	)

	switch {
	case errors.As(err, &conflict):
		log.Warn(msg, zap.Error(err))
		return conflict
	case errors.As(err, &integrity):
		// Validation should have rejected this before it reached storage.
		log.Error(msg+": storage constraint violated", zap.String("constraint", integrity.Constraint), zap.Error(err))
		return integrity
	case errors.As(err, &internal):
		log.Error(msg, zap.Error(err))
		return internal
	default:
		log.Error(msg, zap.Error(err))
		return pkgerrors.NewInternalError(msg, err)
	}
}

func toDTO(u domain.User) User {
	return User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Rating:   u.Rating,
	}
}
