package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "rating-user-service/internal/domain/user"
	"rating-user-service/internal/usecase/user"
	pkgerrors "rating-user-service/pkg/errors"
	"rating-user-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// OptionalRating tells an absent rating apart from an explicit null.
type OptionalRating struct {
	Set   bool
	Value *float64
}

// UnmarshalJSON implements json.Unmarshaler. It is only called when the key is present.
func (r *OptionalRating) UnmarshalJSON(data []byte) error {
	r.Set = true
	if string(data) == "null" {
		r.Value = nil
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.Value = &v
	return nil
}

// CreateUserRequest represents the HTTP request body for creating a user
type CreateUserRequest struct {
	Username string         `json:"username"`
	Email    string         `json:"email"`
	FullName *string        `json:"full_name"`
	Rating   OptionalRating `json:"rating"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName *string  `json:"full_name"`
	Rating   *float64 `json:"rating"`
}

func toResponse(u user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Rating:   u.Rating,
	}
}

// CreateUser handles POST /users/
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid create user request", zap.Error(err))
		writeError(c, bindError(err))
		return
	}

	log.Info("Gin CreateUser request", zap.String("username", req.Username), zap.String("email", req.Email))

	resp, err := h.uc.CreateUser(ctx, user.CreateUserRequest{
		Username:   req.Username,
		Email:      req.Email,
		FullName:   req.FullName,
		Rating:     req.Rating.Value,
		RatingNull: req.Rating.Set && req.Rating.Value == nil,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp.User))
}

// ListUsers handles GET /users/?skip=&limit=
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	verr := &pkgerrors.ValidationError{}
	skip := queryInt(c, "skip", domain.DefaultSkip, verr)
	limit := queryInt(c, "limit", domain.DefaultLimit, verr)
	if verr.HasErrors() {
		logger.WithContext(ctx, h.log).Warn("invalid list users query", zap.Error(verr))
		writeError(c, verr)
		return
	}

	resp, err := h.uc.ListUsers(ctx, user.ListUsersRequest{Skip: skip, Limit: limit})
	if err != nil {
		writeError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toResponse(u)
	}

	c.JSON(http.StatusOK, users)
}

// queryInt parses an integer query parameter, recording a type error in verr when malformed.
func queryInt(c *gin.Context, name string, def int, verr *pkgerrors.ValidationError) int {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add([]string{user.LocationQuery, name}, name+" must be an integer", pkgerrors.TypeType)
		return def
	}
	return v
}
