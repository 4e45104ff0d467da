package user

// CreateUserRequest represents the request payload for creating a new user.
// A nil Rating means the caller omitted it and the default applies,
// unless RatingNull records that the caller sent an explicit null.
type CreateUserRequest struct {
	Username   string   `json:"username" validate:"required,notblank"`
	Email      string   `json:"email" validate:"required,email"`
	FullName   *string  `json:"full_name"`
	Rating     *float64 `json:"rating" validate:"omitempty,rating"`
	RatingNull bool     `json:"-"`
}

// CreateUserResponse represents the response payload after creating a user.
type CreateUserResponse struct {
	User User
}

// ListUsersRequest represents the request payload for listing users.
type ListUsersRequest struct {
	Skip  int `json:"skip" validate:"min=0"`
	Limit int `json:"limit" validate:"min=1,max=1000"`
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID       int64
	Username string
	Email    string
	FullName *string
	Rating   *float64
}
