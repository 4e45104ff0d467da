package user

// User represents a registered user in the system.
type User struct {
	ID       int64    // ID is assigned by storage on creation and never changes
	Username string   // Username is unique across all users
	Email    string   // Email is unique across all users
	FullName *string  // FullName is optional
	Rating   *float64 // Rating is a satisfaction score, see ValidateRating
}
