package user

const (
	// DefaultSkip is the offset used when a list request omits skip.
	DefaultSkip = 0
	// DefaultLimit is the page size used when a list request omits limit.
	DefaultLimit = 100
	// MaxLimit caps the page size of a single list request.
	MaxLimit = 1000
)

// ListOptions describes an offset/limit window over users ordered by ID ascending.
type ListOptions struct {
	Skip  int // Number of users to skip
	Limit int // Maximum number of users to return
}

// NewListOptions creates ListOptions with the default window.
func NewListOptions() ListOptions {
	return ListOptions{Skip: DefaultSkip, Limit: DefaultLimit}
}
