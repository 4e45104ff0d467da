package user

import (
	"errors"
	"math"
)

const (
	// MinRating is the lowest accepted rating.
	MinRating = 1.0
	// MaxRating is the highest accepted rating.
	MaxRating = 5.0
	// RatingStep is the increment ratings must be expressed in.
	RatingStep = 0.5
	// DefaultRating is used when a create request omits the rating.
	DefaultRating = 3.0

	// ratingTolerance absorbs float representation error in the step check.
	ratingTolerance = 1e-9
)

var (
	// ErrRatingOutOfRange is returned for ratings outside [MinRating, MaxRating].
	ErrRatingOutOfRange = errors.New("rating must be between 1.0 and 5.0")
	// ErrRatingIncrement is returned for ratings that are not a multiple of RatingStep.
	ErrRatingIncrement = errors.New("rating must be in increments of 0.5")
)

// RatingInRange reports whether v lies in [MinRating, MaxRating].
func RatingInRange(v float64) bool {
	return v >= MinRating && v <= MaxRating
}

// RatingOnStep reports whether v is reachable from MinRating in steps of RatingStep.
func RatingOnStep(v float64) bool {
	scaled := v / RatingStep
	return math.Abs(scaled-math.Round(scaled)) <= ratingTolerance
}

// ValidateRating applies the range check and then the increment check.
// The value is returned unchanged on success.
func ValidateRating(v float64) (float64, error) {
	if math.IsNaN(v) || !RatingInRange(v) {
		return v, ErrRatingOutOfRange
	}
	if !RatingOnStep(v) {
		return v, ErrRatingIncrement
	}
	return v, nil
}
