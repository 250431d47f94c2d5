package domain

import "errors"

// Domain errors
var (
	// Reference errors
	ErrInvalidServiceReference = errors.New("unknown service id")
	ErrSessionNotFound         = errors.New("session not found")
	ErrNoActiveTicket          = errors.New("no active ticket")

	// Validation errors
	ErrInvalidBaseline = errors.New("baseline wait and position must not be negative")
	ErrInvalidName     = errors.New("name must be at least 2 characters")
	ErrInvalidPhone    = errors.New("phone must be at least 6 characters")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong  = errors.New("comment must be at most 500 characters")
)

// IsNotFoundError checks if the error is an invalid reference
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrInvalidServiceReference) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrNoActiveTicket)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidBaseline) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrCommentTooLong)
}
