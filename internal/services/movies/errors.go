package movies

import "errors"

// ValidationError carries per field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid movie data"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidData
}

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrInvalidData   = errors.New("invalid movie data")
)
