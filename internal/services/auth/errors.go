package auth

import "errors"

// ValidationError carries per field messages for a rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid data"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidData
}

var (
	ErrInvalidData        = errors.New("invalid data")
	ErrAdminAlreadyExists = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid token")
)

// IsAuthenticationError reports whether err means the caller is not authenticated.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken)
}
