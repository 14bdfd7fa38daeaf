package users

import "errors"

var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrMissingPhone is returned when the phone number is empty
	ErrMissingPhone = errors.New("phone number is required")
)
