package domain

import "errors"

var (
	// ErrInvalidCredentials is returned for any login failure. It
	// deliberately does not say whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUserExists          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidLevel        = errors.New("invalid notification level")
	ErrInvalidNotification = errors.New("notification title and message are required")
	ErrForbidden           = errors.New("access forbidden")
)
