// Package errors provides the sentinel errors shared by the catalog layers.
package errors

import "errors"

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")
	// ErrDataIntegrity is returned when a write breaks a column constraint
	// such as a positive price, a non-negative stock or the numeric range.
	ErrDataIntegrity = errors.New("data integrity violation")
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("username is already taken")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = errors.New("password is too long")
	// ErrUserDisabled is returned for locked or disabled accounts.
	ErrUserDisabled = errors.New("user is locked or disabled")
)
