package store

import "errors"

var (
	// ErrNotFound is returned when an account or listing does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUsernameTaken is returned when the unique username constraint fires.
	ErrUsernameTaken = errors.New("username already exists")
)
