package repository

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrNotFound     = errors.New("employee not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
	ErrNoSnapshot   = errors.New("no scored period loaded yet")
)
