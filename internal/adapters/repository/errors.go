package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound  = errors.New("table not found")
	ErrMalformed = errors.New("malformed table")
	ErrWrite     = errors.New("write table failed")
)
