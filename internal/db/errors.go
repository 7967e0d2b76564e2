package db

import "errors"

// Sentinel errors for type-safe error checking
// Use errors.Is() instead of string comparison
var (
	// Identity mapping errors
	ErrMappingNotFound = errors.New("identity mapping not found")

	// Config errors
	ErrConfigNotFound = errors.New("config key not found")
)
