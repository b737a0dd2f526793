package services

import "errors"

// Artifact query errors
var (
	ErrAreaNotFound = errors.New("area not found")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)
