package domain

import "errors"

// Credential store errors. The service layer maps these onto its own
// caller-facing errors.
var (
	ErrNotFound = errors.New("resource not found")
	ErrExpired  = errors.New("expired")
	ErrMismatch = errors.New("code mismatch")
)
