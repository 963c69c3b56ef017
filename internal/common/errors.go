// Package common defines shared constants and sentinel errors used across
// client and server layers of CredHex. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Registration errors.
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrWeakPassword  = errors.New("password must be at least 6 characters long")
	ErrPasswordMatch = errors.New("passwords do not match")

	// Vault validation errors. They never reach storage.
	ErrInvalidType  = errors.New("invalid file type")
	ErrTooLarge     = errors.New("file too large")
	ErrSizeMismatch = errors.New("file size does not match its content")

	// Vault storage errors.
	ErrAlreadyExists    = errors.New("already exists")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrForbiddenKey     = errors.New("key outside of user namespace")

	// Vault session errors.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUploadInProgress = errors.New("upload already in progress")
)
