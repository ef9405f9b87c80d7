package types

import "errors"

// Storage errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidPath   = errors.New("invalid path")
	ErrInvalidKey    = errors.New("invalid key")
	ErrInvalidValue  = errors.New("invalid value")
	ErrBackendClosed = errors.New("backend closed")
	ErrPanic         = errors.New("recovered panic")
)

// Domain errors returned by the office services.
var (
	ErrPaidExceedsTotal   = errors.New("paid fee exceeds total fee")
	ErrNegativeFee        = errors.New("fee must not be negative")
	ErrDuplicateKey       = errors.New("key already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingField       = errors.New("required field missing")
	ErrInvalidField       = errors.New("invalid field value")
)
