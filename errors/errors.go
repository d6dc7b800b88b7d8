// Package errors provides error handling for recordgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//   - Error marks for sentinel matching across wrappers
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := loadDescriptor(path); err != nil {
//	    return errors.Wrapf(err, "failed to load %s", path)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "declare the package under imports")
//
//	// Check errors
//	if errors.Is(err, errors.ErrConfiguration) {
//	    // malformed descriptor
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Marks
var (
	Mark = crdb.Mark
)

// Sentinel errors for recordgen.
// Use these with errors.Is(); descriptor and plan failures are marked with
// ErrConfiguration so callers can match them through any wrapping.
var (
	// ErrConfiguration indicates a malformed or conflicting record description
	ErrConfiguration = New("configuration error")

	// ErrOutOfDate indicates generated files differ from what would be generated now
	ErrOutOfDate = New("generated files are out of date")

	// ErrNoSuchMember indicates a runtime-bound record has no member with the requested name
	ErrNoSuchMember = New("no such member")
)

// IsConfigurationError checks if an error is or wraps ErrConfiguration
func IsConfigurationError(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}

// IsOutOfDateError checks if an error is or wraps ErrOutOfDate
func IsOutOfDateError(err error) bool {
	return err != nil && Is(err, ErrOutOfDate)
}

// NewConfigurationError creates a configuration error with a formatted message
func NewConfigurationError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrConfiguration)
}
