// Package errors provides error handling for jsbind.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints (recovery instructions for masked files, etc.)
//
// Usage:
//
//	// Wrap with context
//	if err := e.Compile(ctx, key, src); err != nil {
//	    return errors.Wrapf(err, "failed to compile %s", key)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "run `jsbind unmask` once the bundler has exited")
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotCompiled) {
//	    // compile first
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
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
	CombineErrors      = crdb.CombineErrors
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

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Common sentinel errors for use across jsbind.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = New("operation timed out")
)

// Runtime errors
var (
	// ErrAlreadyBound indicates a type name is already present in an interpreter's global scope
	ErrAlreadyBound = New("type already bound")

	// ErrNotCompiled indicates a program key has no compiled entry
	ErrNotCompiled = New("program not compiled")

	// ErrCompile indicates script source failed to parse
	ErrCompile = New("compile failed")

	// ErrEngineClosed indicates the engine's event loop has been shut down
	ErrEngineClosed = New("engine closed")
)

// Generation errors
var (
	// ErrInvalidDescriptor indicates a type descriptor cannot be rendered or bound
	ErrInvalidDescriptor = New("invalid type descriptor")

	// ErrNoCommonRoot indicates two module paths share no directory
	ErrNoCommonRoot = New("paths share no common directory")
)

// Build errors
var (
	// ErrBundlerStart indicates the external bundler process could not be started
	ErrBundlerStart = New("bundler failed to start")

	// ErrBundlerFailed indicates the bundler exited with a non-zero status
	ErrBundlerFailed = New("bundler failed")

	// ErrBundlerTimeout indicates the bundler did not finish within the configured wait
	ErrBundlerTimeout = Wrap(ErrTimeout, "bundler did not finish")

	// ErrAlreadyMasked indicates a recovery lock is present from an earlier build
	ErrAlreadyMasked = New("sources already masked")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidDescriptorError creates an invalid-descriptor error with a formatted message
func NewInvalidDescriptorError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidDescriptor, Newf(format, args...).Error())
}
