// Package errors defines all exported error sentinels for the mphset library.
//
// This is the single source of truth for error values. Both the top-level
// mphset package and internal packages import from here, ensuring errors.Is
// checks work across package boundaries.
package errors

import "errors"

// Input errors
var (
	ErrEmptyKeySet  = errors.New("mphset: cannot build set with zero keys")
	ErrDuplicateKey = errors.New("mphset: duplicate key detected")
	ErrTooManyKeys  = errors.New("mphset: factor × key count exceeds 2^32-1 vertices")
)

// Configuration errors
var (
	ErrInvalidFactor      = errors.New("mphset: factor must be at least 2")
	ErrInvalidMaxAttempts = errors.New("mphset: max attempts must be at least 1")
	ErrInvalidDigitBits   = errors.New("mphset: digit bits must be in [1, 16]")
	ErrUnknownHashFamily  = errors.New("mphset: unknown hash family")
)

// Construction errors
var (
	ErrConstructionExhausted = errors.New("mphset: no acyclic assignment graph found within the attempt bound")
)
