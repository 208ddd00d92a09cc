package mphset

import (
	"fmt"

	mpherrors "github.com/tamirms/mphset/errors"
	"github.com/tamirms/mphset/internal/hashfn"
)

const (
	defaultMaxAttempts = 64
	defaultDigitBits   = 8
)

// BuildOption is a functional option for configuring builds.
type BuildOption func(*buildConfig)

type buildConfig struct {
	maxAttempts int
	seed        uint64
	family      HashFamily
	digitBits   int // tabulation only
	workers     int
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		maxAttempts: defaultMaxAttempts,
		seed:        0x1234567890abcdef, // Arbitrary default; overridden via WithSeed
		family:      HashTabulation,
		digitBits:   defaultDigitBits,
		workers:     1,
	}
}

// WithMaxAttempts bounds the number of hash pairs tried before Build gives up
// with ErrConstructionExhausted. Must be at least 1. Default is 64.
func WithMaxAttempts(n int) BuildOption {
	return func(c *buildConfig) {
		c.maxAttempts = n
	}
}

// WithSeed sets the seed every construction attempt derives its randomness
// from. Builds with the same keys, factor, options and seed are identical.
func WithSeed(seed uint64) BuildOption {
	return func(c *buildConfig) {
		c.seed = seed
	}
}

// WithHashFamily selects the family h1 and h2 are sampled from.
// Default is HashTabulation.
func WithHashFamily(f HashFamily) BuildOption {
	return func(c *buildConfig) {
		c.family = f
	}
}

// WithDigitBits sets the digit width of HashTabulation: keys are split into
// ceil(64/bits) digits, each indexing a table of 2^bits random words.
// Must be in [1, 16]. Default is 8. Ignored by other families.
func WithDigitBits(bits int) BuildOption {
	return func(c *buildConfig) {
		c.digitBits = bits
	}
}

// WithWorkers sets the number of goroutines running construction attempts
// concurrently. The result does not depend on the worker count.
// Values <= 1 build on the calling goroutine.
func WithWorkers(n int) BuildOption {
	return func(c *buildConfig) {
		c.workers = n
	}
}

func (c *buildConfig) validate() error {
	if c.maxAttempts < 1 {
		return mpherrors.ErrInvalidMaxAttempts
	}
	if c.family == HashTabulation && (c.digitBits < hashfn.MinDigitBits || c.digitBits > hashfn.MaxDigitBits) {
		return mpherrors.ErrInvalidDigitBits
	}
	if !c.family.valid() {
		return fmt.Errorf("%w: %d", mpherrors.ErrUnknownHashFamily, c.family)
	}
	return nil
}
