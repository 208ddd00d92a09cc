package mphset

import (
	"fmt"

	mpherrors "github.com/tamirms/mphset/errors"
	"github.com/tamirms/mphset/internal/hashfn"
)

// HashFamily identifies the family the two vertex hash functions h1 and h2
// are sampled from. Every family maps a key onto [0, m) with freshly drawn
// parameters on each construction attempt.
type HashFamily uint16

const (
	// HashTabulation uses simple tabulation hashing: one random table per
	// digit group of the key, XORed together. See WithDigitBits.
	HashTabulation HashFamily = 0

	// HashXXH3 uses xxHash3-64 with a random seed.
	HashXXH3 HashFamily = 1

	// HashXXHash uses xxHash64 over a random salt followed by the key.
	HashXXHash HashFamily = 2

	// HashMurmur3 uses MurmurHash3 x64 with a random 32-bit seed.
	HashMurmur3 HashFamily = 3

	// HashHighway uses HighwayHash-64 with a random 256-bit key.
	HashHighway HashFamily = 4
)

// String returns the family name.
func (f HashFamily) String() string {
	switch f {
	case HashTabulation:
		return "tabulation"
	case HashXXH3:
		return "xxh3"
	case HashXXHash:
		return "xxhash"
	case HashMurmur3:
		return "murmur3"
	case HashHighway:
		return "highway"
	default:
		return "unknown"
	}
}

func (f HashFamily) valid() bool {
	return f <= HashHighway
}

// newSampler returns the sampler for family f over m vertices.
// digitBits is only used by HashTabulation and must already be validated.
func newSampler(f HashFamily, m uint32, digitBits int) (hashfn.Sampler, error) {
	switch f {
	case HashTabulation:
		return hashfn.NewTabulationSampler(m, digitBits), nil
	case HashXXH3:
		return hashfn.NewXXH3Sampler(m), nil
	case HashXXHash:
		return hashfn.NewXXHashSampler(m), nil
	case HashMurmur3:
		return hashfn.NewMurmur3Sampler(m), nil
	case HashHighway:
		return hashfn.NewHighwaySampler(m), nil
	}
	return nil, fmt.Errorf("%w: %d", mpherrors.ErrUnknownHashFamily, f)
}
