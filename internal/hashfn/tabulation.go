package hashfn

import (
	"math/rand/v2"

	intbits "github.com/tamirms/mphset/internal/bits"
)

const (
	// MinDigitBits and MaxDigitBits bound the digit width of tabulation
	// hashing. 16 bits already costs 4 × 64K × 8 = 2 MiB per function.
	MinDigitBits = 1
	MaxDigitBits = 16

	keyBits = 64
)

// tabulation is simple tabulation hashing: the key is split into digitBits-wide
// digits and the hash is the XOR of one random word per (position, digit).
// Evaluation costs one table lookup per digit group instead of any arithmetic
// over m.
//
// Table layout: tables[pos<<digitBits | digit], pos in [0, groups).
type tabulation struct {
	tables    []uint64
	digitBits uint
	mask      uint64
	groups    int
	m         uint32
}

// NumDigitGroups returns how many digitBits-wide groups cover a 64-bit key.
func NumDigitGroups(digitBits int) int {
	return (keyBits + digitBits - 1) / digitBits
}

// NewTabulationSampler returns a sampler of tabulation hash functions onto
// [0, m) with digitBits-wide digits.
// Precondition: MinDigitBits <= digitBits <= MaxDigitBits (checked by callers).
func NewTabulationSampler(m uint32, digitBits int) Sampler {
	groups := NumDigitGroups(digitBits)
	tableSize := 1 << digitBits
	return func(rng *rand.Rand) Function {
		t := &tabulation{
			tables:    make([]uint64, groups*tableSize),
			digitBits: uint(digitBits),
			mask:      uint64(tableSize - 1),
			groups:    groups,
			m:         m,
		}
		for i := range t.tables {
			t.tables[i] = rng.Uint64()
		}
		return t
	}
}

func (t *tabulation) Eval(key uint64) uint32 {
	var h uint64
	for pos := 0; pos < t.groups; pos++ {
		digit := key & t.mask
		h ^= t.tables[uint64(pos)<<t.digitBits|digit]
		key >>= t.digitBits
	}
	return intbits.FastRange32(h, t.m)
}
