// Package hashfn implements the random hash function families used to map
// keys onto the vertices of the assignment graph.
//
// Every family follows the same contract: a Sampler draws fresh parameters
// from a random stream and returns a Function closed over those parameters
// and the vertex count m. Function.Eval is deterministic for a sampled
// Function and always returns a value in [0, m).
//
// Functions are immutable after sampling and safe for concurrent use.
package hashfn

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/minio/highwayhash"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"

	intbits "github.com/tamirms/mphset/internal/bits"
)

// Function maps a key to a vertex id in [0, m).
type Function interface {
	Eval(key uint64) uint32
}

// Sampler draws a new Function from rng. Two calls on the same stream
// return independently parameterized functions.
type Sampler func(rng *rand.Rand) Function

// NewXXH3Sampler returns a sampler of seeded xxHash3-64 functions onto [0, m).
func NewXXH3Sampler(m uint32) Sampler {
	return func(rng *rand.Rand) Function {
		return xxh3Func{seed: rng.Uint64(), m: m}
	}
}

// NewXXHashSampler returns a sampler of salted xxHash64 functions onto [0, m).
// xxhash.Sum64 is unseeded, so a random 8-byte salt is hashed ahead of the key.
func NewXXHashSampler(m uint32) Sampler {
	return func(rng *rand.Rand) Function {
		return xxhashFunc{salt: rng.Uint64(), m: m}
	}
}

// NewMurmur3Sampler returns a sampler of seeded MurmurHash3 x64 functions onto [0, m).
func NewMurmur3Sampler(m uint32) Sampler {
	return func(rng *rand.Rand) Function {
		return murmur3Func{seed: rng.Uint32(), m: m}
	}
}

// NewHighwaySampler returns a sampler of keyed HighwayHash-64 functions onto [0, m).
func NewHighwaySampler(m uint32) Sampler {
	return func(rng *rand.Rand) Function {
		f := highwayFunc{m: m}
		for i := 0; i < highwayhash.Size; i += 8 {
			binary.LittleEndian.PutUint64(f.key[i:], rng.Uint64())
		}
		return f
	}
}

type xxh3Func struct {
	seed uint64
	m    uint32
}

func (f xxh3Func) Eval(key uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return intbits.FastRange32(xxh3.HashSeed(buf[:], f.seed), f.m)
}

type xxhashFunc struct {
	salt uint64
	m    uint32
}

func (f xxhashFunc) Eval(key uint64) uint32 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], f.salt)
	binary.LittleEndian.PutUint64(buf[8:16], key)
	return intbits.FastRange32(xxhash.Sum64(buf[:]), f.m)
}

type murmur3Func struct {
	seed uint32
	m    uint32
}

func (f murmur3Func) Eval(key uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return intbits.FastRange32(murmur3.Sum64WithSeed(buf[:], f.seed), f.m)
}

type highwayFunc struct {
	key [highwayhash.Size]byte
	m   uint32
}

func (f highwayFunc) Eval(key uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return intbits.FastRange32(highwayhash.Sum64(buf[:], f.key[:]), f.m)
}
