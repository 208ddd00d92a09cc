package mphset

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a PCG stream seeded from the test name, so every test
// is deterministic and independent of the others.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// generateDistinctKeys returns n distinct keys drawn by draw, plus a
// membership map for choosing non-member probes.
func generateDistinctKeys(n int, draw func() int64) ([]int64, map[int64]struct{}) {
	seen := make(map[int64]struct{}, n)
	keys := make([]int64, 0, n)
	for len(keys) < n {
		k := draw()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys, seen
}

// randomKeys64 returns n distinct uniformly random int64 keys.
func randomKeys64(rng *rand.Rand, n int) ([]int64, map[int64]struct{}) {
	return generateDistinctKeys(n, func() int64 { return int64(rng.Uint64()) })
}

// randomKeys32 returns n distinct random 32-bit keys.
func randomKeys32(rng *rand.Rand, n int) ([]int64, map[int64]struct{}) {
	return generateDistinctKeys(n, func() int64 { return int64(int32(rng.Uint32())) })
}

// verifyBijection checks that Hash maps keys one-to-one onto [0, n).
func verifyBijection(t *testing.T, s *Set, keys []int64) {
	t.Helper()
	n := len(keys)
	seen := make([]bool, n)
	for _, k := range keys {
		h := s.Hash(k)
		if h < 0 || h >= n {
			t.Fatalf("Hash(%d) = %d, out of range [0, %d)", k, h, n)
		}
		if seen[h] {
			t.Fatalf("Hash(%d) = %d collides with another key", k, h)
		}
		seen[h] = true
	}
}

// verifyMembership checks no false negatives over keys and no false
// positives over probes that are not in members.
func verifyMembership(t *testing.T, s *Set, keys []int64, members map[int64]struct{}, probes []int64) {
	t.Helper()
	for _, k := range keys {
		if !s.Contains(k) {
			t.Fatalf("Contains(%d) = false for a member", k)
		}
	}
	for _, q := range probes {
		_, member := members[q]
		if got := s.Contains(q); got != member {
			t.Fatalf("Contains(%d) = %v, want %v", q, got, member)
		}
	}
}
