package mphset

import (
	"iter"

	"github.com/tamirms/mphset/internal/hashfn"
)

// Set is an immutable membership set over a fixed key set, backed by a
// minimal perfect hash.
//
// Thread Safety:
// - All methods are read-only and safe for concurrent use
// - There is no way to add or remove keys after Build
type Set struct {
	h1, h2 hashfn.Function
	labels []uint32 // g[0..m), each in [0, n)
	slots  []int64  // slots[hash(k)] == k for every key
	n      uint64
	stats  Stats
}

// Stats holds construction statistics.
type Stats struct {
	NumKeys     int
	NumVertices uint32 // m = Factor × NumKeys
	Factor      int
	Attempts    int // hash pairs tried, including the successful one
	HashFamily  HashFamily
	BitsPerKey  float64 // retained labels and slots
}

// hash returns (g[h1(q)] + g[h2(q)]) mod n. Labels are below n, so one
// conditional subtraction replaces the modulo.
func (s *Set) hash(q int64) uint64 {
	k := uint64(q)
	h := uint64(s.labels[s.h1.Eval(k)]) + uint64(s.labels[s.h2.Eval(k)])
	if h >= s.n {
		h -= s.n
	}
	return h
}

// Contains reports whether q is one of the keys the set was built from.
// Runs in O(1): two hash evaluations, two label reads and one slot read.
// There are no false positives: a non-member q may hash to a member's slot,
// but the stored key is compared, not just the hash.
func (s *Set) Contains(q int64) bool {
	return s.slots[s.hash(q)] == q
}

// Hash returns the minimal perfect hash of q in [0, Len()).
// Over the keys passed to Build it is a bijection; for any other q the value is in
// range but meaningless. Use Index to also learn whether q is a member.
func (s *Set) Hash(q int64) int {
	return int(s.hash(q))
}

// Index returns the slot of q and whether q is a member.
func (s *Set) Index(q int64) (int, bool) {
	idx := s.hash(q)
	return int(idx), s.slots[idx] == q
}

// Len returns the number of keys.
func (s *Set) Len() int {
	return len(s.slots)
}

// All returns an iterator over (slot, key) pairs in slot order.
func (s *Set) All() iter.Seq2[int, int64] {
	return func(yield func(int, int64) bool) {
		for i, k := range s.slots {
			if !yield(i, k) {
				return
			}
		}
	}
}

// Stats returns construction statistics.
func (s *Set) Stats() Stats {
	return s.stats
}
