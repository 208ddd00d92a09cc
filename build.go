package mphset

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/go-logr/logr"

	mpherrors "github.com/tamirms/mphset/errors"
	"github.com/tamirms/mphset/internal/graph"
)

// maxVertices is the largest vertex count m = factor × len(keys). Vertex ids
// and labels are uint32.
const maxVertices = math.MaxUint32

// Build constructs a static membership set over keys.
//
// The assignment graph has factor × len(keys) vertices; factor must be at
// least 2, and 3 or more makes retries rare. keys must be pairwise distinct
// and are not retained (the set keeps its own copy in slot order).
//
// Usage:
//
//	set, err := mphset.Build(ctx, keys, 3)
//	if err != nil { return err }
//	if set.Contains(q) { ... }
//
// Build returns:
//   - ErrEmptyKeySet if keys is empty
//   - ErrInvalidFactor if factor < 2
//   - ErrTooManyKeys if factor × len(keys) exceeds 2^32-1
//   - ErrDuplicateKey (wrapped with the key) if a key repeats
//   - ErrConstructionExhausted (wrapped) if no attempt within WithMaxAttempts
//     produced an acyclic assignment graph
//   - ctx.Err() if ctx is cancelled during construction
//
// Progress is logged at V(1) to the logr.Logger carried by ctx, if any.
func Build(ctx context.Context, keys []int64, factor int, opts ...BuildOption) (*Set, error) {
	if len(keys) == 0 {
		return nil, mpherrors.ErrEmptyKeySet
	}
	if factor < 2 {
		return nil, fmt.Errorf("%w: got %d", mpherrors.ErrInvalidFactor, factor)
	}

	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n := uint64(len(keys))
	if n > maxVertices/uint64(factor) {
		return nil, fmt.Errorf("%w: %d keys × factor %d", mpherrors.ErrTooManyKeys, n, factor)
	}
	m := uint32(n * uint64(factor))

	ukeys := make([]uint64, len(keys))
	for i, k := range keys {
		ukeys[i] = uint64(k)
	}
	if err := checkDistinct(ukeys); err != nil {
		return nil, err
	}

	sampler, err := newSampler(cfg.family, m, cfg.digitBits)
	if err != nil {
		return nil, err
	}

	logger := logr.FromContextOrDiscard(ctx).WithName("mphset")
	g, err := graph.Build(ctx, ukeys, graph.Config{
		NumVertices: m,
		Sampler:     sampler,
		Seed:        cfg.seed,
		MaxAttempts: cfg.maxAttempts,
		Workers:     cfg.workers,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Set{
		h1:     g.Pair.H1,
		h2:     g.Pair.H2,
		labels: graph.Label(g),
		n:      n,
		stats: Stats{
			NumKeys:     len(keys),
			NumVertices: m,
			Factor:      factor,
			Attempts:    g.Attempts,
			HashFamily:  cfg.family,
		},
	}
	s.fillSlots(keys)
	s.stats.BitsPerKey = float64(32*len(s.labels)+64*len(s.slots)) / float64(n)

	logger.V(1).Info("static set built",
		"keys", n, "vertices", m, "attempts", g.Attempts, "hashFamily", cfg.family.String())
	return s, nil
}

// checkDistinct returns ErrDuplicateKey if any key repeats.
// Identical keys produce identical edges, which no hash pair can make acyclic,
// so without this check Build would only fail after exhausting every attempt.
func checkDistinct(keys []uint64) error {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return fmt.Errorf("%w: %d", mpherrors.ErrDuplicateKey, int64(sorted[i]))
		}
	}
	return nil
}

// fillSlots stores every key at its hash value. The labels make the hash a
// bijection over keys, so each slot is written exactly once.
func (s *Set) fillSlots(keys []int64) {
	s.slots = make([]int64, s.n)
	filled := make([]bool, s.n)
	for _, k := range keys {
		idx := s.hash(k)
		if filled[idx] {
			panic(fmt.Sprintf("mphset: slot %d assigned twice", idx))
		}
		filled[idx] = true
		s.slots[idx] = k
	}
}
