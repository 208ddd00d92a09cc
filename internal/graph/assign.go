// Package graph builds the acyclic assignment graph behind the minimal perfect
// hash and labels its vertices.
//
// Each key k contributes one undirected edge (h1(k), h2(k)) on m vertices.
// Construction samples hash pairs until the n edges form a forest (checked
// edge by edge with a disjoint-set union), then Label assigns every vertex a
// value so that (g[h1(k)] + g[h2(k)]) mod n is a bijection onto [0, n).
package graph

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	mpherrors "github.com/tamirms/mphset/errors"
	intbits "github.com/tamirms/mphset/internal/bits"
	"github.com/tamirms/mphset/internal/dsu"
	"github.com/tamirms/mphset/internal/hashfn"
)

// contextCheckInterval is how often (in keys) an attempt checks for cancellation.
const contextCheckInterval = 10000

// attemptStreamMixer is the 64-bit golden ratio, used to spread attempt
// indices before they seed the per-attempt random stream.
const attemptStreamMixer = 0x9e3779b97f4a7c15

// Config controls assignment graph construction.
type Config struct {
	NumVertices uint32         // m
	Sampler     hashfn.Sampler // draws h1 and h2 for each attempt
	Seed        uint64         // root of all per-attempt random streams
	MaxAttempts int            // must be >= 1
	Workers     int            // <= 1 means sequential
	Logger      logr.Logger
}

// Pair is the winning pair of hash functions.
type Pair struct {
	H1, H2 hashfn.Function
}

// Graph is a successfully built (acyclic) assignment graph in compressed
// sparse row form. The arcs of vertex v are adj[offsets[v]:offsets[v+1]];
// edge[i] is the key index that produced arc i. Every key appears as two arcs.
type Graph struct {
	Pair     Pair
	Attempts int // attempts run up to and including the winning one

	numVertices uint32
	numEdges    int
	offsets     []uint32
	adj         []uint32
	edge        []uint32
}

// NumVertices returns m.
func (g *Graph) NumVertices() uint32 {
	return g.numVertices
}

// NumEdges returns n, the number of keys.
func (g *Graph) NumEdges() int {
	return g.numEdges
}

// Degree returns the number of arcs incident to v.
func (g *Graph) Degree(v uint32) int {
	return int(g.offsets[v+1] - g.offsets[v])
}

// Build samples hash pairs until the keys form an acyclic assignment graph.
//
// Attempt i draws its hash pair from a stream derived only from (cfg.Seed, i),
// and the lowest successful attempt wins, so the result for a given seed is
// the same whether attempts run sequentially or across workers.
//
// Returns mpherrors.ErrConstructionExhausted (wrapped) if none of the first
// cfg.MaxAttempts attempts succeeds, or ctx.Err() if ctx is cancelled.
func Build(ctx context.Context, keys []uint64, cfg Config) (*Graph, error) {
	var (
		pair    Pair
		attempt int
		err     error
	)
	if cfg.Workers > 1 {
		pair, attempt, err = searchParallel(ctx, keys, cfg)
	} else {
		pair, attempt, err = searchSequential(ctx, keys, cfg)
	}
	if err != nil {
		return nil, err
	}

	cfg.Logger.V(1).Info("assignment graph is acyclic",
		"attempts", attempt+1, "keys", len(keys), "vertices", cfg.NumVertices)

	g := newGraph(keys, pair, cfg.NumVertices)
	g.Attempts = attempt + 1
	return g, nil
}

// searchSequential runs attempts 0, 1, ... in order on one DSU.
func searchSequential(ctx context.Context, keys []uint64, cfg Config) (Pair, int, error) {
	d := dsu.New(int(cfg.NumVertices))
	for i := range cfg.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return Pair{}, 0, err
		}
		pair, ok, err := runAttempt(ctx, d, keys, cfg, i)
		if err != nil {
			return Pair{}, 0, err
		}
		if ok {
			return pair, i, nil
		}
	}
	return Pair{}, 0, exhausted(cfg.MaxAttempts)
}

// searchParallel runs attempts on cfg.Workers goroutines.
//
// Workers claim attempt indices from a shared counter. A worker stops once its
// claimed index is not below the best success so far. Claims are monotone, so
// every index below the final best was claimed by some worker and ran to
// completion: the winner is the lowest successful index, as in the sequential
// search.
func searchParallel(ctx context.Context, keys []uint64, cfg Config) (Pair, int, error) {
	var (
		next   atomic.Int64
		best   atomic.Int64
		mu     sync.Mutex
		winner Pair
	)
	best.Store(int64(cfg.MaxAttempts))

	g, gctx := errgroup.WithContext(ctx)
	for range cfg.Workers {
		g.Go(func() error {
			d := dsu.New(int(cfg.NumVertices))
			for {
				i := next.Add(1) - 1
				if i >= best.Load() {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				pair, ok, err := runAttempt(gctx, d, keys, cfg, int(i))
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				mu.Lock()
				if i < best.Load() {
					best.Store(i)
					winner = pair
				}
				mu.Unlock()
				return nil
			}
		})
	}
	if err := g.Wait(); err != nil {
		return Pair{}, 0, err
	}

	i := best.Load()
	if i >= int64(cfg.MaxAttempts) {
		return Pair{}, 0, exhausted(cfg.MaxAttempts)
	}
	return winner, int(i), nil
}

// runAttempt performs attempt i: reset d, sample (h1, h2) from the attempt's
// stream, and merge one edge per key. ok is false if some edge would close a
// cycle (a self-loop h1(k) == h2(k) included).
func runAttempt(ctx context.Context, d *dsu.Set, keys []uint64, cfg Config, i int) (Pair, bool, error) {
	d.Reset(int(cfg.NumVertices))

	rng := attemptRNG(cfg.Seed, i)
	pair := Pair{H1: cfg.Sampler(rng), H2: cfg.Sampler(rng)}

	for j, k := range keys {
		if j > 0 && j%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Pair{}, false, err
			}
		}
		if !d.Merge(pair.H1.Eval(k), pair.H2.Eval(k)) {
			cfg.Logger.V(1).Info("cycle detected, retrying",
				"attempt", i, "edgesPlaced", j, "keys", len(keys))
			return Pair{}, false, nil
		}
	}
	return pair, true, nil
}

// attemptRNG derives the independent random stream for attempt i.
func attemptRNG(seed uint64, i int) *rand.Rand {
	idx := uint64(i)
	return rand.New(rand.NewPCG(
		intbits.Mix64(seed^(idx*attemptStreamMixer)),
		intbits.Mix64(seed+idx+1),
	))
}

func exhausted(attempts int) error {
	return fmt.Errorf("%w: %d attempts", mpherrors.ErrConstructionExhausted, attempts)
}

// newGraph lays out the adjacency of the winning attempt. Each key index i
// contributes arcs u→v and v→u, both tagged with i.
func newGraph(keys []uint64, pair Pair, m uint32) *Graph {
	n := len(keys)
	us := make([]uint32, n)
	vs := make([]uint32, n)
	offsets := make([]uint32, int(m)+1)
	for i, k := range keys {
		u, v := pair.H1.Eval(k), pair.H2.Eval(k)
		us[i], vs[i] = u, v
		offsets[u+1]++
		offsets[v+1]++
	}
	for v := 1; v < len(offsets); v++ {
		offsets[v] += offsets[v-1]
	}

	adj := make([]uint32, 2*n)
	edge := make([]uint32, 2*n)
	fill := make([]uint32, m)
	copy(fill, offsets[:m])
	for i := range keys {
		u, v := us[i], vs[i]
		adj[fill[u]], edge[fill[u]] = v, uint32(i)
		fill[u]++
		adj[fill[v]], edge[fill[v]] = u, uint32(i)
		fill[v]++
	}

	return &Graph{
		Pair:        pair,
		numVertices: m,
		numEdges:    n,
		offsets:     offsets,
		adj:         adj,
		edge:        edge,
	}
}
