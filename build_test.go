package mphset

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// ---------------------------------------------------------------------------
// Concrete scenarios
// ---------------------------------------------------------------------------

func TestBuildThreeKeys(t *testing.T) {
	s, err := Build(context.Background(), []int64{10, 20, 30}, 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if st := s.Stats(); st.NumKeys != 3 || st.NumVertices != 9 {
		t.Fatalf("Stats = %+v, want NumKeys=3 NumVertices=9", st)
	}
	for _, k := range []int64{10, 20, 30} {
		if !s.Contains(k) {
			t.Errorf("Contains(%d) = false, want true", k)
		}
	}
	if s.Contains(99) {
		t.Error("Contains(99) = true, want false")
	}
	verifyBijection(t, s, []int64{10, 20, 30})
}

func TestBuildSingleKey(t *testing.T) {
	s, err := Build(context.Background(), []int64{5}, 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if !s.Contains(5) {
		t.Error("Contains(5) = false, want true")
	}
	if s.Contains(6) {
		t.Error("Contains(6) = true, want false")
	}
	if h := s.Hash(5); h != 0 {
		t.Errorf("Hash(5) = %d, want 0", h)
	}
}

func TestBuildRandom32BitKeys(t *testing.T) {
	rng := newTestRNG(t)
	keys, members := randomKeys32(rng, 1000)

	s, err := Build(context.Background(), keys, 4, WithMaxAttempts(64))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	verifyBijection(t, s, keys)

	probes := make([]int64, 0, 10000)
	for len(probes) < 10000 {
		q := int64(int32(rng.Uint32()))
		if _, ok := members[q]; !ok {
			probes = append(probes, q)
		}
	}
	verifyMembership(t, s, keys, members, probes)
}

// TestBuildMillionKeys covers termination at scale with factor 3.
func TestBuildMillionKeys(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 10^6-key build in short mode")
	}
	rng := newTestRNG(t)
	keys, members := randomKeys64(rng, 1_000_000)

	s, err := Build(context.Background(), keys, 3, WithWorkers(4))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	verifyBijection(t, s, keys)

	probes := make([]int64, 0, 100000)
	for range 100000 {
		probes = append(probes, int64(rng.Uint64()))
	}
	verifyMembership(t, s, keys, members, probes)
}

// ---------------------------------------------------------------------------
// Key shapes
// ---------------------------------------------------------------------------

func TestBuildKeyShapes(t *testing.T) {
	sequential := make([]int64, 5000)
	for i := range sequential {
		sequential[i] = int64(i)
	}
	negative := make([]int64, 2000)
	for i := range negative {
		negative[i] = -int64(i) - 1
	}
	strided := make([]int64, 3000)
	for i := range strided {
		strided[i] = int64(i) << 32
	}

	tests := []struct {
		name string
		keys []int64
	}{
		{"sequential", sequential},
		{"negative", negative},
		{"high_bits_only", strided},
		{"extremes", []int64{math.MinInt64, math.MaxInt64, 0, -1, 1}},
		{"powers_of_two", func() []int64 {
			var ks []int64
			for b := 0; b < 63; b++ {
				ks = append(ks, int64(1)<<b, -(int64(1) << b))
			}
			return ks
		}()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Build(context.Background(), tc.keys, 3)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			members := make(map[int64]struct{}, len(tc.keys))
			for _, k := range tc.keys {
				members[k] = struct{}{}
			}
			var probes []int64
			for _, k := range tc.keys {
				probes = append(probes, k+1, k-1, ^k)
			}
			verifyBijection(t, s, tc.keys)
			verifyMembership(t, s, tc.keys, members, probes)
		})
	}
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

func TestBuildHashFamilies(t *testing.T) {
	families := []HashFamily{HashTabulation, HashXXH3, HashXXHash, HashMurmur3, HashHighway}
	for _, f := range families {
		t.Run(f.String(), func(t *testing.T) {
			rng := newTestRNG(t)
			keys, members := randomKeys64(rng, 2000)
			s, err := Build(context.Background(), keys, 3, WithHashFamily(f))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if s.Stats().HashFamily != f {
				t.Errorf("Stats().HashFamily = %v, want %v", s.Stats().HashFamily, f)
			}
			probes := make([]int64, 5000)
			for i := range probes {
				probes[i] = int64(rng.Uint64())
			}
			verifyBijection(t, s, keys)
			verifyMembership(t, s, keys, members, probes)
		})
	}
}

func TestBuildDigitBits(t *testing.T) {
	rng := newTestRNG(t)
	keys, _ := randomKeys64(rng, 1500)
	for _, bits := range []int{4, 7, 8, 12, 16} {
		s, err := Build(context.Background(), keys, 3, WithDigitBits(bits))
		if err != nil {
			t.Fatalf("digitBits=%d: Build: %v", bits, err)
		}
		verifyBijection(t, s, keys)
	}
}

func TestBuildFactors(t *testing.T) {
	rng := newTestRNG(t)
	keys, _ := randomKeys64(rng, 1000)
	for _, factor := range []int{3, 5, 10} {
		s, err := Build(context.Background(), keys, factor)
		if err != nil {
			t.Fatalf("factor=%d: Build: %v", factor, err)
		}
		st := s.Stats()
		if st.Factor != factor || st.NumVertices != uint32(factor*len(keys)) {
			t.Errorf("factor=%d: Stats = %+v", factor, st)
		}
		verifyBijection(t, s, keys)
	}
}

// TestBuildDeterministic verifies that a fixed seed fixes the whole structure.
func TestBuildDeterministic(t *testing.T) {
	rng := newTestRNG(t)
	keys, _ := randomKeys64(rng, 3000)

	a, err := Build(context.Background(), keys, 3, WithSeed(77))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(context.Background(), keys, 3, WithSeed(77))
	if err != nil {
		t.Fatal(err)
	}
	if a.Stats() != b.Stats() {
		t.Fatalf("Stats differ: %+v vs %+v", a.Stats(), b.Stats())
	}
	for _, k := range keys {
		if a.Hash(k) != b.Hash(k) {
			t.Fatalf("Hash(%d) differs between identical builds", k)
		}
	}

	c, err := Build(context.Background(), keys, 3, WithSeed(78))
	if err != nil {
		t.Fatal(err)
	}
	differ := 0
	for _, k := range keys {
		if a.Hash(k) != c.Hash(k) {
			differ++
		}
	}
	if differ == 0 {
		t.Error("different seeds produced identical hashes for every key")
	}
}

func TestBuildWorkersMatchSequential(t *testing.T) {
	rng := newTestRNG(t)
	keys, _ := randomKeys64(rng, 5000)

	// Factor 2 sits at the cycle threshold, so several attempts usually fail.
	opts := []BuildOption{WithSeed(5), WithMaxAttempts(1000)}
	seq, err := Build(context.Background(), keys, 2, opts...)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	for _, w := range []int{2, 8} {
		par, err := Build(context.Background(), keys, 2, append(opts, WithWorkers(w))...)
		if err != nil {
			t.Fatalf("workers=%d: %v", w, err)
		}
		if par.Stats() != seq.Stats() {
			t.Fatalf("workers=%d: Stats = %+v, want %+v", w, par.Stats(), seq.Stats())
		}
		for _, k := range keys {
			if par.Hash(k) != seq.Hash(k) {
				t.Fatalf("workers=%d: Hash(%d) differs from sequential build", w, k)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Logging and input handling
// ---------------------------------------------------------------------------

func TestBuildLogsToContextLogger(t *testing.T) {
	var (
		mu    sync.Mutex
		lines []string
	)
	logger := funcr.New(func(prefix, args string) {
		mu.Lock()
		lines = append(lines, prefix+" "+args)
		mu.Unlock()
	}, funcr.Options{Verbosity: 1})
	ctx := logr.NewContext(context.Background(), logger)

	s, err := Build(ctx, []int64{1, 2, 3, 4, 5, 6, 7, 8}, 3)
	if err != nil {
		t.Fatal(err)
	}

	var built, acyclic, cycles int
	for _, l := range lines {
		if !strings.Contains(l, "mphset") {
			t.Errorf("log line %q is missing the mphset logger name", l)
		}
		switch {
		case strings.Contains(l, "static set built"):
			built++
		case strings.Contains(l, "assignment graph is acyclic"):
			acyclic++
		case strings.Contains(l, "cycle detected"):
			cycles++
		}
	}
	if built != 1 || acyclic != 1 {
		t.Errorf("got %d build and %d acyclic lines, want 1 each: %q", built, acyclic, lines)
	}
	if cycles != s.Stats().Attempts-1 {
		t.Errorf("logged %d failed attempts, Stats().Attempts = %d", cycles, s.Stats().Attempts)
	}
}

func TestBuildDoesNotRetainInput(t *testing.T) {
	keys := []int64{100, 200, 300, 400}
	s, err := Build(context.Background(), keys, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range keys {
		keys[i] = -1
	}
	for _, k := range []int64{100, 200, 300, 400} {
		if !s.Contains(k) {
			t.Errorf("Contains(%d) = false after caller mutated its slice", k)
		}
	}
	if s.Contains(-1) {
		t.Error("Contains(-1) = true after caller mutated its slice")
	}
}
