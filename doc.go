// Package mphset implements static membership sets over a minimal perfect
// hash function (MPHF) built with the acyclic random graph method.
//
// Each key k becomes an edge (h1(k), h2(k)) in a graph of factor × n vertices,
// where h1 and h2 are freshly sampled random hash functions. Pairs are
// resampled until the graph is a forest; a union-find structure detects the
// first cycle in each attempt. A depth-first pass then labels every vertex so
// that (g[h1(k)] + g[h2(k)]) mod n is a bijection from the keys onto [0, n).
// Keys are stored at their hash value, so membership is answered in O(1)
// with no false positives.
//
// # Basic Usage
//
// Building a set:
//
//	set, err := mphset.Build(ctx, keys, 3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Querying:
//
//	if set.Contains(42) {
//	    fmt.Println("Yes")
//	}
//
// Construction is randomized but reproducible: the same keys, factor and
// options (including WithSeed) always produce the same set, with any number
// of workers. Attempts are bounded by WithMaxAttempts.
//
// # Package Structure
//
// The implementation is organized as follows:
//
//   - Public API: build.go (Build), set.go (Set, Contains, Hash, Index)
//   - Configuration: builder_options.go (BuildOption, With* functions)
//   - Hash families: hashfamily.go (HashFamily, sampler dispatch), internal/hashfn/
//   - Construction: internal/graph/ (retry loop, CSR graph, vertex labeling)
//   - Cycle detection: internal/dsu/ (union by size, iterative path compression)
//   - Errors: errors/ (exported sentinels)
//   - Benchmarking: cmd/bench (build and query throughput, peak memory)
package mphset
