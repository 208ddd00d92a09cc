// Bench is a benchmarking tool for measuring mphset build performance,
// query throughput, and memory usage.
//
// Usage:
//
//	go run ./cmd/bench -keys 10000000 -factor 3 -family tabulation
//
// Flags:
//
//	-keys          Number of keys to index (default: 10,000,000)
//	-factor        Vertices per key in the assignment graph (default: 3)
//	-family        Hash family: tabulation, xxh3, xxhash, murmur3, highway (default: tabulation)
//	-digit-bits    Tabulation digit width in bits (default: 8)
//	-workers       Number of parallel workers (default: 1)
//	-max-attempts  Hash pairs to try before giving up (default: 64)
//	-seed          Construction seed (default: fixed)
//	-v             Log verbosity, 0 or 1 (default: 0)
package main

import (
	"context"
	"flag"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/tamirms/mphset"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// getLogger returns a stdr logger at verbosity v; 1 shows per-attempt
// construction messages.
func getLogger(v int) logr.Logger {
	logger := stdr.New(nil)
	if v > 1 || v < 0 {
		v = 0
		logger.Info("Invalid verbosity, showing info level messages only.")
	}
	stdr.SetVerbosity(v)
	return logger
}

func parseFamily(name string) (mphset.HashFamily, bool) {
	for _, f := range []mphset.HashFamily{
		mphset.HashTabulation, mphset.HashXXH3, mphset.HashXXHash, mphset.HashMurmur3, mphset.HashHighway,
	} {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

// peakSampler tracks peak heap and RSS every 10ms. It reads runtime/metrics
// rather than ReadMemStats, which stops the world.
type peakSampler struct {
	alloc atomic.Uint64
	rss   atomic.Uint64
	done  chan struct{}
}

func startPeakSampler(alloc, rss uint64) *peakSampler {
	p := &peakSampler{done: make(chan struct{})}
	p.alloc.Store(alloc)
	p.rss.Store(rss)
	go func() {
		samples := []metrics.Sample{{Name: "/memory/classes/heap/objects:bytes"}}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				storeMax(&p.alloc, samples[0].Value.Uint64())
				storeMax(&p.rss, getMaxRSS())
			}
		}
	}()
	return p
}

func (p *peakSampler) stop() {
	close(p.done)
	var final runtime.MemStats
	runtime.ReadMemStats(&final)
	storeMax(&p.alloc, final.Alloc)
	storeMax(&p.rss, getMaxRSS())
}

func storeMax(a *atomic.Uint64, v uint64) {
	for {
		old := a.Load()
		if v <= old || a.CompareAndSwap(old, v) {
			return
		}
	}
}

func main() {
	keysFlag := flag.Int("keys", 10_000_000, "number of keys")
	factorFlag := flag.Int("factor", 3, "assignment graph vertices per key")
	familyFlag := flag.String("family", "tabulation", "hash family: tabulation, xxh3, xxhash, murmur3, highway")
	digitBitsFlag := flag.Int("digit-bits", 8, "tabulation digit width in bits")
	workersFlag := flag.Int("workers", 1, "number of parallel workers for building")
	attemptsFlag := flag.Int("max-attempts", 64, "hash pairs to try before giving up")
	seedFlag := flag.Uint64("seed", 0x1234567890abcdef, "construction seed")
	verbosity := flag.Int("v", 0, "log verbosity (0 or 1)")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (build phase only)")
	memprofile := flag.String("memprofile", "", "write memory profile to file (build phase only)")
	flag.Parse()

	logger := getLogger(*verbosity)
	ctx := logr.NewContext(context.Background(), logger)

	family, ok := parseFamily(*familyFlag)
	if !ok {
		logger.Error(nil, "unknown hash family", "family", *familyFlag)
		os.Exit(1)
	}
	numKeys := *keysFlag
	if numKeys <= 0 {
		logger.Error(nil, "need at least one key", "keys", numKeys)
		os.Exit(1)
	}

	fmt.Println("Generating keys...")
	rng := mrand.New(mrand.NewPCG(*seedFlag, ^*seedFlag))
	seen := make(map[int64]struct{}, numKeys)
	keys := make([]int64, 0, numKeys)
	for len(keys) < numKeys {
		k := int64(rng.Uint64())
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	seen = nil

	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()
	peaks := startPeakSampler(baseline.Alloc, baselineRSS)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logger.Error(err, "could not create CPU profile")
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error(err, "could not start CPU profile")
			os.Exit(1)
		}
	}

	fmt.Println("Building set...")
	buildStart := time.Now()
	set, err := mphset.Build(ctx, keys, *factorFlag,
		mphset.WithHashFamily(family),
		mphset.WithDigitBits(*digitBitsFlag),
		mphset.WithWorkers(*workersFlag),
		mphset.WithMaxAttempts(*attemptsFlag),
		mphset.WithSeed(*seedFlag),
	)
	buildDuration := time.Since(buildStart)

	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			logger.Error(err, "could not create memory profile")
		} else {
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				logger.Error(err, "could not write memory profile")
			}
			_ = f.Close()
		}
	}
	peaks.stop()
	peakHeapMem := peaks.alloc.Load() - baseline.Alloc
	peakRSSMem := peaks.rss.Load() - baselineRSS

	if err != nil {
		logger.Error(err, "build failed")
		os.Exit(1)
	}

	// Random query order, half members and half (almost surely) non-members.
	queryOrder := rng.Perm(numKeys)
	const numQueries = 100000

	fmt.Println("Warming up queries...")
	for i := range 10000 {
		_ = set.Contains(keys[queryOrder[i%numKeys]])
	}

	fmt.Println("Benchmarking queries...")
	hits := 0
	queryStart := time.Now()
	for i := range numQueries {
		q := keys[queryOrder[i%numKeys]]
		if i&1 == 1 {
			q = ^q
		}
		if set.Contains(q) {
			hits++
		}
	}
	queryDuration := time.Since(queryStart)
	avgLatency := float64(queryDuration.Nanoseconds()) / float64(numQueries)

	st := set.Stats()
	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦════════════════╦══════════════════╗\n")
	fmt.Printf("║ Family: %-12s║ Factor: %-6d ║ Workers: %-7d ║\n", st.HashFamily, st.Factor, *workersFlag)
	fmt.Printf("╠═════════════════════╬════════════════╬══════════════════╣\n")
	fmt.Printf("║ Metric              ║ Value          ║ Notes            ║\n")
	fmt.Printf("╠═════════════════════╬════════════════╬══════════════════╣\n")
	fmt.Printf("║ Bits per key        ║ %7.2f bits/key║ labels + slots   ║\n", st.BitsPerKey)
	fmt.Printf("║ Vertices            ║ %14d ║ -                ║\n", st.NumVertices)
	fmt.Printf("║ Attempts            ║ %14d ║ -                ║\n", st.Attempts)
	fmt.Printf("║ Query latency       ║ %9.1f ns   ║ %7d hits     ║\n", avgLatency, hits)
	fmt.Printf("║ Build time          ║ %9.2f sec  ║ -                ║\n", buildDuration.Seconds())
	fmt.Printf("║ Build throughput    ║ %9.2f M/sec║ -                ║\n", float64(numKeys)/buildDuration.Seconds()/1_000_000)
	fmt.Printf("║ Peak heap memory    ║ %9.1f MB   ║ -                ║\n", float64(peakHeapMem)/1_000_000)
	fmt.Printf("║ Peak RSS memory     ║ %9.1f MB   ║ -                ║\n", float64(peakRSSMem)/1_000_000)
	fmt.Printf("╚═════════════════════╩════════════════╩══════════════════╝\n")
}
