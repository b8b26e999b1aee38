// Package benchmark times xhash tables against Go maps and the kson and kexpr
// parsers, reporting per-round latency percentiles.
package benchmark

import (
	"fmt"
	"math/rand"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"xlib-go/pkg/kexpr"
	"xlib-go/pkg/kson"
	"xlib-go/pkg/log"
	"xlib-go/pkg/xhash"
)

// Target selects what a run exercises.
type Target int

const (
	TargetXHash Target = iota // xhash string map: put, get, del
	TargetGoMap               // built-in map with the same workload
	TargetKSON                // kson.Parse of a generated document
	TargetKExpr               // kexpr.Parse of a generated expression
)

func (t Target) String() string {
	switch t {
	case TargetXHash:
		return "xhash"
	case TargetGoMap:
		return "map"
	case TargetKSON:
		return "kson"
	case TargetKExpr:
		return "kexpr"
	default:
		return "unknown"
	}
}

// ParseTarget maps a name printed by String back to its Target.
func ParseTarget(name string) (Target, error) {
	for _, t := range AllTargets {
		if t.String() == strings.ToLower(name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("benchmark: unknown target %q", name)
}

var AllTargets = []Target{TargetXHash, TargetGoMap, TargetKSON, TargetKExpr}

type Options struct {
	Target Target
	Rounds int   // timed rounds
	Keys   int   // operations per round; document members for kson
	Seed   int64 // key shuffle seed
}

func DefaultOptions() *Options {
	return &Options{
		Target: TargetXHash,
		Rounds: 200,
		Keys:   10000,
		Seed:   1,
	}
}

// Results holds the latency distribution of one run. Latencies are per round.
type Results struct {
	Target    Target
	Keys      int
	Rounds    int
	Ops       int // operations completed over all rounds
	Min       time.Duration
	Max       time.Duration
	Avg       time.Duration
	Median    time.Duration
	P95       time.Duration
	P99       time.Duration
	TotalTime time.Duration
}

// NsPerOp is the average cost of one operation.
func (r *Results) NsPerOp() float64 {
	if r.Ops == 0 {
		return 0
	}
	return float64(r.TotalTime.Nanoseconds()) / float64(r.Ops)
}

func keys(n int, seed int64) []string {
	ks := make([]string, n)
	for i := range ks {
		ks[i] = "key:" + strconv.Itoa(i)
	}
	rand.New(rand.NewSource(seed)).Shuffle(n, func(i, j int) { ks[i], ks[j] = ks[j], ks[i] })
	return ks
}

// round runs one batch of work and returns the number of operations done.
type round func() (int, error)

func xhashRound(ks []string) round {
	return func() (int, error) {
		t := xhash.NewStringMap[int]()
		defer t.Destroy()
		for i, k := range ks {
			it, _, err := t.Put(k)
			if err != nil {
				return 0, err
			}
			t.SetValue(it, i)
		}
		for _, k := range ks {
			if !t.Found(k) {
				return 0, fmt.Errorf("xhash: lost key %q", k)
			}
		}
		for _, k := range ks[:len(ks)/2] {
			t.Del(t.Get(k))
		}
		return len(ks)*2 + len(ks)/2, nil
	}
}

func mapRound(ks []string) round {
	return func() (int, error) {
		m := make(map[string]int)
		for i, k := range ks {
			m[k] = i
		}
		for _, k := range ks {
			if _, ok := m[k]; !ok {
				return 0, fmt.Errorf("map: lost key %q", k)
			}
		}
		for _, k := range ks[:len(ks)/2] {
			delete(m, k)
		}
		return len(ks)*2 + len(ks)/2, nil
	}
}

func document(ks []string) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range ks {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `"%s":[%d,'v%d',{x:true}]`, k, i, i)
	}
	sb.WriteByte('}')
	return sb.String()
}

func ksonRound(doc string) round {
	return func() (int, error) {
		a, err := kson.Parse(doc)
		if err != nil {
			return 0, err
		}
		n := a.Len()
		a.Release()
		return n, nil
	}
}

func expression(n int) string {
	var sb strings.Builder
	for i := range n {
		if i > 0 {
			sb.WriteString(" + ")
		}
		fmt.Fprintf(&sb, "f%d(x%d, %d) * (y - %d.5)", i%7, i, i, i)
	}
	return sb.String()
}

func kexprRound(src string) round {
	return func() (int, error) {
		e, err := kexpr.Parse(src)
		if err != nil {
			return 0, err
		}
		return e.Len(), nil
	}
}

// Run executes opts.Rounds rounds of the selected target.
func Run(opts *Options) (*Results, error) {
	if opts.Rounds <= 0 || opts.Keys <= 0 {
		return nil, fmt.Errorf("benchmark: rounds and keys must be positive")
	}
	ks := keys(opts.Keys, opts.Seed)
	var r round
	switch opts.Target {
	case TargetXHash:
		r = xhashRound(ks)
	case TargetGoMap:
		r = mapRound(ks)
	case TargetKSON:
		r = ksonRound(document(ks))
	case TargetKExpr:
		r = kexprRound(expression(min(opts.Keys, 1000)))
	default:
		return nil, fmt.Errorf("benchmark: unknown target %d", opts.Target)
	}

	latencies := make([]time.Duration, 0, opts.Rounds)
	ops := 0
	start := time.Now()
	for range opts.Rounds {
		roundStart := time.Now()
		n, err := r()
		if err != nil {
			return nil, fmt.Errorf("benchmark %s: %w", opts.Target, err)
		}
		latencies = append(latencies, time.Since(roundStart))
		ops += n
	}
	results := calculateStats(latencies, time.Since(start))
	results.Target = opts.Target
	results.Keys = opts.Keys
	results.Ops = ops
	return results, nil
}

// calculateStats sorts latencies in place.
func calculateStats(latencies []time.Duration, totalTime time.Duration) *Results {
	if len(latencies) == 0 {
		return &Results{TotalTime: totalTime}
	}
	slices.Sort(latencies)
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	n := len(latencies)
	return &Results{
		Rounds:    n,
		Min:       latencies[0],
		Max:       latencies[n-1],
		Avg:       sum / time.Duration(n),
		Median:    latencies[n/2],
		P95:       latencies[n*95/100],
		P99:       latencies[n*99/100],
		TotalTime: totalTime,
	}
}

// RunAll runs every target with the options of base. A failing target is
// logged and skipped.
func RunAll(base *Options) []*Results {
	var results []*Results
	for _, target := range AllTargets {
		opts := *base
		opts.Target = target
		log.Info().Str("target", target.String()).Int("keys", opts.Keys).Msg("running benchmark")
		r, err := Run(&opts)
		if err != nil {
			log.Error().Err(err).Str("target", target.String()).Msg("benchmark failed")
			continue
		}
		results = append(results, r)
	}
	return results
}

// PrintResults writes a human-readable summary to stdout.
func PrintResults(r *Results) {
	fmt.Printf("=== Benchmark: %s ===\n", r.Target)
	fmt.Printf("Keys: %d\n", r.Keys)
	fmt.Printf("Rounds: %d\n", r.Rounds)
	fmt.Printf("Operations: %d (%.1f ns/op)\n", r.Ops, r.NsPerOp())
	fmt.Printf("Total Time: %v\n", r.TotalTime)
	fmt.Printf("Min Round: %v\n", r.Min)
	fmt.Printf("Avg Round: %v\n", r.Avg)
	fmt.Printf("Median Round: %v\n", r.Median)
	fmt.Printf("95th Percentile: %v\n", r.P95)
	fmt.Printf("99th Percentile: %v\n", r.P99)
	fmt.Printf("Max Round: %v\n", r.Max)
	fmt.Println("==========================================")
}

// SaveResultsToFile writes results as CSV with nanosecond durations.
func SaveResultsToFile(results []*Results, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("Target,Keys,Rounds,Ops,NsPerOp,Min,Avg,Median,P95,P99,Max,TotalTime\n"); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(f, "%s,%d,%d,%d,%.1f,%d,%d,%d,%d,%d,%d,%d\n",
			r.Target, r.Keys, r.Rounds, r.Ops, r.NsPerOp(),
			r.Min.Nanoseconds(), r.Avg.Nanoseconds(), r.Median.Nanoseconds(),
			r.P95.Nanoseconds(), r.P99.Nanoseconds(), r.Max.Nanoseconds(),
			r.TotalTime.Nanoseconds()); err != nil {
			return err
		}
	}
	return nil
}
