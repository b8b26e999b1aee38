package benchmark

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunEveryTarget(t *testing.T) {
	for _, target := range AllTargets {
		opts := &Options{Target: target, Rounds: 3, Keys: 50, Seed: 7}
		r, err := Run(opts)
		if err != nil {
			t.Fatalf("%s: %v", target, err)
		}
		if r.Rounds != 3 || r.Ops == 0 {
			t.Errorf("%s: unexpected results %+v", target, r)
		}
		if r.Min > r.Median || r.Median > r.Max {
			t.Errorf("%s: percentiles out of order: %+v", target, r)
		}
	}
}

func TestRunRejectsEmpty(t *testing.T) {
	if _, err := Run(&Options{Target: TargetXHash}); err == nil {
		t.Error("expected error for zero rounds")
	}
}

func TestParseTarget(t *testing.T) {
	for _, target := range AllTargets {
		got, err := ParseTarget(strings.ToUpper(target.String()))
		if err != nil || got != target {
			t.Errorf("ParseTarget(%s) = %v, %v", target, got, err)
		}
	}
	if _, err := ParseTarget("redis"); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestCalculateStats(t *testing.T) {
	lat := []time.Duration{5, 1, 4, 2, 3}
	r := calculateStats(lat, 20)
	if r.Min != 1 || r.Max != 5 || r.Median != 3 || r.Avg != 3 {
		t.Errorf("unexpected stats %+v", r)
	}
	if empty := calculateStats(nil, 9); empty.Rounds != 0 || empty.TotalTime != 9 {
		t.Errorf("unexpected empty stats %+v", empty)
	}
}

func TestSaveResultsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	r := &Results{Target: TargetGoMap, Keys: 10, Rounds: 1, Ops: 25, TotalTime: 250}
	if err := SaveResultsToFile([]*Results{r}, path); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "map,10,1,25,10.0,") {
		t.Errorf("unexpected csv %q", b)
	}
}
