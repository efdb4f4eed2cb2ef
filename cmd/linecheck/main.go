// Command linecheck classifies a captured skimmer feed offline. It reports
// how many lines fell into each kind, lists every extracted spot, and replays
// the spots through the store to check the dedup and age invariants.
//
// Usage:
//
//	go run ./cmd/linecheck -feed testdata/skimmer_feed.txt -now 2024-04-26T16:50:00Z
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/store"
)

// phase tracks pass/fail for a check phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

var kinds = []domain.Kind{
	domain.KindProgress,
	domain.KindReset,
	domain.KindUnrecognized,
	domain.KindRBN,
	domain.KindRBNEcho,
	domain.KindSked,
	domain.KindUnexpected,
}

func main() {
	feed := flag.String("feed", "", "path to a captured skimmer feed")
	now := flag.String("now", "", "RFC3339 time to compute spot ages against (default: current time)")
	maxAge := flag.Duration("max-age", store.DefaultMaxAge, "maximum spot age")
	verbose := flag.Bool("v", false, "list every extracted spot")
	flag.Parse()

	if *feed == "" {
		flag.Usage()
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	if *now != "" {
		t, err := time.Parse(time.RFC3339, *now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -now: %v\n", err)
			os.Exit(1)
		}
		clock = clockwork.NewFakeClockAt(t)
	}

	f, err := os.Open(*feed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	code := run(f, os.Stdout, clock, *maxAge, *verbose)
	_ = f.Close()
	os.Exit(code)
}

// report is what a feed check produced.
type report struct {
	lines  int
	counts map[domain.Kind]int
	spots  []domain.Spot
	phases []*phase
}

func run(feed io.Reader, out io.Writer, clock clockwork.Clock, maxAge time.Duration, verbose bool) int {
	r, err := check(feed, clock, maxAge)
	if err != nil {
		fmt.Fprintf(out, "FATAL: read feed: %v\n", err)
		return 1
	}

	fmt.Fprintln(out, "=== Skimmer Feed Check ===")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Lines: %d\n", r.lines)
	for _, k := range kinds {
		fmt.Fprintf(out, "  %-14s %d\n", k, r.counts[k])
	}

	if verbose {
		fmt.Fprintln(out)
		for _, s := range r.spots {
			fmt.Fprintf(out, "  %-4s %s %-8s %-10s %-10s %-3s %s | %s\n",
				s.Source, s.Time, s.Call, s.SKCC(), s.Name, s.Location, s.Detail(), s.Need)
		}
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range r.phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
	}

	for _, p := range r.phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(out, "\nCheck FAILED.")
	return 1
}

func check(feed io.Reader, clock clockwork.Clock, maxAge time.Duration) (report, error) {
	r := report{counts: make(map[domain.Kind]int)}
	classify := &phase{name: "Classification"}
	extract := &phase{name: "Extraction"}
	replay := &phase{name: "Store replay"}

	s := store.New(store.WithClock(clock), store.WithMaxAge(maxAge))

	scanner := bufio.NewScanner(feed)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := domain.StripBell(strings.TrimSpace(scanner.Text()))
		if line == "" {
			continue
		}
		r.lines++

		kind := domain.Classify(line)
		r.counts[kind]++

		switch {
		case kind == domain.KindUnexpected:
			classify.errorf("line %d: unexpected line %q", lineNum, line)
		case kind == domain.KindReset:
			s.Reset(domain.SourceSked)
		case kind.IsSpot():
			spot, err := domain.ExtractSpot(line, kind.Source(), clock.Now())
			if err != nil {
				extract.errorf("line %d: %v", lineNum, err)
				continue
			}
			if spot.Call == "" {
				extract.errorf("line %d: empty callsign", lineNum)
			}
			r.spots = append(r.spots, spot)
			s.Upsert(spot)
			checkStore(replay, s, lineNum, maxAge)
		}
	}
	if err := scanner.Err(); err != nil {
		return report{}, err
	}

	r.phases = []*phase{classify, extract, replay}
	return r, nil
}

// checkStore verifies that no bucket holds a callsign twice and that nothing
// older than maxAge survived the last upsert.
func checkStore(p *phase, s *store.Store, lineNum int, maxAge time.Duration) {
	limit := int(maxAge / time.Minute)
	for _, src := range []domain.Source{domain.SourceRBN, domain.SourceSked} {
		seen := make(map[string]bool)
		for _, v := range s.Snapshot(src) {
			if seen[v.Call] {
				p.errorf("line %d: %s holds %s twice", lineNum, src, v.Call)
			}
			seen[v.Call] = true
			if v.AgeMinutes > limit {
				p.errorf("line %d: %s %s is %d minutes old", lineNum, src, v.Call, v.AgeMinutes)
			}
		}
	}
}
