// Command fakefeed replays a captured skimmer feed on stdout so the service
// can run without the real skimmer:
//
//	SKIMMER_COMMAND="go run ./cmd/fakefeed -feed testdata/skimmer_feed.txt -restamp -loop" go run ./cmd/skimmer
//
// With -restamp every spot timestamp is replaced by the current UTC time, so
// the replayed spots are fresh enough to stay in the tables.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
)

type options struct {
	delay   time.Duration
	restamp bool
	bell    bool
	loop    bool
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	feed := flag.String("feed", "", "path to a captured skimmer feed")
	delay := flag.Duration("delay", 500*time.Millisecond, "pause between lines")
	restamp := flag.Bool("restamp", false, "replace spot timestamps with the current UTC time")
	bell := flag.Bool("bell", false, "wrap new spots in BEL bytes like the skimmer does")
	loop := flag.Bool("loop", false, "start over at the end of the feed")
	flag.Parse()

	if *feed == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -feed")
	}

	lines, err := readLines(*feed)
	if err != nil {
		return err
	}

	opts := options{delay: *delay, restamp: *restamp, bell: *bell, loop: *loop}
	return replay(os.Stdout, lines, opts, clockwork.NewRealClock())
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

func replay(w io.Writer, lines []string, opts options, clock clockwork.Clock) error {
	out := bufio.NewWriter(w)
	for {
		for _, line := range lines {
			if opts.restamp {
				line = restamp(line, clock.Now())
			}
			if opts.bell && domain.Classify(line) == domain.KindRBN {
				line = "\a" + line + "\a"
			}
			if _, err := out.WriteString(line + "\n"); err != nil {
				return err
			}
			// The skimmer's stdout is line buffered; match that.
			if err := out.Flush(); err != nil {
				return err
			}
			if opts.delay > 0 {
				clock.Sleep(opts.delay)
			}
		}
		if !opts.loop || len(lines) == 0 {
			return nil
		}
	}
}

// restamp rewrites the leading HHMMZ of a spot line to now.
func restamp(line string, now time.Time) string {
	if !domain.Classify(line).IsSpot() {
		return line
	}
	if _, err := domain.ParseZulu(line[:5]); err != nil {
		return line
	}
	var b strings.Builder
	b.WriteString(now.UTC().Format("1504"))
	b.WriteString(line[4:])
	return b.String()
}
