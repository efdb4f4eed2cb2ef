package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column offsets of the fixed part of a spot line, see the package docs.
const (
	timeStart, timeEnd             = 0, 5
	callStart, callEnd             = 6, 12
	skccNumberStart, skccNumberEnd = 14, 19
	skccLevelAt                    = 20
	nameStart, nameEnd             = 25, 35
	locationStart, locationEnd     = 35, 38
	freqStart, freqEnd             = 42, 51
)

const (
	youNeedPrefix  = "YOU need them for "
	theyNeedPrefix = "THEY need you for "
	statusPrefix   = "STATUS: "
)

// ErrInvalidTime is returned when a spot line does not start with a usable HHMMZ time.
var ErrInvalidTime = errors.New("invalid zulu time")

// ExtractSpot pulls a Spot out of a line that Classify reported as a spot and
// stamps it with receivedAt. Short lines yield empty fields; only an unparsable
// timestamp is an error, since a spot without a time cannot be aged.
func ExtractSpot(line string, source Source, receivedAt time.Time) (Spot, error) {
	zulu, err := ParseZulu(span(line, timeStart, timeEnd))
	if err != nil {
		return Spot{}, fmt.Errorf("extract spot: %w", err)
	}

	spot := Spot{
		Source:     source,
		Time:       zulu,
		Call:       strings.TrimSpace(span(line, callStart, callEnd)),
		SKCCNumber: strings.TrimSpace(span(line, skccNumberStart, skccNumberEnd)),
		SKCCLevel:  span(line, skccLevelAt, skccLevelAt+1),
		Name:       strings.TrimSpace(span(line, nameStart, nameEnd)),
		Location:   strings.TrimSpace(span(line, locationStart, locationEnd)),
		Raw:        line,
		ReceivedAt: receivedAt,
	}

	if source == SourceRBN {
		spot.Frequency, spot.WPM = extractFrequency(line)
	}
	spot.Need, spot.Status = extractSegments(line)

	return spot, nil
}

// ParseZulu parses "HHMM" or "HHMMZ" into a ZuluTime.
func ParseZulu(s string) (ZuluTime, error) {
	s = strings.TrimSuffix(s, "Z")
	if len(s) != 4 {
		return ZuluTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return ZuluTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
	}
	hour, _ := strconv.Atoi(s[:2])
	minute, _ := strconv.Atoi(s[2:])
	if hour > 23 || minute > 59 {
		return ZuluTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return ZuluTime{Hour: hour, Minute: minute}, nil
}

// extractFrequency reads the frequency and optional WPM of an RBN line.
//
// Relayed lines carry "Last spotted 2 minutes ago on 7058.0;". Direct RBN
// lines have the frequency in a fixed column, and a patched skimmer appends
// "(22 WPM)" after the reporting station.
func extractFrequency(line string) (freq, wpm string) {
	if strings.Contains(line, "Last spotted") {
		idx := strings.Index(line, "ago on ")
		if idx == -1 {
			return "", ""
		}
		rest := line[idx+len("ago on "):]
		if end := strings.IndexByte(rest, ';'); end != -1 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest), ""
	}

	freq = strings.TrimSpace(span(line, freqStart, freqEnd))
	if wpmIdx := strings.Index(line, " WPM)"); wpmIdx != -1 {
		if open := strings.LastIndexByte(line[:wpmIdx], '('); open != -1 {
			wpm = strings.TrimSpace(line[open+1 : wpmIdx])
		}
	}
	return freq, wpm
}

// extractSegments scans the ';' separated tail of a line. The "THEY need you
// for" segment describes what this station offers the other side and is not kept.
func extractSegments(line string) (need, status string) {
	for _, part := range strings.Split(line, ";") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, youNeedPrefix):
			need = strings.TrimPrefix(part, youNeedPrefix)
		case strings.HasPrefix(part, theyNeedPrefix):
			// discarded
		case strings.HasPrefix(part, statusPrefix):
			status = strings.TrimPrefix(part, statusPrefix)
		}
	}
	return need, status
}

// span returns line[start:end] clamped to the line length. A span that starts
// past the end of the line is empty.
func span(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}
