package domain

import "strings"

// SkedPageSentinel is printed by the skimmer each time it re-reads the sked
// page; everything previously reported from the page is stale after it.
const SkedPageSentinel = "=========== SKCC Sked Page ============"

const bell = '\a'

// Kind is the outcome of classifying one feed line.
type Kind int

const (
	// KindUnexpected matched nothing; it is logged and shown as feedback.
	KindUnexpected Kind = iota
	// KindProgress is a progress line starting with '.'.
	KindProgress
	// KindReset is the sked page sentinel.
	KindReset
	// KindUnrecognized does not start with an HHMMZ timestamp.
	KindUnrecognized
	// KindRBN is a new RBN spot.
	KindRBN
	// KindRBNEcho is an RBN-shaped line without the new-spot flag.
	KindRBNEcho
	// KindSked is a sked page spot.
	KindSked
)

var kindNames = [...]string{
	KindUnexpected:   "unexpected",
	KindProgress:     "progress",
	KindReset:        "reset",
	KindUnrecognized: "unrecognized",
	KindRBN:          "rbn",
	KindRBNEcho:      "rbn_echo",
	KindSked:         "sked",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsSpot reports whether lines of this kind go to the extractor.
func (k Kind) IsSpot() bool {
	return k == KindRBN || k == KindSked
}

// IsFeedback reports whether lines of this kind are forwarded as operator feedback.
func (k Kind) IsFeedback() bool {
	switch k {
	case KindProgress, KindReset, KindUnrecognized, KindUnexpected:
		return true
	default:
		return false
	}
}

// Source maps a spot kind to its store bucket. Only meaningful when IsSpot is true.
func (k Kind) Source() Source {
	if k == KindSked {
		return SourceSked
	}
	return SourceRBN
}

// StripBell removes a single BEL byte from each end of the line.
func StripBell(line string) string {
	if line != "" && line[0] == bell {
		line = line[1:]
	}
	if line != "" && line[len(line)-1] == bell {
		line = line[:len(line)-1]
	}
	return line
}

// Classify decides what a bell-stripped line is. The RBN shape is tested
// before the sked shape, so a line matching both is an RBN line.
func Classify(line string) Kind {
	if strings.HasPrefix(line, ".") {
		return KindProgress
	}
	if line == SkedPageSentinel {
		return KindReset
	}
	// Spot lines start like "1858Z".
	if len(line) > 4 && line[4] != 'Z' {
		return KindUnrecognized
	}
	if isRBNShaped(line) {
		if strings.Contains(line, "+") {
			return KindRBN
		}
		return KindRBNEcho
	}
	if strings.Contains(line, " need ") {
		return KindSked
	}
	return KindUnexpected
}

func isRBNShaped(line string) bool {
	if strings.Contains(line, ") on ") && strings.Contains(line, " by ") {
		return true
	}
	return strings.Contains(line, "Last spotted ") && strings.Contains(line, " on ")
}
