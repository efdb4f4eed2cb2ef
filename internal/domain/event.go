package domain

// EventKind discriminates the events passed from the feed reader to the dispatcher.
type EventKind int

const (
	// EventFeedback carries status text for the operator, including the sked reset sentinel.
	EventFeedback EventKind = iota
	// EventSpot carries a freshly extracted spot.
	EventSpot
)

func (k EventKind) String() string {
	if k == EventSpot {
		return "spot"
	}
	return "feedback"
}

// Event is one unit of work for the dispatcher.
type Event struct {
	Kind EventKind
	Text string // EventFeedback only
	Spot Spot   // EventSpot only
}

// FeedbackEvent wraps status text.
func FeedbackEvent(text string) Event {
	return Event{Kind: EventFeedback, Text: text}
}

// SpotEvent wraps an extracted spot.
func SpotEvent(s Spot) Event {
	return Event{Kind: EventSpot, Spot: s}
}

// IsReset reports whether the event is the sked page reset sentinel.
func (e Event) IsReset() bool {
	return e.Kind == EventFeedback && e.Text == SkedPageSentinel
}
