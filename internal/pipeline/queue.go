package pipeline

import (
	"sync"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
)

// Queue is the hand-off between the feed reader and the dispatcher. It is
// unbounded: Push never blocks or drops, so a slow consumer shows up as
// backlog (see Len) rather than stalling reads from the skimmer process.
// TryPop never blocks either. Events come out in the order they were pushed.
type Queue struct {
	mu    sync.Mutex
	items []domain.Event
	head  int
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event.
func (q *Queue) Push(e domain.Event) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()
}

// TryPop removes and returns the oldest event, or false when the queue is empty.
func (q *Queue) TryPop() (domain.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return domain.Event{}, false
	}
	e := q.items[q.head]
	q.items[q.head] = domain.Event{}
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return e, true
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
