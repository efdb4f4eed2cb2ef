// Package store keeps the RBN and sked page spots currently worth showing.
//
// A Store is owned by a single goroutine (the dispatcher) and does no locking.
// Snapshots are copies; nothing handed out aliases the buckets.
package store

import (
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
)

// DefaultMaxAge is how long a spot stays visible after its reported time.
const DefaultMaxAge = 30 * time.Minute

// Store holds one bucket per spot source. Within a bucket a callsign appears
// at most once and entries keep arrival order.
type Store struct {
	clock   clockwork.Clock
	maxAge  int // minutes
	buckets [2][]domain.Spot
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for age computation.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMaxAge overrides DefaultMaxAge. Ages are compared in whole minutes.
func WithMaxAge(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.maxAge = int(d / time.Minute)
		}
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		clock:  clockwork.NewRealClock(),
		maxAge: int(DefaultMaxAge / time.Minute),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert replaces any spot for the same callsign in the spot's bucket, appends
// the new spot, then evicts expired spots from both buckets. It returns the
// number of evicted spots.
func (s *Store) Upsert(spot domain.Spot) int {
	b := s.bucket(spot.Source)
	kept := (*b)[:0]
	for _, cur := range *b {
		if cur.Call != spot.Call {
			kept = append(kept, cur)
		}
	}
	*b = append(kept, spot)

	return s.EvictExpired()
}

// EvictExpired drops every spot older than the maximum age, measured now.
// It returns the number of evicted spots.
func (s *Store) EvictExpired() int {
	now := s.clock.Now()
	evicted := 0
	for i := range s.buckets {
		kept := s.buckets[i][:0]
		for _, spot := range s.buckets[i] {
			if domain.AgeMinutes(spot.Time, now) > s.maxAge {
				evicted++
				continue
			}
			kept = append(kept, spot)
		}
		clear(s.buckets[i][len(kept):])
		s.buckets[i] = kept
	}
	return evicted
}

// Reset empties one bucket, then evicts expired spots from the other. It
// returns the number of evicted spots, not counting the cleared ones.
func (s *Store) Reset(source domain.Source) int {
	b := s.bucket(source)
	clear(*b)
	*b = (*b)[:0]

	return s.EvictExpired()
}

// Len returns the number of spots in a bucket.
func (s *Store) Len(source domain.Source) int {
	return len(*s.bucket(source))
}

// Snapshot returns a copy of a bucket ordered freshest first. Spots with the
// same age keep their arrival order. Ages are computed at call time.
func (s *Store) Snapshot(source domain.Source) []domain.SpotView {
	now := s.clock.Now()
	b := *s.bucket(source)
	views := make([]domain.SpotView, len(b))
	for i, spot := range b {
		views[i] = domain.SpotView{Spot: spot, AgeMinutes: domain.AgeMinutes(spot.Time, now)}
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].AgeMinutes < views[j].AgeMinutes
	})
	return views
}

func (s *Store) bucket(source domain.Source) *[]domain.Spot {
	if source == domain.SourceSked {
		return &s.buckets[1]
	}
	return &s.buckets[0]
}
