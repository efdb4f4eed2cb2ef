package httpadapter

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
)

const subscriberBuffer = 8

// SnapshotHub keeps the latest snapshot for HTTP clients and fans every new
// one out to websocket subscribers. It implements pipeline.Renderer.
type SnapshotHub struct {
	logger *slog.Logger

	mu     sync.Mutex
	latest []byte
	subs   map[int]chan []byte
	nextID int
}

// NewSnapshotHub creates a hub whose latest snapshot is empty.
func NewSnapshotHub(logger *slog.Logger) *SnapshotHub {
	h := &SnapshotHub{logger: logger, subs: make(map[int]chan []byte)}
	h.latest = h.encode(domain.Snapshot{RBN: []domain.SpotView{}, Sked: []domain.SpotView{}})
	return h
}

// Render stores snap as the latest snapshot and offers it to every subscriber.
// A subscriber that is still behind loses its oldest pending snapshot; only
// the newest state matters.
func (h *SnapshotHub) Render(snap domain.Snapshot) {
	if snap.RBN == nil {
		snap.RBN = []domain.SpotView{}
	}
	if snap.Sked == nil {
		snap.Sked = []domain.SpotView{}
	}
	data := h.encode(snap)
	if data == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = data
	for _, ch := range h.subs {
		select {
		case ch <- data:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- data:
			default:
			}
		}
	}
}

// Latest returns the JSON encoding of the most recent snapshot.
func (h *SnapshotHub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Subscribe registers a subscriber. The channel starts with the latest
// snapshot and is closed by cancel.
func (h *SnapshotHub) Subscribe() (<-chan []byte, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan []byte, subscriberBuffer)
	ch <- h.latest
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Subscribers returns the number of active subscribers.
func (h *SnapshotHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *SnapshotHub) encode(snap domain.Snapshot) []byte {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("encode snapshot", "error", err)
		return nil
	}
	return data
}
