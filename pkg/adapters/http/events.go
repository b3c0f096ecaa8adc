package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/feedstream/internal/logging"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
)

// Event is one message pushed to SSE subscribers.
type Event struct {
	Op     string             `json:"op"`
	// Index is set for removed and added, including index 0.
	Index  *int               `json:"index,omitempty"`
	Leaves []domain.ViewState `json:"leaves,omitempty"`
	Key    domain.ChildKey    `json:"key,omitempty"`
}

// Broadcaster fans list changes out to SSE subscribers. It implements
// ports.StreamContentListener.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	buffer      int
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster. Subscribers get a buffer of size
// messages; slow clients lose messages beyond it.
func NewBroadcaster(buffer int, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = logging.NewNop()
	}
	if buffer <= 0 {
		buffer = 16
	}
	return &Broadcaster{
		subscribers: make(map[chan string]struct{}),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe registers a subscriber. The returned func unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan string, b.buffer)
	b.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, ch)
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Publish sends e to every subscriber.
func (b *Broadcaster) Publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		b.logger.Error("failed to encode event", "op", e.Op, "error", err)
		return
	}
	msg := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	b.logger.Debug("broadcasting", "op", e.Op, "subscribers", len(b.subscribers))
	for ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			b.logger.Warn("SSE: client buffer full, dropping message", "op", e.Op)
		}
	}
}

func (b *Broadcaster) ContentRemoved(index int) {
	b.Publish(Event{Op: "removed", Index: &index})
}

func (b *Broadcaster) ContentsAdded(start int, leaves []ports.Leaf) {
	states := make([]domain.ViewState, len(leaves))
	for i, leaf := range leaves {
		states[i] = leaf.State()
	}
	b.Publish(Event{Op: "added", Index: &start, Leaves: states})
}

func (b *Broadcaster) ContentsCleared() {
	b.Publish(Event{Op: "cleared"})
}
