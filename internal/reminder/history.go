package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/saharsh3008/task/internal/clock"
	"github.com/saharsh3008/task/internal/model"
)

type Delivery struct {
	ID     int       `json:"id"`
	TaskID string    `json:"taskId"`
	Title  string    `json:"title"`
	At     time.Time `json:"at"`
}

// History is an in-memory Notifier that remembers the most recent
// deliveries, newest last.
type History struct {
	mu     sync.RWMutex
	clock  clock.Clock
	limit  int
	items  []Delivery
	nextID int
}

func NewHistory(c clock.Clock, limit int) *History {
	if c == nil {
		c = clock.Real{}
	}
	if limit <= 0 {
		limit = 100
	}
	return &History{
		clock:  c,
		limit:  limit,
		items:  make([]Delivery, 0),
		nextID: 1,
	}
}

func (h *History) Notify(_ context.Context, t model.Task) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = append(h.items, Delivery{
		ID:     h.nextID,
		TaskID: t.ID,
		Title:  t.Title,
		At:     h.clock.Now(),
	})
	h.nextID++
	if over := len(h.items) - h.limit; over > 0 {
		h.items = h.items[over:]
	}
	return nil
}

// Since returns deliveries at or after since.
func (h *History) Since(since time.Time) []Delivery {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Delivery, 0)
	for _, d := range h.items {
		if d.At.Before(since) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = make([]Delivery, 0)
	h.nextID = 1
}
