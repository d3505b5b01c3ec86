package grid

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Listener receives notifications about a parent table.
type Listener func(ctx context.Context, n types.Notification)

// Subscription identifies one registered listener.
type Subscription struct {
	Table string
	Token uuid.UUID
}

type subscriber struct {
	token    uuid.UUID
	listener Listener
}

// Hub routes parent-table notifications to the grids that depend on them.
// Listeners run synchronously in registration order.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string][]subscriber
	logger *slog.Logger
}

// NewHub creates an empty hub. A nil logger discards output.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		subs:   make(map[string][]subscriber),
		logger: logger,
	}
}

// Subscribe registers l for notifications whose SourceTable is table.
func (h *Hub) Subscribe(table string, l Listener) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := subscriber{token: uuid.New(), listener: l}
	h.subs[table] = append(h.subs[table], s)
	h.logger.Debug("subscribed", slog.String("table", table), slog.String("token", s.token.String()))
	return Subscription{Table: table, Token: s.token}
}

// Unsubscribe removes a listener. It reports whether the subscription was
// registered.
func (h *Hub) Unsubscribe(sub Subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.subs[sub.Table]
	for i, s := range list {
		if s.token == sub.Token {
			h.subs[sub.Table] = append(list[:i:i], list[i+1:]...)
			if len(h.subs[sub.Table]) == 0 {
				delete(h.subs, sub.Table)
			}
			return true
		}
	}
	return false
}

// Publish delivers n to every listener of n.SourceTable and returns how many
// were called. Listeners added or removed during delivery take effect on the
// next Publish.
func (h *Hub) Publish(ctx context.Context, n types.Notification) int {
	h.mu.RLock()
	list := append([]subscriber(nil), h.subs[n.SourceTable]...)
	h.mu.RUnlock()

	h.logger.Debug("publishing",
		slog.String("table", n.SourceTable),
		slog.String("action", string(n.Action)),
		slog.Int64("row_id", n.RowID),
		slog.Int("listeners", len(list)))

	for _, s := range list {
		s.listener(ctx, n)
	}
	return len(list)
}

// Len returns the number of listeners registered for table.
func (h *Hub) Len(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}
