package service

import (
	"sync"
	"time"

	"chatbot/internal/model"
)

// ContextStore is the injectable contract for per-conversation state.
// Backed by an in-memory map for single-instance deployments; a multi
// instance deployment needs sticky routing per user or an external store.
type ContextStore interface {
	Get(userID string, channel model.Channel) model.ConversationContext
	Update(userID string, channel model.Channel, message, intent, response string)
	MergeQuoteData(userID string, channel model.Channel, partial map[string]string)
	RecentHistory(userID string, channel model.Channel, n int) []model.HistoryEntry
}

type contextKey struct {
	userID  string
	channel model.Channel
}

// contextEntry owns one conversation's state. Its mutex serializes all
// read-modify-write sequences for that (user, channel) pair so rapid-fire
// messages cannot lose history updates; entries for different keys never
// contend.
type contextEntry struct {
	mu  sync.Mutex
	ctx model.ConversationContext
}

// MemoryContextStore is the process-local ContextStore implementation
type MemoryContextStore struct {
	mu         sync.Mutex
	entries    map[contextKey]*contextEntry
	timeout    time.Duration
	maxHistory int
	now        func() time.Time
}

// NewMemoryContextStore creates a store with the given expiry timeout and
// history bound
func NewMemoryContextStore(timeout time.Duration, maxHistory int) *MemoryContextStore {
	return &MemoryContextStore{
		entries:    make(map[contextKey]*contextEntry),
		timeout:    timeout,
		maxHistory: maxHistory,
		now:        time.Now,
	}
}

// entry returns the locked entry for a key, creating it lazily and resetting
// it in place when expired. The caller must unlock it.
func (s *MemoryContextStore) entry(userID string, channel model.Channel) *contextEntry {
	key := contextKey{userID: userID, channel: channel}

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &contextEntry{ctx: s.freshContext(userID, channel)}
		s.entries[key] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	if s.now().Sub(e.ctx.LastActivity) > s.timeout {
		// Reset in place rather than delete-and-recreate: the storage slot
		// (and any goroutine already holding the entry) stays valid.
		e.ctx = s.freshContext(userID, channel)
	}
	return e
}

func (s *MemoryContextStore) freshContext(userID string, channel model.Channel) model.ConversationContext {
	return model.ConversationContext{
		UserID:       userID,
		Channel:      channel,
		History:      []model.HistoryEntry{},
		QuoteData:    map[string]string{},
		LastActivity: s.now(),
	}
}

// Get returns a copy of the context for (userID, channel), creating it with
// empty defaults if absent. An expired context is reset before it is returned.
func (s *MemoryContextStore) Get(userID string, channel model.Channel) model.ConversationContext {
	e := s.entry(userID, channel)
	defer e.mu.Unlock()
	return copyContext(e.ctx)
}

// Update appends a history entry, sets the current intent and refreshes
// activity. History is bounded: the oldest entry is evicted first.
func (s *MemoryContextStore) Update(userID string, channel model.Channel, message, intent, response string) {
	e := s.entry(userID, channel)
	defer e.mu.Unlock()

	now := s.now()
	e.ctx.CurrentIntent = intent
	e.ctx.LastActivity = now
	e.ctx.Step++
	e.ctx.History = append(e.ctx.History, model.HistoryEntry{
		Timestamp: now,
		Message:   message,
		Intent:    intent,
		Response:  response,
	})
	if len(e.ctx.History) > s.maxHistory {
		e.ctx.History = e.ctx.History[len(e.ctx.History)-s.maxHistory:]
	}
}

// MergeQuoteData shallow-merges partial data into the in-progress structured
// state, used by multi-turn quote collection
func (s *MemoryContextStore) MergeQuoteData(userID string, channel model.Channel, partial map[string]string) {
	e := s.entry(userID, channel)
	defer e.mu.Unlock()

	if e.ctx.QuoteData == nil {
		e.ctx.QuoteData = make(map[string]string, len(partial))
	}
	for k, v := range partial {
		e.ctx.QuoteData[k] = v
	}
	e.ctx.LastActivity = s.now()
}

// RecentHistory returns up to the n most recent history turns, oldest first
func (s *MemoryContextStore) RecentHistory(userID string, channel model.Channel, n int) []model.HistoryEntry {
	e := s.entry(userID, channel)
	defer e.mu.Unlock()

	history := e.ctx.History
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]model.HistoryEntry, len(history))
	copy(out, history)
	return out
}

// QuoteInProgress reports whether a quote collection flow is active for the
// conversation
func (s *MemoryContextStore) QuoteInProgress(userID string, channel model.Channel) bool {
	e := s.entry(userID, channel)
	defer e.mu.Unlock()

	if len(e.ctx.QuoteData) == 0 {
		return false
	}
	return e.ctx.CurrentIntent == "cotizacion_gps" || e.ctx.CurrentIntent == "cotizacion_camaras"
}

// copyContext deep-copies mutable fields so no caller holds a reference into
// store-owned state
func copyContext(ctx model.ConversationContext) model.ConversationContext {
	out := ctx
	out.History = make([]model.HistoryEntry, len(ctx.History))
	copy(out.History, ctx.History)
	out.QuoteData = make(map[string]string, len(ctx.QuoteData))
	for k, v := range ctx.QuoteData {
		out.QuoteData[k] = v
	}
	return out
}
