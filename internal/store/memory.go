package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stock-logistic/quoting-cli/internal/model"

	"github.com/rotisserie/eris"
)

// MemoryStore is an in-process Store for tests and single-shot CLI runs
// that do not need persistence.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	quotes   map[string]model.QuoteRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.Session),
		quotes:   make(map[string]model.QuoteRecord),
	}
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) CreateSession(_ context.Context, id string) (*model.Session, error) {
	sess := model.NewSession(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[sess.ID]; exists {
		return nil, eris.Errorf("memory: session %s already exists", sess.ID)
	}
	m.sessions[sess.ID] = cloneSession(sess)
	return sess, nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneSession(&sess)
	return &out, nil
}

func (m *MemoryStore) SaveSession(_ context.Context, sess *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sess.ID]; !ok {
		return eris.Wrapf(ErrNotFound, "session %s", sess.ID)
	}
	sess.UpdatedAt = time.Now().UTC()
	m.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return eris.Wrapf(ErrNotFound, "session %s", id)
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) ListSessions(_ context.Context, limit, offset int) ([]model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]model.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, cloneSession(&sess))
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return paginate(sessions, limit, offset), nil
}

func (m *MemoryStore) DeleteExpiredSessions(_ context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, sess := range m.sessions {
		if !sess.UpdatedAt.After(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) SaveQuote(_ context.Context, q *model.QuoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[q.QuoteID] = *q
	return nil
}

func (m *MemoryStore) GetQuote(_ context.Context, id string) (*model.QuoteRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quotes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &q, nil
}

func (m *MemoryStore) ListQuotes(_ context.Context, filter QuoteFilter) ([]model.QuoteRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	quotes := make([]model.QuoteRecord, 0, len(m.quotes))
	for _, q := range m.quotes {
		if filter.SessionID != "" && q.SessionID != filter.SessionID {
			continue
		}
		quotes = append(quotes, q)
	}
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].GeneratedAt.After(quotes[j].GeneratedAt)
	})
	return paginate(quotes, filter.Limit, filter.Offset), nil
}

func cloneSession(sess *model.Session) model.Session {
	out := *sess
	out.Fields = model.FieldSet{}
	out.Fields.Merge(sess.Fields)
	out.History = append([]model.Turn(nil), sess.History...)
	return out
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 100
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
