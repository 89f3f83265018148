// Package store persists conversation sessions and generated quotes.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

// ErrNotFound is returned when a session or quote id has no record.
var ErrNotFound = eris.New("store: not found")

// QuoteFilter specifies criteria for listing quotes.
type QuoteFilter struct {
	SessionID string `json:"session_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the quoting flow.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, id string) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	SaveSession(ctx context.Context, s *model.Session) error
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context, limit, offset int) ([]model.Session, error)
	DeleteExpiredSessions(ctx context.Context, ttl time.Duration) (int, error)

	// Quotes
	SaveQuote(ctx context.Context, q *model.QuoteRecord) error
	GetQuote(ctx context.Context, id string) (*model.QuoteRecord, error)
	ListQuotes(ctx context.Context, filter QuoteFilter) ([]model.QuoteRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
