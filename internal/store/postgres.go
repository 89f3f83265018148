package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/stock-logistic/quoting-cli/internal/db"
	"github.com/stock-logistic/quoting-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot path of the conversational loop.
var preparedStatements = map[string]string{
	"insert_session": `INSERT INTO sessions (id, fields, history, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"get_session":    `SELECT id, fields, history, status, quote_id, created_at, updated_at FROM sessions WHERE id = $1`,
	"update_session": `UPDATE sessions SET fields = $1, history = $2, status = $3, quote_id = $4, updated_at = $5 WHERE id = $6`,
	"save_quote":     `INSERT INTO quotes (id, session_id, record, generated_at) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record`,
	"get_quote":      `SELECT record FROM quotes WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	fields     JSONB NOT NULL DEFAULT '{}',
	history    JSONB NOT NULL DEFAULT '[]',
	status     TEXT NOT NULL DEFAULT 'collecting',
	quote_id   TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quotes (
	id           TEXT PRIMARY KEY,
	session_id   TEXT,
	record       JSONB NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
CREATE INDEX IF NOT EXISTS idx_quotes_session_id ON quotes(session_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, id string) (*model.Session, error) {
	sess := model.NewSession(id)

	fieldsJSON, historyJSON, err := marshalSession(sess)
	if err != nil {
		return nil, err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (id, fields, history, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID, fieldsJSON, historyJSON, string(sess.Status), sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert session %s", sess.ID)
	}
	return sess, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, fields, history, status, quote_id, created_at, updated_at FROM sessions WHERE id = $1`,
		id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

func (s *PostgresStore) SaveSession(ctx context.Context, sess *model.Session) error {
	sess.UpdatedAt = time.Now().UTC()

	fieldsJSON, historyJSON, err := marshalSession(sess)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET fields = $1, history = $2, status = $3, quote_id = $4, updated_at = $5 WHERE id = $6`,
		fieldsJSON, historyJSON, string(sess.Status), nullString(sess.QuoteID), sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update session %s", sess.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "session %s", sess.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete session %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "session %s", id)
	}
	return nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, limit, offset int) ([]model.Session, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, fields, history, status, quote_id, created_at, updated_at FROM sessions
		 ORDER BY updated_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sessions")
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, eris.Wrap(rows.Err(), "postgres: list sessions iterate")
}

func (s *PostgresStore) DeleteExpiredSessions(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE updated_at <= $1`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired sessions")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) SaveQuote(ctx context.Context, q *model.QuoteRecord) error {
	recordJSON, err := json.Marshal(q)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal quote")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quotes (id, session_id, record, generated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record`,
		q.QuoteID, nullString(q.SessionID), string(recordJSON), q.GeneratedAt,
	)
	return eris.Wrapf(err, "postgres: save quote %s", q.QuoteID)
}

func (s *PostgresStore) GetQuote(ctx context.Context, id string) (*model.QuoteRecord, error) {
	var recordJSON string
	err := s.pool.QueryRow(ctx, `SELECT record FROM quotes WHERE id = $1`, id).Scan(&recordJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get quote %s", id)
	}
	return unmarshalQuote(recordJSON)
}

func (s *PostgresStore) ListQuotes(ctx context.Context, filter QuoteFilter) ([]model.QuoteRecord, error) {
	query := `SELECT record FROM quotes WHERE 1=1`
	var args []any

	if filter.SessionID != "" {
		args = append(args, filter.SessionID)
		query += ` AND session_id = $1`
	}
	query += ` ORDER BY generated_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list quotes")
	}
	defer rows.Close()

	var quotes []model.QuoteRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan quote")
		}
		q, err := unmarshalQuote(recordJSON)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, eris.Wrap(rows.Err(), "postgres: list quotes iterate")
}
