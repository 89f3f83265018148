package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	fields     TEXT NOT NULL DEFAULT '{}',
	history    TEXT NOT NULL DEFAULT '[]',
	status     TEXT NOT NULL DEFAULT 'collecting',
	quote_id   TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS quotes (
	id           TEXT PRIMARY KEY,
	session_id   TEXT,
	record       TEXT NOT NULL,
	generated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
CREATE INDEX IF NOT EXISTS idx_quotes_session_id ON quotes(session_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSession(ctx context.Context, id string) (*model.Session, error) {
	sess := model.NewSession(id)

	fieldsJSON, historyJSON, err := marshalSession(sess)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, fields, history, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, fieldsJSON, historyJSON, string(sess.Status), sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert session %s", sess.ID)
	}
	return sess, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, fields, history, status, quote_id, created_at, updated_at FROM sessions WHERE id = ?`,
		id,
	)
	return scanSession(row)
}

func (s *SQLiteStore) SaveSession(ctx context.Context, sess *model.Session) error {
	sess.UpdatedAt = time.Now().UTC()

	fieldsJSON, historyJSON, err := marshalSession(sess)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET fields = ?, history = ?, status = ?, quote_id = ?, updated_at = ? WHERE id = ?`,
		fieldsJSON, historyJSON, string(sess.Status), nullString(sess.QuoteID), sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update session %s", sess.ID)
	}
	return checkRowsAffected(res, "session", sess.ID)
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete session %s", id)
	}
	return checkRowsAffected(res, "session", id)
}

func (s *SQLiteStore) ListSessions(ctx context.Context, limit, offset int) ([]model.Session, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields, history, status, quote_id, created_at, updated_at FROM sessions
		 ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sessions")
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
	return sessions, eris.Wrap(rows.Err(), "sqlite: list sessions iterate")
}

func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at <= ?`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired sessions")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) SaveQuote(ctx context.Context, q *model.QuoteRecord) error {
	recordJSON, err := json.Marshal(q)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal quote")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quotes (id, session_id, record, generated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET record = excluded.record`,
		q.QuoteID, q.SessionID, string(recordJSON), q.GeneratedAt,
	)
	return eris.Wrapf(err, "sqlite: save quote %s", q.QuoteID)
}

func (s *SQLiteStore) GetQuote(ctx context.Context, id string) (*model.QuoteRecord, error) {
	var recordJSON string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM quotes WHERE id = ?`, id).Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get quote %s", id)
	}
	return unmarshalQuote(recordJSON)
}

func (s *SQLiteStore) ListQuotes(ctx context.Context, filter QuoteFilter) ([]model.QuoteRecord, error) {
	query := `SELECT record FROM quotes WHERE 1=1`
	var args []any

	if filter.SessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, filter.SessionID)
	}
	query += ` ORDER BY generated_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list quotes")
	}
	defer rows.Close()

	var quotes []model.QuoteRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan quote")
		}
		q, err := unmarshalQuote(recordJSON)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, eris.Wrap(rows.Err(), "sqlite: list quotes iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func marshalSession(sess *model.Session) (string, string, error) {
	fieldsJSON, err := json.Marshal(sess.Fields)
	if err != nil {
		return "", "", eris.Wrap(err, "store: marshal fields")
	}
	historyJSON, err := json.Marshal(sess.History)
	if err != nil {
		return "", "", eris.Wrap(err, "store: marshal history")
	}
	return string(fieldsJSON), string(historyJSON), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSession(row scannable) (*model.Session, error) {
	var sess model.Session
	var fieldsJSON, historyJSON, status string
	var quoteID sql.NullString

	err := row.Scan(&sess.ID, &fieldsJSON, &historyJSON, &status, &quoteID, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan session")
	}

	sess.Status = model.SessionStatus(status)
	sess.QuoteID = quoteID.String
	if err := json.Unmarshal([]byte(fieldsJSON), &sess.Fields); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal fields")
	}
	if err := json.Unmarshal([]byte(historyJSON), &sess.History); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal history")
	}
	return &sess, nil
}

func unmarshalQuote(recordJSON string) (*model.QuoteRecord, error) {
	var q model.QuoteRecord
	if err := json.Unmarshal([]byte(recordJSON), &q); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal quote")
	}
	return &q, nil
}
