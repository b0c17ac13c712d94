package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danh0999/Hokori-Learning-sub002/internal/db"
)

// SQLStore keeps records as JSON rows in quiz_drafts. The same statements run
// on sqlite and postgres.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(ctx context.Context, conn *sql.DB, driver db.Driver) (*SQLStore, error) {
	if err := ensureSchema(ctx, conn, driver); err != nil {
		return nil, fmt.Errorf("ensure draft schema: %w", err)
	}
	return &SQLStore{db: conn, now: time.Now}, nil
}

func ensureSchema(ctx context.Context, conn *sql.DB, driver db.Driver) error {
	schema := schemaSQLite
	if driver == db.DriverPostgres {
		schema = schemaPostgres
	}
	_, err := conn.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS quiz_drafts (
  key TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS quiz_drafts (
  key TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  updated_at BIGINT NOT NULL
);`

func (s *SQLStore) Put(ctx context.Context, key string, r Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quiz_drafts (key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, key, string(payload), s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put draft: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (Record, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM quiz_drafts WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get draft: %w", err)
	}
	var r Record
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return Record{}, fmt.Errorf("decode draft %s: %w", key, err)
	}
	return r, nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quiz_drafts WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, payload, updated_at
		FROM quiz_drafts
		WHERE key LIKE $1 ESCAPE '\'
		ORDER BY key ASC
	`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var (
			e       Entry
			payload string
			updated int64
		)
		if err := rows.Scan(&e.Key, &payload, &updated); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Record); err != nil {
			return nil, fmt.Errorf("decode draft %s: %w", e.Key, err)
		}
		e.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
