package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/elicit/internal/db"
)

// SQLiteStore keeps keys and sets in the kv and kv_sets tables.
type SQLiteStore struct {
	db     db.DBTX
	closer io.Closer
}

// NewSQLiteStore wraps an already migrated database. Close is a no-op; the
// caller owns the connection.
func NewSQLiteStore(conn db.DBTX) *SQLiteStore {
	return &SQLiteStore{db: conn}
}

// OpenSQLite opens (and migrates) the database at path and returns a store
// that closes it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := db.OpenDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: conn, closer: conn}, nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now())
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO NOTHING`,
		key, value, now())
	if err != nil {
		return false, fmt.Errorf("setting %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking insert of %s: %w", key, err)
	}
	return n == 1, nil
}

func (s *SQLiteStore) SAdd(ctx context.Context, setKey string, members ...string) error {
	ts := now()
	for _, m := range members {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO kv_sets (set_key, member, added_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
			setKey, m, ts); err != nil {
			return fmt.Errorf("adding %s to %s: %w", m, setKey, err)
		}
	}
	return nil
}

func (s *SQLiteStore) SMembers(ctx context.Context, setKey string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member FROM kv_sets WHERE set_key = ? ORDER BY member`, setKey)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", setKey, err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scanning member of %s: %w", setKey, err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
