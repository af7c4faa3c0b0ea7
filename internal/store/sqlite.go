package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlBackend stores entities in SQLite. The owner index is the owner column
// of the same row, so the map and index change in one statement.
type sqlBackend struct {
	q querier
}

func (s sqlBackend) get(ctx context.Context, kind, id string) ([]byte, bool, error) {
	var body []byte
	err := s.q.QueryRowContext(ctx, `
		SELECT body FROM entities WHERE kind = ? AND id = ?
	`, kind, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return body, true, nil
}

func (s sqlBackend) put(ctx context.Context, kind, id, owner string, body []byte) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO entities (kind, id, owner, body)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET owner = excluded.owner, body = excluded.body
	`, kind, id, owner, body)
	if err != nil {
		return fmt.Errorf("put %s %s: %w", kind, id, err)
	}
	return nil
}

func (s sqlBackend) del(ctx context.Context, kind, id string) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		DELETE FROM entities WHERE kind = ? AND id = ?
	`, kind, id)
	if err != nil {
		return false, fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return n > 0, nil
}

func (s sqlBackend) ownerIDs(ctx context.Context, kind, owner string) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id FROM entities
		WHERE kind = ? AND owner = ?
		ORDER BY id COLLATE BINARY ASC
	`, kind, owner)
	if err != nil {
		return nil, fmt.Errorf("query %s ids: %w", kind, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", kind, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s ids: %w", kind, err)
	}
	return ids, nil
}

func (s sqlBackend) list(ctx context.Context, kind string) ([][]byte, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT body FROM entities
		WHERE kind = ?
		ORDER BY id COLLATE BINARY ASC
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer rows.Close()

	bodies := [][]byte{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		bodies = append(bodies, body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return bodies, nil
}

func (s sqlBackend) balance(ctx context.Context, owner string) (uint32, error) {
	var points int64
	err := s.q.QueryRowContext(ctx, `
		SELECT points FROM balances WHERE owner = ?
	`, owner).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return uint32(points), nil
}

func (s sqlBackend) setBalance(ctx context.Context, owner string, points uint32) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO balances (owner, points) VALUES (?, ?)
		ON CONFLICT(owner) DO UPDATE SET points = excluded.points
	`, owner, int64(points))
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

func (s sqlBackend) appendCompletion(ctx context.Context, taskID string, at uint64) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO completions (task_id, at) VALUES (?, ?)
	`, taskID, int64(at))
	if err != nil {
		return fmt.Errorf("append completion: %w", err)
	}
	return nil
}

func (s sqlBackend) completions(ctx context.Context, taskID string) ([]uint64, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT at FROM completions WHERE task_id = ? ORDER BY seq ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	out := []uint64{}
	for rows.Next() {
		var at int64
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, uint64(at))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return out, nil
}
