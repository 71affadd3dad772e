package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// createdAtFormat is RFC 3339 with fixed-width nanoseconds. RFC3339Nano trims
// trailing fractional zeros, which breaks the lexicographic ORDER BY on the
// stored strings for sub-second neighbors.
const createdAtFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Exchange is one recorded chat turn: the user's message and the pipeline's
// resolved outcome.
type Exchange struct {
	ID         string    `json:"id"`
	TraceID    string    `json:"trace_id,omitempty"`
	Sender     string    `json:"sender,omitempty"`
	Message    string    `json:"message"`
	Tag        string    `json:"tag"`
	Confidence float64   `json:"confidence"`
	Response   string    `json:"response"`
	CreatedAt  time.Time `json:"created_at"`
}

// Record persists one exchange. A zero ID gets a fresh UUID and a zero
// CreatedAt gets the current UTC time.
func (s *Store) Record(ctx context.Context, e Exchange) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (id, trace_id, sender, message, tag, confidence, response, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TraceID, e.Sender, e.Message, e.Tag, e.Confidence, e.Response,
		e.CreatedAt.Format(createdAtFormat),
	)
	if err != nil {
		return fmt.Errorf("history: insert exchange: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges, newest first. A non-positive limit
// defaults to 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trace_id, sender, message, tag, confidence, response, created_at
		FROM exchanges
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query exchanges: %w", err)
	}
	defer rows.Close()
	return scanExchanges(rows)
}

// RecentBySender returns up to limit exchanges for one sender, newest first.
func (s *Store) RecentBySender(ctx context.Context, sender string, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trace_id, sender, message, tag, confidence, response, created_at
		FROM exchanges
		WHERE sender = ?
		ORDER BY created_at DESC
		LIMIT ?`, sender, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query exchanges by sender: %w", err)
	}
	defer rows.Close()
	return scanExchanges(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanExchanges(rows rowScanner) ([]Exchange, error) {
	var out []Exchange
	for rows.Next() {
		var e Exchange
		var createdAt string
		if err := rows.Scan(&e.ID, &e.TraceID, &e.Sender, &e.Message, &e.Tag,
			&e.Confidence, &e.Response, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan exchange: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse created_at %q: %w", createdAt, err)
		}
		e.CreatedAt = ts
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}
	return out, nil
}
