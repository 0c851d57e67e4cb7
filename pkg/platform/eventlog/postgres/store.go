package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/eventlog"
	txcontext "scriptorium/pkg/platform/tx"
)

const schema = `
CREATE TABLE IF NOT EXISTS event_log (
	seq         BIGSERIAL PRIMARY KEY,
	id          TEXT NOT NULL UNIQUE,
	topic       TEXT NOT NULL,
	code        TEXT NOT NULL,
	payload     JSONB NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS event_log_topic_code_idx ON event_log (topic, code);
`

// Store implements eventlog.Repository on a PostgreSQL table. Storage order
// is the bigserial sequence, so AfterID works across instances sharing a
// database.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL event log store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *Store) querier(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.pool
}

// Migrate creates the event_log table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInfrastructure, "create event_log table")
	}
	return nil
}

// Save appends e. Saving the same event id twice is a no-op.
func (s *Store) Save(ctx context.Context, e event.Event) error {
	payload := e.Payload
	if len(payload) == 0 {
		payload = []byte("null")
	}
	query := `
		INSERT INTO event_log (id, topic, code, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.querier(ctx).Exec(ctx, query, e.ID, e.Topic, e.Code, []byte(payload), e.Timestamp)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInfrastructure, "insert event")
	}
	return nil
}

// Search returns matching events ordered by sequence. An AfterID that was
// never stored yields no results.
func (s *Store) Search(ctx context.Context, q eventlog.Query) ([]event.Event, error) {
	query, args := buildSearch(q)

	rows, err := s.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInfrastructure, "query events")
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		var (
			e       event.Event
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.Topic, &e.Code, &payload, &e.Timestamp); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInfrastructure, "scan event")
		}
		e.Payload = payload
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInfrastructure, "iterate events")
	}
	return events, nil
}

func buildSearch(q eventlog.Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.AfterID != "" {
		where = append(where, "seq > (SELECT seq FROM event_log WHERE id = "+arg(q.AfterID)+")")
	}
	if q.Topic != "" {
		where = append(where, "topic = "+arg(q.Topic))
	}
	if q.Code != "" {
		where = append(where, "code = "+arg(q.Code))
	}
	if q.From != nil {
		where = append(where, "occurred_at >= "+arg(*q.From))
	}
	if q.To != nil {
		where = append(where, "occurred_at <= "+arg(*q.To))
	}

	var b strings.Builder
	b.WriteString("SELECT id, topic, code, payload, occurred_at FROM event_log")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY seq")
	if q.Limit > 0 {
		b.WriteString(" LIMIT " + arg(q.Limit))
	}
	return b.String(), args
}

var _ eventlog.Repository = (*Store)(nil)
