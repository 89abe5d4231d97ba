package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore persists audit events in an append-only table. The bigserial
// offset column gives consumers a stable replay position.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is applied by the operator (or tests) before use.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	event_offset  BIGSERIAL PRIMARY KEY,
	id            UUID NOT NULL,
	ts            TIMESTAMPTZ NOT NULL,
	category      TEXT NOT NULL,
	action        TEXT NOT NULL,
	game          TEXT NOT NULL DEFAULT '',
	draw_ref      TEXT NOT NULL DEFAULT '',
	decision      TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	candidate_ids TEXT[] NOT NULL DEFAULT '{}',
	source_id     TEXT NOT NULL DEFAULT '',
	request_id    TEXT NOT NULL DEFAULT ''
);
`

func (s *PostgresStore) Append(ctx context.Context, event Event) (int64, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	var offset int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO audit_events
			(id, ts, category, action, game, draw_ref, decision, reason, candidate_ids, source_id, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING event_offset`,
		event.ID, event.Timestamp, string(event.Category), event.Action,
		event.Game, event.DrawRef, event.Decision, event.Reason,
		pq.Array(event.CandidateIDs), event.SourceID, event.RequestID,
	).Scan(&offset)
	if err != nil {
		return 0, fmt.Errorf("append audit event: %w", err)
	}
	return offset, nil
}

func (s *PostgresStore) ListFrom(ctx context.Context, offset int64, limit int) ([]Event, error) {
	if offset < 1 {
		offset = 1
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_offset, id, ts, category, action, game, draw_ref, decision, reason, candidate_ids, source_id, request_id
		FROM audit_events
		WHERE event_offset >= $1
		ORDER BY event_offset
		LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			e        Event
			category string
		)
		if err := rows.Scan(
			&e.Offset, &e.ID, &e.Timestamp, &category, &e.Action,
			&e.Game, &e.DrawRef, &e.Decision, &e.Reason,
			pq.Array(&e.CandidateIDs), &e.SourceID, &e.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = Category(category)
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarshalEvent renders an event the way sinks publish it; exported so the
// Kafka sink and tests share one encoding.
func MarshalEvent(event Event) ([]byte, error) {
	return json.Marshal(event)
}
