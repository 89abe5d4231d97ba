package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists canonical draws keyed by (game, draw_ref). The full
// record is stored as a JSONB document; the merge logic owns its shape, and
// the relational columns exist only for keying and listing.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Schema is applied by the operator (or tests) before use.
const Schema = `
CREATE TABLE IF NOT EXISTS canonical_draws (
	game       TEXT NOT NULL,
	draw_ref   TEXT NOT NULL,
	status     TEXT NOT NULL,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (game, draw_ref)
);
`

func (s *PostgresStore) Get(ctx context.Context, key Key) (CanonicalDraw, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM canonical_draws WHERE game = $1 AND draw_ref = $2`,
		key.Game, key.Ref,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return CanonicalDraw{}, ErrNotFound
	}
	if err != nil {
		return CanonicalDraw{}, fmt.Errorf("get canonical draw: %w", err)
	}

	var draw CanonicalDraw
	if err := json.Unmarshal(doc, &draw); err != nil {
		return CanonicalDraw{}, fmt.Errorf("decode canonical draw: %w", err)
	}
	return draw, nil
}

func (s *PostgresStore) Put(ctx context.Context, draw CanonicalDraw) error {
	doc, err := json.Marshal(draw)
	if err != nil {
		return fmt.Errorf("encode canonical draw: %w", err)
	}
	key := draw.Key()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO canonical_draws (game, draw_ref, status, doc, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game, draw_ref)
		DO UPDATE SET status = EXCLUDED.status, doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		key.Game, key.Ref, string(draw.Status), doc, draw.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put canonical draw: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByGame(ctx context.Context, game string, limit int) ([]CanonicalDraw, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT doc FROM canonical_draws
		WHERE game = $1
		ORDER BY updated_at DESC
		LIMIT $2`,
		game, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list canonical draws: %w", err)
	}
	defer rows.Close()

	draws := []CanonicalDraw{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan canonical draw: %w", err)
		}
		var draw CanonicalDraw
		if err := json.Unmarshal(doc, &draw); err != nil {
			return nil, fmt.Errorf("decode canonical draw: %w", err)
		}
		draws = append(draws, draw)
	}
	return draws, rows.Err()
}
