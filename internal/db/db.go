// Package db provides PostgreSQL access for applied review results.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// SaveAppliedReview stores the outcome of an applied review and returns its ID
func (db *DB) SaveAppliedReview(ctx context.Context, in *AppliedReviewInput) (uuid.UUID, error) {
	docBytes, err := json.Marshal(in.Document)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal final document: %w", err)
	}
	decisionBytes, err := json.Marshal(in.Decisions)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal decisions: %w", err)
	}
	statsBytes, err := json.Marshal(in.Stats)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal decision stats: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO applied_reviews (session_id, final_document, decisions, stats, accepted, rejected)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		in.SessionID, docBytes, decisionBytes, statsBytes, in.Stats.Accepted, in.Stats.Rejected,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save applied review: %w", err)
	}
	return id, nil
}

// GetAppliedReview retrieves an applied review by ID. It returns nil when
// no review exists.
func (db *DB) GetAppliedReview(ctx context.Context, id uuid.UUID) (*AppliedReview, error) {
	var r AppliedReview
	var docBytes, decisionBytes, statsBytes []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_id, final_document, decisions, stats, accepted, rejected, created_at
		 FROM applied_reviews WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.SessionID, &docBytes, &decisionBytes, &statsBytes, &r.Accepted, &r.Rejected, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get applied review: %w", err)
	}

	if err := json.Unmarshal(docBytes, &r.Document); err != nil {
		return nil, fmt.Errorf("failed to decode final document: %w", err)
	}
	if err := json.Unmarshal(decisionBytes, &r.Decisions); err != nil {
		return nil, fmt.Errorf("failed to decode decisions: %w", err)
	}
	if len(statsBytes) > 0 {
		if err := json.Unmarshal(statsBytes, &r.Stats); err != nil {
			return nil, fmt.Errorf("failed to decode decision stats: %w", err)
		}
	}
	return &r, nil
}

// ListAppliedReviews lists recent applied reviews, newest first. An empty
// sessionID lists every session.
func (db *DB) ListAppliedReviews(ctx context.Context, sessionID string, limit int) ([]AppliedReviewSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, session_id, accepted, rejected, created_at FROM applied_reviews`
	args := []any{}
	argNum := 1
	if sessionID != "" {
		query += fmt.Sprintf(" WHERE session_id = $%d", argNum)
		args = append(args, sessionID)
		argNum++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied reviews: %w", err)
	}
	defer rows.Close()

	var out []AppliedReviewSummary
	for rows.Next() {
		var s AppliedReviewSummary
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Accepted, &s.Rejected, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan applied review: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list applied reviews: %w", err)
	}
	return out, nil
}

// DeleteAppliedReview deletes an applied review
func (db *DB) DeleteAppliedReview(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM applied_reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete applied review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("applied review not found: %s", id)
	}
	return nil
}
