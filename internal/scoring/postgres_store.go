package scoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mbd888/fraudguard/internal/pagination"
)

// PostgresStore persists assessments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed assessment store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the assessments table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS assessments (
			id          VARCHAR(40) PRIMARY KEY,
			user_id     VARCHAR(64) NOT NULL,
			score       NUMERIC(5,2) NOT NULL CHECK (score >= 0 AND score <= 100),
			status      VARCHAR(16) NOT NULL CHECK (status IN ('APPROVED', 'REVIEW_NEEDED', 'BLOCKED')),
			variant     VARCHAR(16) NOT NULL,
			factors     JSONB NOT NULL DEFAULT '[]',
			confidence  NUMERIC(3,2) NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_assessments_user
			ON assessments (user_id, created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_assessments_recent
			ON assessments (created_at DESC, id);

		CREATE INDEX IF NOT EXISTS idx_assessments_blocked
			ON assessments (created_at DESC) WHERE status = 'BLOCKED';
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, a *Assessment) error {
	factorsJSON, err := json.Marshal(a.Factors)
	if err != nil {
		return fmt.Errorf("failed to marshal factors: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, user_id, score, status, variant, factors, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		a.ID,
		a.UserID,
		a.Score,
		string(a.Status),
		a.Variant,
		factorsJSON,
		a.Confidence,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, score, status, variant, factors, confidence, created_at
		FROM assessments
		WHERE id = $1
	`, id)

	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, ErrAssessmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int, cursor string) ([]*Assessment, string, bool, error) {
	cur, err := pagination.Decode(cursor)
	if err != nil {
		return nil, "", false, err
	}

	// Fetch limit+1 to detect whether another page exists.
	var rows *sql.Rows
	if cur != nil {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, user_id, score, status, variant, factors, confidence, created_at
			FROM assessments
			WHERE (created_at, id) < ($1, $2)
			ORDER BY created_at DESC, id DESC
			LIMIT $3
		`, cur.CreatedAt, cur.ID, limit+1)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, user_id, score, status, variant, factors, confidence, created_at
			FROM assessments
			ORDER BY created_at DESC, id DESC
			LIMIT $1
		`, limit+1)
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var page []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			continue
		}
		page = append(page, a)
	}
	if err := rows.Err(); err != nil {
		return nil, "", false, err
	}

	items, next, hasMore := pagination.ComputePage(page, limit, func(a *Assessment) (time.Time, string) {
		return a.CreatedAt, a.ID
	})
	return items, next, hasMore, nil
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[Status]int)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(AVG(score), 0), COALESCE(MAX(created_at), 'epoch'::timestamptz)
		FROM assessments
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var weightedSum float64
	for rows.Next() {
		var status string
		var count int
		var avg float64
		var last time.Time
		if err := rows.Scan(&status, &count, &avg, &last); err != nil {
			continue
		}
		stats.ByStatus[Status(status)] = count
		stats.Total += count
		weightedSum += avg * float64(count)
		if last.After(stats.LastScored) {
			stats.LastScored = last
		}
	}
	if stats.Total > 0 {
		stats.AvgScore = weightedSum / float64(stats.Total)
	}
	return stats, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAssessment(row scanner) (*Assessment, error) {
	var a Assessment
	var status string
	var factorsJSON []byte

	if err := row.Scan(&a.ID, &a.UserID, &a.Score, &status, &a.Variant, &factorsJSON, &a.Confidence, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Status = Status(status)
	a.Color = a.Status.Color()
	a.Factors = []Factor{}
	_ = json.Unmarshal(factorsJSON, &a.Factors)
	return &a, nil
}
