package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore persists user profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed profile store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the user_profiles table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_profiles (
			user_id        VARCHAR(64) PRIMARY KEY,
			hours_start    INT NOT NULL DEFAULT 9 CHECK (hours_start >= 0 AND hours_start <= 23),
			hours_end      INT NOT NULL DEFAULT 17 CHECK (hours_end >= 0 AND hours_end <= 23),
			common_hours   INT[] NOT NULL DEFAULT '{}',
			avg_amount     NUMERIC(12,2) NOT NULL DEFAULT 0,
			devices        TEXT[] NOT NULL DEFAULT '{}',
			merchants      TEXT[] NOT NULL DEFAULT '{}',
			locations      TEXT[] NOT NULL DEFAULT '{}',
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (s *PostgresStore) Put(ctx context.Context, p *UserProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, hours_start, hours_end, common_hours, avg_amount, devices, merchants, locations, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			hours_start  = EXCLUDED.hours_start,
			hours_end    = EXCLUDED.hours_end,
			common_hours = EXCLUDED.common_hours,
			avg_amount   = EXCLUDED.avg_amount,
			devices      = EXCLUDED.devices,
			merchants    = EXCLUDED.merchants,
			locations    = EXCLUDED.locations,
			updated_at   = NOW()
	`,
		p.UserID,
		p.HoursStart,
		p.HoursEnd,
		pq.Array(p.CommonHours),
		p.AvgAmount,
		pq.Array(p.KnownDevices),
		pq.Array(p.FavoriteMerchants),
		pq.Array(p.Locations),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, hours_start, hours_end, common_hours, avg_amount, devices, merchants, locations, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`, userID)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]*UserProfile, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, hours_start, hours_end, common_hours, avg_amount, devices, merchants, locations, updated_at
		FROM user_profiles
		ORDER BY user_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			continue
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_profiles`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return n, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row scanner) (*UserProfile, error) {
	var p UserProfile
	var commonHours pq.Int64Array
	err := row.Scan(
		&p.UserID,
		&p.HoursStart,
		&p.HoursEnd,
		&commonHours,
		&p.AvgAmount,
		pq.Array(&p.KnownDevices),
		pq.Array(&p.FavoriteMerchants),
		pq.Array(&p.Locations),
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CommonHours = make([]int, 0, len(commonHours))
	for _, h := range commonHours {
		p.CommonHours = append(p.CommonHours, int(h))
	}
	if len(p.CommonHours) == 0 {
		p.CommonHours = nil
	}
	return &p, nil
}

// PostgresTransactionStore persists transaction history in PostgreSQL.
type PostgresTransactionStore struct {
	db *sql.DB
}

// NewPostgresTransactionStore creates a PostgreSQL-backed transaction store.
func NewPostgresTransactionStore(db *sql.DB) *PostgresTransactionStore {
	return &PostgresTransactionStore{db: db}
}

// Migrate creates the transactions table if it doesn't exist.
func (s *PostgresTransactionStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id            VARCHAR(40) PRIMARY KEY,
			user_id       VARCHAR(64) NOT NULL,
			amount        NUMERIC(12,2) NOT NULL,
			merchant      TEXT NOT NULL DEFAULT '',
			category      TEXT NOT NULL DEFAULT '',
			device        TEXT NOT NULL DEFAULT '',
			location      TEXT NOT NULL DEFAULT '',
			occurred_at   TEXT NOT NULL DEFAULT '',
			typing_speed  NUMERIC(6,2) NOT NULL DEFAULT 0,
			is_fraud      BOOLEAN NOT NULL DEFAULT FALSE,
			fraud_type    TEXT NOT NULL DEFAULT '',
			sequence      INT NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_transactions_user
			ON transactions (user_id, created_at DESC);
	`)
	return err
}

func (s *PostgresTransactionStore) Record(ctx context.Context, tx *Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, merchant, category, device, location, occurred_at, typing_speed, is_fraud, fraud_type, sequence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		tx.ID,
		tx.UserID,
		tx.Amount,
		tx.Merchant,
		tx.Category,
		tx.Device,
		tx.Location,
		tx.Timestamp,
		tx.TypingSpeed,
		tx.IsFraud,
		tx.FraudType,
		tx.Sequence,
	)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

func (s *PostgresTransactionStore) RecordBatch(ctx context.Context, txs []*Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer func() { _ = dbTx.Rollback() }()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, merchant, category, device, location, occurred_at, typing_speed, is_fraud, fraud_type, sequence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, tx := range txs {
		if _, err := stmt.ExecContext(ctx,
			tx.ID, tx.UserID, tx.Amount, tx.Merchant, tx.Category, tx.Device,
			tx.Location, tx.Timestamp, tx.TypingSpeed, tx.IsFraud, tx.FraudType, tx.Sequence,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
	}

	return dbTx.Commit()
}

func (s *PostgresTransactionStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, merchant, category, device, location, occurred_at, typing_speed, is_fraud, fraud_type, sequence, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, sequence DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

func (s *PostgresTransactionStore) ListAll(ctx context.Context, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, user_id, amount, merchant, category, device, location, occurred_at, typing_speed, is_fraud, fraud_type, sequence, created_at
		FROM transactions
		ORDER BY created_at DESC, sequence DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]*Transaction, error) {
	var result []*Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Amount, &tx.Merchant, &tx.Category, &tx.Device,
			&tx.Location, &tx.Timestamp, &tx.TypingSpeed, &tx.IsFraud, &tx.FraudType,
			&tx.Sequence, &tx.CreatedAt,
		); err != nil {
			continue
		}
		result = append(result, &tx)
	}
	return result, rows.Err()
}
