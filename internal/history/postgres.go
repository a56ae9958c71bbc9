package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

// NewPostgres opens the database through the pgx stdlib driver and ensures the schema.
func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := NewPostgresFromDB(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresFromDB wraps an open handle without running migrations.
func NewPostgresFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS asks (
			id UUID PRIMARY KEY,
			question TEXT NOT NULL,
			keywords TEXT[] NOT NULL DEFAULT '{}',
			answer TEXT,
			outcome TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS asks_created_at_idx ON asks (created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate history: %w", err)
		}
	}
	return nil
}

// Record inserts an entry, assigning an ID and timestamp when they are unset.
func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	keywords := e.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO asks (id, question, keywords, answer, outcome, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Question, pq.Array(keywords), e.Answer, string(e.Outcome), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record ask: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, keywords, COALESCE(answer, ''), outcome, created_at FROM asks ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list asks: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			outcome string
		)
		if err := rows.Scan(&e.ID, &e.Question, pq.Array(&e.Keywords), &e.Answer, &outcome, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ask: %w", err)
		}
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list asks: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
