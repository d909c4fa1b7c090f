package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iconidentify/tubegrab/internal/domain"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// createdAtLayout is fixed width so that created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteTestimonialStore implements TestimonialStore on a local SQLite file.
type SQLiteTestimonialStore struct {
	db    *sql.DB
	table string
}

// NewSQLiteTestimonialStore opens (or creates) the database at path and
// ensures the table exists. Use ":memory:" for a throwaway store.
func NewSQLiteTestimonialStore(path, table string) (*SQLiteTestimonialStore, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: shared.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			rating REAL NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s(created_at);
	`, table))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteTestimonialStore{db: db, table: table}, nil
}

// Insert persists a testimonial.
func (s *SQLiteTestimonialStore) Insert(ctx context.Context, t *domain.Testimonial) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, name, role, content, rating, created_at) VALUES (?, ?, ?, ?, ?, ?)`, s.table),
		t.ID.String(), t.Name, t.Role, t.Content, t.Rating, t.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("insert testimonial: %w", err)
	}
	return nil
}

// List returns testimonials newest first.
func (s *SQLiteTestimonialStore) List(ctx context.Context, limit int) ([]*domain.Testimonial, error) {
	query := fmt.Sprintf(`SELECT id, name, role, content, rating, created_at FROM %s ORDER BY created_at DESC`, s.table)
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query testimonials: %w", err)
	}
	defer rows.Close()

	var out []*domain.Testimonial
	for rows.Next() {
		var (
			t         domain.Testimonial
			id        string
			createdAt string
		)
		if err := rows.Scan(&id, &t.Name, &t.Role, &t.Content, &t.Rating, &createdAt); err != nil {
			return nil, fmt.Errorf("scan testimonial: %w", err)
		}
		t.ID = domain.TestimonialID(id)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			t.CreatedAt = ts
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate testimonials: %w", err)
	}
	return out, nil
}

// Ping checks the database connection.
func (s *SQLiteTestimonialStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteTestimonialStore) Close() error {
	return s.db.Close()
}
