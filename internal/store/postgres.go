// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"contentplanner/internal/models"
)

const pieceColumns = `id, title, content_pillar, format, status, performance, notes,
	       upload_date, link, script, shotlist, hook, caption`

// PostgresStore handles content piece operations against PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore with the given database connection.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPiece reads pieceColumns into a piece, followed by any extra
// destinations the query selects after them.
func scanPiece(row rowScanner, extra ...any) (*models.ContentPiece, error) {
	p := &models.ContentPiece{}
	dest := []any{
		&p.ID, &p.Title, &p.ContentPillar, &p.Format, &p.Status, &p.Performance,
		&p.Notes, &p.UploadDate, &p.Link, &p.Script, &p.Shotlist, &p.Hook, &p.Caption,
	}
	err := row.Scan(append(dest, extra...)...)
	return p, err
}

// FindAll returns every content piece ordered by ID.
func (s *PostgresStore) FindAll(ctx context.Context) ([]models.ContentPiece, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pieceColumns+` FROM content_pieces ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list content pieces: %w", err)
	}
	defer rows.Close()

	items := []models.ContentPiece{}
	for rows.Next() {
		p, err := scanPiece(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content piece: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a content piece by ID. Returns nil if not found.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.ContentPiece, error) {
	p, err := scanPiece(s.db.QueryRowContext(ctx,
		`SELECT `+pieceColumns+` FROM content_pieces WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content piece by id: %w", err)
	}
	return p, nil
}

// ExistsByID reports whether a content piece with the given ID exists.
func (s *PostgresStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM content_pieces WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("content piece exists: %w", err)
	}
	return exists, nil
}

// Save inserts a new piece when p.ID is zero, otherwise upserts the row
// with that ID. It returns the persisted row.
func (s *PostgresStore) Save(ctx context.Context, p *models.ContentPiece) (*models.ContentPiece, error) {
	if p.ID == 0 {
		return s.insert(ctx, p)
	}
	return s.upsert(ctx, p)
}

func (s *PostgresStore) insert(ctx context.Context, p *models.ContentPiece) (*models.ContentPiece, error) {
	saved, err := scanPiece(s.db.QueryRowContext(ctx, `
		INSERT INTO content_pieces (title, content_pillar, format, status, performance, notes,
		                            upload_date, link, script, shotlist, hook, caption)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+pieceColumns,
		p.Title, p.ContentPillar, p.Format, p.Status, p.Performance, p.Notes,
		p.UploadDate, p.Link, p.Script, p.Shotlist, p.Hook, p.Caption,
	))
	if err != nil {
		return nil, fmt.Errorf("create content piece: %w", err)
	}
	return saved, nil
}

func (s *PostgresStore) upsert(ctx context.Context, p *models.ContentPiece) (*models.ContentPiece, error) {
	// xmax is zero only for a freshly inserted row version, which tells the
	// insert branch apart from the update branch.
	var inserted bool
	saved, err := scanPiece(s.db.QueryRowContext(ctx, `
		INSERT INTO content_pieces (id, title, content_pillar, format, status, performance, notes,
		                            upload_date, link, script, shotlist, hook, caption)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content_pillar = EXCLUDED.content_pillar,
			format = EXCLUDED.format,
			status = EXCLUDED.status,
			performance = EXCLUDED.performance,
			notes = EXCLUDED.notes,
			upload_date = EXCLUDED.upload_date,
			link = EXCLUDED.link,
			script = EXCLUDED.script,
			shotlist = EXCLUDED.shotlist,
			hook = EXCLUDED.hook,
			caption = EXCLUDED.caption
		RETURNING `+pieceColumns+`, (xmax = 0)`,
		p.ID, p.Title, p.ContentPillar, p.Format, p.Status, p.Performance, p.Notes,
		p.UploadDate, p.Link, p.Script, p.Shotlist, p.Hook, p.Caption,
	), &inserted)
	if err != nil {
		return nil, fmt.Errorf("save content piece: %w", err)
	}
	if !inserted {
		return saved, nil
	}

	// The explicit ID may be ahead of the sequence. Only ever move the
	// sequence forward so ids handed out earlier are never issued again.
	_, err = s.db.ExecContext(ctx, `
		SELECT setval('content_pieces_id_seq', $1)
		FROM content_pieces_id_seq
		WHERE last_value < $1 OR (NOT is_called AND last_value = $1)
	`, saved.ID)
	if err != nil {
		return nil, fmt.Errorf("advance content piece sequence: %w", err)
	}
	return saved, nil
}

// DeleteByID removes a content piece. Deleting a missing ID is a no-op.
func (s *PostgresStore) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM content_pieces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content piece: %w", err)
	}
	return nil
}

// DeleteAll removes every content piece.
func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM content_pieces`)
	if err != nil {
		return fmt.Errorf("delete all content pieces: %w", err)
	}
	return nil
}

// Count returns the number of stored content pieces.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_pieces`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count content pieces: %w", err)
	}
	return count, nil
}

// Ping verifies the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
