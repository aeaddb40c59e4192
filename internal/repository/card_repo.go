package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cardcms/internal/models"
)

type CardSQLite struct {
	db *sql.DB
}

func NewCardSQLite(db *sql.DB) *CardSQLite {
	return &CardSQLite{db: db}
}

var _ Cards = (*CardSQLite)(nil)

const (
	insertCardSQL = `
		INSERT INTO cards (id, title, slug, content, image, category, author, read_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectCardByIDSQL = `
		SELECT id, title, slug, content, image, category, author, read_time, created_at, updated_at
		FROM cards WHERE id = ?
	`

	// Stable insertion order; id breaks ties between equal timestamps.
	listCardsSQL = `
		SELECT id, title, slug, content, image, category, author, read_time, created_at, updated_at
		FROM cards ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?
	`

	updateCardSQL = `
		UPDATE cards SET title = ?, slug = ?, content = ?, image = ?, category = ?, author = ?, read_time = ?, updated_at = ?
		WHERE id = ?
	`

	deleteCardSQL = `DELETE FROM cards WHERE id = ?`

	cardStatsSQL = `SELECT COUNT(*), MAX(updated_at) FROM cards`
)

// isUniqueViolation reports whether err comes from the UNIQUE constraint on
// cards.slug. modernc.org/sqlite surfaces constraint failures as plain
// errors carrying the SQLite message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Insert persists a new card. Returns ErrDuplicateSlug when another card
// already owns the same slug.
func (r *CardSQLite) Insert(ctx context.Context, c models.Card) error {
	_, err := r.db.ExecContext(ctx, insertCardSQL,
		c.ID,
		c.Title,
		c.Slug,
		c.Content,
		c.Image,
		c.Category,
		c.Author,
		c.ReadTime,
		c.CreatedAt.UTC(),
		c.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert card slug %q: %w", c.Slug, ErrDuplicateSlug)
		}
		return fmt.Errorf("insert card %q: %w", c.ID, err)
	}
	return nil
}

// GetByID fetches a card by id. Returns (nil, nil) if not found.
func (r *CardSQLite) GetByID(ctx context.Context, id string) (*models.Card, error) {
	row := r.db.QueryRowContext(ctx, selectCardByIDSQL, id)
	c, err := scanCard(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select card %q: %w", id, err)
	}
	return &c, nil
}

// List returns one page of cards in insertion order. An empty slice (not an
// error) tells the caller there are no further pages.
func (r *CardSQLite) List(ctx context.Context, limit, offset int) ([]models.Card, error) {
	rows, err := r.db.QueryContext(ctx, listCardsSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	out := make([]models.Card, 0, limit)
	for rows.Next() {
		c, err := scanCard(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card rows: %w", err)
	}
	return out, nil
}

// Update rewrites every mutable column of an existing card. Field merging is
// the service layer's job; by the time the row reaches the repository it is
// complete. Returns ErrNotFound if the id matches nothing and
// ErrDuplicateSlug when the new slug collides.
func (r *CardSQLite) Update(ctx context.Context, c models.Card) error {
	res, err := r.db.ExecContext(ctx, updateCardSQL,
		c.Title,
		c.Slug,
		c.Content,
		c.Image,
		c.Category,
		c.Author,
		c.ReadTime,
		c.UpdatedAt.UTC(),
		c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update card slug %q: %w", c.Slug, ErrDuplicateSlug)
		}
		return fmt.Errorf("update card %q: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for card %q: %w", c.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update card %q: %w", c.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a card permanently. Returns ErrNotFound for unknown ids.
func (r *CardSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteCardSQL, id)
	if err != nil {
		return fmt.Errorf("delete card %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for card %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete card %q: %w", id, ErrNotFound)
	}
	return nil
}

// Stats reports how many cards exist and when the most recent change
// happened. latest is the zero time for an empty table.
func (r *CardSQLite) Stats(ctx context.Context) (int, time.Time, error) {
	var (
		count  int
		latest sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, cardStatsSQL).Scan(&count, &latest); err != nil {
		return 0, time.Time{}, fmt.Errorf("card stats: %w", err)
	}
	if !latest.Valid {
		return count, time.Time{}, nil
	}
	return count, latest.Time.UTC(), nil
}

// scanCard reads one row regardless of whether it comes from QueryRow or Rows.
func scanCard(scan func(dest ...any) error) (models.Card, error) {
	var c models.Card
	if err := scan(
		&c.ID,
		&c.Title,
		&c.Slug,
		&c.Content,
		&c.Image,
		&c.Category,
		&c.Author,
		&c.ReadTime,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return models.Card{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}
