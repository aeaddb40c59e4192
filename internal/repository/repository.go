package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cardcms/internal/models"
)

// Sentinel errors surfaced by the SQLite repositories. The service layer
// translates them into its own taxonomy.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateSlug = errors.New("slug already exists")
)

type Users interface {
	Create(ctx context.Context, username, passwordHash, role string) (string, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

type Cards interface {
	Insert(ctx context.Context, c models.Card) error
	GetByID(ctx context.Context, id string) (*models.Card, error)
	List(ctx context.Context, limit, offset int) ([]models.Card, error)
	Update(ctx context.Context, c models.Card) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (count int, latest time.Time, err error)
}

type Repository struct {
	Users Users
	Cards Cards
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users: NewUserSQLite(db),
		Cards: NewCardSQLite(db),
	}
}
