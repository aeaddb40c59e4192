package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"cardcms/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockCardRepo(t *testing.T) (*CardSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewCardSQLite(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func fixtureCard() models.Card {
	created := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	return models.Card{
		ID:        "c1",
		Title:     "Hello",
		Slug:      "hello",
		Content:   "body",
		Image:     "http://media/cardcms/cards/a.png",
		Category:  "engineering",
		Author:    "SPAM",
		ReadTime:  "5 min",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

var cardColumns = []string{
	"id", "title", "slug", "content", "image", "category", "author", "read_time", "created_at", "updated_at",
}

func cardRow(c models.Card) *sqlmock.Rows {
	return sqlmock.NewRows(cardColumns).
		AddRow(c.ID, c.Title, c.Slug, c.Content, c.Image, c.Category, c.Author, c.ReadTime, c.CreatedAt, c.UpdatedAt)
}

func TestCardSQLite_Insert(t *testing.T) {
	c := fixtureCard()

	tests := []struct {
		name       string
		mockExpect func(sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name: "success",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertCardSQL)).
					WithArgs(c.ID, c.Title, c.Slug, c.Content, c.Image, c.Category, c.Author, c.ReadTime, c.CreatedAt, c.UpdatedAt).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "duplicate slug",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertCardSQL)).
					WithArgs(c.ID, c.Title, c.Slug, c.Content, c.Image, c.Category, c.Author, c.ReadTime, c.CreatedAt, c.UpdatedAt).
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: cards.slug (2067)"))
			},
			wantErr: ErrDuplicateSlug,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockCardRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			err := repo.Insert(context.Background(), c)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCardSQLite_GetByID(t *testing.T) {
	repo, mock, cleanup := newMockCardRepo(t)
	defer cleanup()

	c := fixtureCard()
	mock.ExpectQuery(regexp.QuoteMeta(selectCardByIDSQL)).
		WithArgs("c1").
		WillReturnRows(cardRow(c))

	got, err := repo.GetByID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != c.ID || got.Slug != c.Slug || !got.CreatedAt.Equal(c.CreatedAt) {
		t.Fatalf("unexpected card: %+v", got)
	}
}

func TestCardSQLite_GetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := newMockCardRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectCardByIDSQL)).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("missing card must not be an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil card, got %+v", got)
	}
}

func TestCardSQLite_List(t *testing.T) {
	repo, mock, cleanup := newMockCardRepo(t)
	defer cleanup()

	a := fixtureCard()
	b := fixtureCard()
	b.ID, b.Slug = "c2", "hello-2"

	rows := sqlmock.NewRows(cardColumns).
		AddRow(a.ID, a.Title, a.Slug, a.Content, a.Image, a.Category, a.Author, a.ReadTime, a.CreatedAt, a.UpdatedAt).
		AddRow(b.ID, b.Title, b.Slug, b.Content, b.Image, b.Category, b.Author, b.ReadTime, b.CreatedAt, b.UpdatedAt)

	mock.ExpectQuery(regexp.QuoteMeta(listCardsSQL)).
		WithArgs(10, 0).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c1" || got[1].ID != "c2" {
		t.Fatalf("unexpected page: %+v", got)
	}
}

func TestCardSQLite_List_EmptyPage(t *testing.T) {
	repo, mock, cleanup := newMockCardRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(listCardsSQL)).
		WithArgs(10, 30).
		WillReturnRows(sqlmock.NewRows(cardColumns))

	got, err := repo.List(context.Background(), 10, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected an empty slice, not nil, so it serializes as []")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty page, got %d cards", len(got))
	}
}

func TestCardSQLite_Update(t *testing.T) {
	c := fixtureCard()

	tests := []struct {
		name       string
		mockExpect func(sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name: "success",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(updateCardSQL)).
					WithArgs(c.Title, c.Slug, c.Content, c.Image, c.Category, c.Author, c.ReadTime, c.UpdatedAt, c.ID).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "no such card",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(updateCardSQL)).
					WithArgs(c.Title, c.Slug, c.Content, c.Image, c.Category, c.Author, c.ReadTime, c.UpdatedAt, c.ID).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrNotFound,
		},
		{
			name: "duplicate slug",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(updateCardSQL)).
					WithArgs(c.Title, c.Slug, c.Content, c.Image, c.Category, c.Author, c.ReadTime, c.UpdatedAt, c.ID).
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: cards.slug (2067)"))
			},
			wantErr: ErrDuplicateSlug,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockCardRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			err := repo.Update(context.Background(), c)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCardSQLite_Delete(t *testing.T) {
	repo, mock, cleanup := newMockCardRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(deleteCardSQL)).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCardSQLite_Delete_NotFound(t *testing.T) {
	repo, mock, cleanup := newMockCardRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(deleteCardSQL)).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCardSQLite_Stats(t *testing.T) {
	repo, mock, cleanup := newMockCardRepo(t)
	defer cleanup()

	latest := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(cardStatsSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(7, latest))

	count, got, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 || !got.Equal(latest) {
		t.Fatalf("stats: count=%d latest=%v", count, got)
	}
}

func TestCardSQLite_Stats_EmptyTable(t *testing.T) {
	repo, mock, cleanup := newMockCardRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(cardStatsSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(0, nil))

	count, got, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 || !got.IsZero() {
		t.Fatalf("stats: count=%d latest=%v", count, got)
	}
}
