package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardcms/internal/media"
	"cardcms/internal/models"
	"cardcms/internal/repository"

	"github.com/google/uuid"
)

const defaultPageSize = 10

// CardService implements the CRUD surface over the content store. Images
// are pushed to the media host before anything is persisted, so a failed
// upload never leaves a card behind.
type CardService struct {
	cards    repository.Cards
	uploader media.Uploader
	pageSize int
}

func NewCardService(cards repository.Cards, uploader media.Uploader, pageSize int) *CardService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &CardService{cards: cards, uploader: uploader, pageSize: pageSize}
}

var _ Cards = (*CardService)(nil)

// List returns one fixed-size page in stable insertion order. Pages are
// 1-based; anything below that is treated as the first page. An empty
// result means there are no further pages.
func (s *CardService) List(ctx context.Context, page int) ([]models.Card, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.pageSize
	return s.cards.List(ctx, s.pageSize, offset)
}

// Create validates that every field and the image file are present, uploads
// the image, derives the slug, and persists the card. A slug collision
// surfaces as ErrSlugConflict; nothing is written in that case.
func (s *CardService) Create(ctx context.Context, in CreateCardInput) (models.Card, error) {
	if err := validateCreate(in); err != nil {
		return models.Card{}, err
	}

	imageURL, err := s.uploader.Upload(ctx, in.Image.Name, in.Image.Data)
	if err != nil {
		return models.Card{}, err
	}

	now := time.Now().UTC()
	card := models.Card{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Slug:      Slugify(in.Title),
		Content:   in.Content,
		Image:     imageURL,
		Category:  in.Category,
		Author:    in.Author,
		ReadTime:  in.ReadTime,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.cards.Insert(ctx, card); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return models.Card{}, ErrSlugConflict
		}
		return models.Card{}, err
	}
	return card, nil
}

// Update applies a partial update: only supplied fields change. A new image
// file replaces the stored URL; otherwise the old one is kept. A supplied
// title recomputes the slug.
func (s *CardService) Update(ctx context.Context, id string, in UpdateCardInput) (models.Card, error) {
	existing, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return models.Card{}, err
	}
	if existing == nil {
		return models.Card{}, ErrCardNotFound
	}

	if in.Image != nil {
		imageURL, err := s.uploader.Upload(ctx, in.Image.Name, in.Image.Data)
		if err != nil {
			return models.Card{}, err
		}
		existing.Image = imageURL
	}

	if in.Title != "" {
		existing.Title = in.Title
		existing.Slug = Slugify(in.Title)
	}
	if in.Content != "" {
		existing.Content = in.Content
	}
	if in.Category != "" {
		existing.Category = in.Category
	}
	if in.Author != "" {
		existing.Author = in.Author
	}
	if in.ReadTime != "" {
		existing.ReadTime = in.ReadTime
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.cards.Update(ctx, *existing); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateSlug):
			return models.Card{}, ErrSlugConflict
		case errors.Is(err, repository.ErrNotFound):
			return models.Card{}, ErrCardNotFound
		}
		return models.Card{}, err
	}
	return *existing, nil
}

// Delete removes the card permanently; there are no dependent entities.
func (s *CardService) Delete(ctx context.Context, id string) error {
	if err := s.cards.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCardNotFound
		}
		return err
	}
	return nil
}

// Snapshot summarizes the content store for the WebSocket feed.
func (s *CardService) Snapshot(ctx context.Context) (ContentSnapshot, error) {
	count, latest, err := s.cards.Stats(ctx)
	if err != nil {
		return ContentSnapshot{}, err
	}
	snap := ContentSnapshot{Count: count}
	if !latest.IsZero() {
		snap.LatestUpdate = latest.Format(time.RFC3339)
	}
	return snap, nil
}

func validateCreate(in CreateCardInput) error {
	fields := []struct {
		name  string
		empty bool
	}{
		{"title", in.Title == ""},
		{"content", in.Content == ""},
		{"category", in.Category == ""},
		{"author", in.Author == ""},
		{"readTime", in.ReadTime == ""},
		{"image", in.Image == nil || len(in.Image.Data) == 0},
	}
	for _, f := range fields {
		if f.empty {
			return fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
	}
	return nil
}
