package service

import (
	"context"
	"errors"

	"cardcms/internal/media"
	"cardcms/internal/models"
	"cardcms/internal/repository"
)

// Domain errors shared by the service layer. Handlers map these onto HTTP
// status codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnknownUser        = errors.New("unknown user")
	ErrValidation         = errors.New("validation failed")
	ErrCardNotFound       = errors.New("card not found")
	ErrSlugConflict       = errors.New("a card with the same slug already exists")
)

type Authorization interface {
	GenerateToken(ctx context.Context, username, password string) (string, error)
	VerifyToken(ctx context.Context, accessToken string) (*models.User, error)
	EnsureBootstrapUser(ctx context.Context) error
}

// Cards exposes the CRUD surface over the content store. Every operation is
// gated by Authorization at the HTTP layer.
type Cards interface {
	List(ctx context.Context, page int) ([]models.Card, error)
	Create(ctx context.Context, in CreateCardInput) (models.Card, error)
	Update(ctx context.Context, id string, in UpdateCardInput) (models.Card, error)
	Delete(ctx context.Context, id string) error
	Snapshot(ctx context.Context) (ContentSnapshot, error)
}

// ImageFile is a raw uploaded file as received from a multipart form.
type ImageFile struct {
	Name string
	Data []byte
}

// CreateCardInput carries all fields of a new card; every one is required.
type CreateCardInput struct {
	Title    string
	Content  string
	Category string
	Author   string
	ReadTime string
	Image    *ImageFile
}

// UpdateCardInput applies a partial update: empty strings and a nil image
// mean "keep the stored value".
type UpdateCardInput struct {
	Title    string
	Content  string
	Category string
	Author   string
	ReadTime string
	Image    *ImageFile
}

// ContentSnapshot is a cheap summary pushed over the WebSocket feed so
// clients know when to refresh their listing.
type ContentSnapshot struct {
	Count        int    `json:"count"`
	LatestUpdate string `json:"latest_update,omitempty"` // RFC3339, empty when no cards exist
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Cards
}

type Config struct {
	Auth     AuthConfig
	PageSize int
}

// NewService wires the repository layer and the media host into concrete
// services.
func NewService(repos *repository.Repository, uploader media.Uploader, cfg Config) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, cfg.Auth),
		Cards:         NewCardService(repos.Cards, uploader, cfg.PageSize),
	}
}
