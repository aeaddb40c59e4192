package models

import "time"

// Card is a single blog entry managed through the admin API.
type Card struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"` // derived from title, unique across all cards
	Content   string    `json:"content"`
	Image     string    `json:"image"` // public URL on the media host
	Category  string    `json:"category"`
	Author    string    `json:"author"`
	ReadTime  string    `json:"readTime"` // free-form, e.g. "5 min"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
