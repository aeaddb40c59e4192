package models

// DefaultRole is assigned to every account created by the bootstrap path.
const DefaultRole = "admin"

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
	Role         string `json:"role"`
}
