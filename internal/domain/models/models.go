package models

import "time"

const (
	MovieStatusActive = "active"
	AdminRoleDefault  = "admin"
)

type Movie struct {
	ID          int64     `json:"id" db:"id"`                    // Unique store generated ID
	Title       string    `json:"title" db:"title"`              // Movie title
	Year        int32     `json:"year" db:"year"`                // Release year
	Genres      []string  `json:"genres" db:"genres"`            // Genre labels (i.e. Action, Drama)
	Rating      float64   `json:"rating" db:"rating"`            // Rating, e.g. 7.9
	Poster      string    `json:"poster" db:"poster"`            // Poster image URL
	WatchURL    string    `json:"watchUrl" db:"watch_url"`       // Streaming URL
	DownloadURL string    `json:"downloadUrl" db:"download_url"` // Download URL
	Featured    bool      `json:"featured" db:"featured"`        // Highlighted in the UI, no effect on ordering
	Pinned      bool      `json:"pinned" db:"pinned"`            // Sorted ahead of every non pinned movie
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type Admin struct {
	ID           int64      `db:"id"`
	Username     string     `db:"username"`
	PasswordHash []byte     `db:"password_hash"`
	Email        string     `db:"email"`
	Role         string     `db:"role"`
	LastLogin    *time.Time `db:"last_login"`
	CreatedAt    time.Time  `db:"created_at"`
}

// AdminPublic is the part of an admin account that may leave the service.
type AdminPublic struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (a *Admin) Public() AdminPublic {
	return AdminPublic{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Role:     a.Role,
	}
}
