package models

import "time"

// Game is a catalog entry; names are unique. Wishlists reference games by ID only.
type Game struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"uniqueIndex;type:varchar(200);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Genre       string    `json:"genre" gorm:"type:varchar(100)"`
	Platform    string    `json:"platform" gorm:"type:varchar(100)"`
	ImageURL    string    `json:"imageUrl" gorm:"type:varchar(512)"`
	ReleaseYear int       `json:"releaseYear"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
