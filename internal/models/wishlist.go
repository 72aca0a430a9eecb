package models

import "time"

// WishlistEntry links a user to a game. The composite primary key keeps a
// game from appearing twice in one wishlist; CreatedAt gives the order.
type WishlistEntry struct {
	UserID    string    `json:"userId" gorm:"primaryKey;type:varchar(36)"`
	GameID    string    `json:"gameId" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}
