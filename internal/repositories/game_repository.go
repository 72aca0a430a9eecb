package repositories

import (
	"context"

	"gamewish/internal/models"
)

// GameRepository defines the interface for game catalog access.
type GameRepository interface {
	GetAll(ctx context.Context) ([]models.Game, error)
	GetByID(ctx context.Context, id string) (*models.Game, error)
	SearchByName(ctx context.Context, query string) ([]models.Game, error)
	Create(ctx context.Context, game *models.Game) error
}

// WishlistRepository stores the ordered set of games a user wants.
// Add reports an existing entry as *DuplicateError{Field: FieldGame}.
type WishlistRepository interface {
	Add(ctx context.Context, userID, gameID string) error
	Remove(ctx context.Context, userID, gameID string) error
	List(ctx context.Context, userID string) ([]models.Game, error)
}
