package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamewish/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMGameRepository is a GORM implementation of GameRepository.
type GORMGameRepository struct {
	db *gorm.DB
}

// NewGORMGameRepository creates a new instance of GORMGameRepository.
func NewGORMGameRepository(db *gorm.DB) *GORMGameRepository {
	return &GORMGameRepository{
		db: db,
	}
}

// GetAll retrieves all games ordered by name.
func (r *GORMGameRepository) GetAll(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := r.db.WithContext(ctx).Order("name").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to get all games: %w", err)
	}
	return games, nil
}

// GetByID retrieves a single game by its ID.
func (r *GORMGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	var game models.Game
	if err := r.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game by ID %s: %w", id, err)
	}
	return &game, nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchByName returns games whose name contains query, ignoring case.
func (r *GORMGameRepository) SearchByName(ctx context.Context, query string) ([]models.Game, error) {
	var games []models.Game
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	if err := r.db.WithContext(ctx).Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).Order("name").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to search games: %w", err)
	}
	return games, nil
}

// Create inserts a new game.
func (r *GORMGameRepository) Create(ctx context.Context, game *models.Game) error {
	if game.ID == "" {
		game.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(game).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &DuplicateError{Field: FieldGameName}
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{
		db: db,
	}
}

// Add appends gameID to the user's wishlist.
func (r *GORMWishlistRepository) Add(ctx context.Context, userID, gameID string) error {
	entry := models.WishlistEntry{UserID: userID, GameID: gameID, CreatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &DuplicateError{Field: FieldGame}
		}
		return fmt.Errorf("failed to add game %s to wishlist of %s: %w", gameID, userID, err)
	}
	return nil
}

// Remove deletes gameID from the user's wishlist.
func (r *GORMWishlistRepository) Remove(ctx context.Context, userID, gameID string) error {
	res := r.db.WithContext(ctx).Delete(&models.WishlistEntry{}, "user_id = ? AND game_id = ?", userID, gameID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove game %s from wishlist of %s: %w", gameID, userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the games on a user's wishlist in the order they were added.
func (r *GORMWishlistRepository) List(ctx context.Context, userID string) ([]models.Game, error) {
	games := []models.Game{}
	err := r.db.WithContext(ctx).
		Select("games.*").
		Joins("JOIN wishlist_entries ON wishlist_entries.game_id = games.id").
		Where("wishlist_entries.user_id = ?", userID).
		Order("wishlist_entries.created_at ASC").
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist of %s: %w", userID, err)
	}
	return games, nil
}
