package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gamewish/internal/models"

	"github.com/google/uuid"
)

// MemoryGameRepository is an in-memory implementation of GameRepository.
type MemoryGameRepository struct {
	games map[string]models.Game
	mu    sync.RWMutex
}

// NewMemoryGameRepository creates a new instance of MemoryGameRepository.
func NewMemoryGameRepository() *MemoryGameRepository {
	return &MemoryGameRepository{
		games: make(map[string]models.Game),
	}
}

// GetAll returns all games ordered by name.
func (r *MemoryGameRepository) GetAll(_ context.Context) ([]models.Game, error) {
	return r.filter(func(models.Game) bool { return true }), nil
}

// GetByID returns a game by its ID.
func (r *MemoryGameRepository) GetByID(_ context.Context, id string) (*models.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	game, ok := r.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &game, nil
}

// SearchByName returns games whose name contains query, ignoring case.
func (r *MemoryGameRepository) SearchByName(_ context.Context, query string) ([]models.Game, error) {
	q := strings.ToLower(query)
	return r.filter(func(g models.Game) bool { return strings.Contains(strings.ToLower(g.Name), q) }), nil
}

// Create adds a new game.
func (r *MemoryGameRepository) Create(_ context.Context, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range r.games {
		if g.Name == game.Name {
			return &DuplicateError{Field: FieldGameName}
		}
	}
	if game.ID == "" {
		game.ID = uuid.New().String()
	}
	now := time.Now()
	game.CreatedAt = now
	game.UpdatedAt = now
	r.games[game.ID] = *game
	return nil
}

func (r *MemoryGameRepository) filter(keep func(models.Game) bool) []models.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Game, 0, len(r.games))
	for _, g := range r.games {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MemoryWishlistRepository is an in-memory implementation of WishlistRepository.
type MemoryWishlistRepository struct {
	games   GameRepository
	entries map[string][]string // user ID -> game IDs in insertion order
	mu      sync.RWMutex
}

// NewMemoryWishlistRepository creates a wishlist store that resolves game
// IDs through games.
func NewMemoryWishlistRepository(games GameRepository) *MemoryWishlistRepository {
	return &MemoryWishlistRepository{
		games:   games,
		entries: make(map[string][]string),
	}
}

// Add appends gameID to the user's wishlist.
func (r *MemoryWishlistRepository) Add(_ context.Context, userID, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.entries[userID] {
		if id == gameID {
			return &DuplicateError{Field: FieldGame}
		}
	}
	// Keys and values are copied: callers may pass strings that alias
	// reused request buffers.
	r.entries[strings.Clone(userID)] = append(r.entries[userID], strings.Clone(gameID))
	return nil
}

// Remove deletes gameID from the user's wishlist.
func (r *MemoryWishlistRepository) Remove(_ context.Context, userID, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.entries[userID]
	for i, id := range ids {
		if id == gameID {
			r.entries[strings.Clone(userID)] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// List returns the games on a user's wishlist in insertion order. Entries
// whose game no longer exists are skipped.
func (r *MemoryWishlistRepository) List(ctx context.Context, userID string) ([]models.Game, error) {
	r.mu.RLock()
	ids := append([]string(nil), r.entries[userID]...)
	r.mu.RUnlock()

	games := make([]models.Game, 0, len(ids))
	for _, id := range ids {
		g, err := r.games.GetByID(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, nil
}
