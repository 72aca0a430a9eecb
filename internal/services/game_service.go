package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gamewish/internal/apperr"
	"gamewish/internal/models"
	"gamewish/internal/repositories"

	"go.uber.org/zap"
)

// CatalogCache holds a copy of the full game list.
type CatalogCache interface {
	Get(ctx context.Context) ([]models.Game, bool, error)
	Set(ctx context.Context, games []models.Game) error
	Invalidate(ctx context.Context) error
}

// GameService handles the game catalog and user wishlists.
type GameService struct {
	games    repositories.GameRepository
	wishlist repositories.WishlistRepository
	users    repositories.UserRepository
	cache    CatalogCache
	events   EventPublisher
	log      *zap.Logger
}

// NewGameService creates a new GameService. cache and events may be nil.
func NewGameService(games repositories.GameRepository, wishlist repositories.WishlistRepository, users repositories.UserRepository, cache CatalogCache, events EventPublisher, log *zap.Logger) *GameService {
	return &GameService{
		games:    games,
		wishlist: wishlist,
		users:    users,
		cache:    cache,
		events:   events,
		log:      log,
	}
}

// ListGames returns the whole catalog, from the cache when possible.
func (s *GameService) ListGames(ctx context.Context) ([]models.Game, error) {
	if s.cache != nil {
		games, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("catalog cache read failed", zap.Error(err))
		} else if ok {
			return games, nil
		}
	}

	games, err := s.games.GetAll(ctx)
	if err != nil {
		return nil, apperr.Internal("Error fetching games.", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, games); err != nil {
			s.log.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return games, nil
}

// SearchGames returns games whose name contains query.
func (s *GameService) SearchGames(ctx context.Context, query string) ([]models.Game, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Search query is required")
	}
	games, err := s.games.SearchByName(ctx, query)
	if err != nil {
		return nil, apperr.Internal("Error searching games", err)
	}
	return games, nil
}

// GetGame returns a single game.
func (s *GameService) GetGame(ctx context.Context, id string) (*models.Game, error) {
	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Game not found")
		}
		return nil, apperr.Internal("Error fetching game details", err)
	}
	return game, nil
}

// AddToWishlist appends a game to a user's wishlist. A game already on the
// list is a conflict.
func (s *GameService) AddToWishlist(ctx context.Context, userID, gameID string) error {
	if userID == "" || gameID == "" {
		return apperr.Validation("userId and gameId are required")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return err
	}

	if err := s.wishlist.Add(ctx, userID, gameID); err != nil {
		var dup *repositories.DuplicateError
		if errors.As(err, &dup) {
			return apperr.Conflict("Game already in wishlist")
		}
		return apperr.Internal("Error adding game to wishlist", err)
	}
	publishEvent(s.log, s.events, EventWishlistGameAdded, WishlistEvent{UserID: userID, GameID: gameID, OccurredAt: time.Now().UTC()})
	return nil
}

// RemoveFromWishlist drops a game from a user's wishlist.
func (s *GameService) RemoveFromWishlist(ctx context.Context, userID, gameID string) error {
	if err := s.wishlist.Remove(ctx, userID, gameID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("Game not in wishlist")
		}
		return apperr.Internal("Error removing game from wishlist", err)
	}
	publishEvent(s.log, s.events, EventWishlistGameRemoved, WishlistEvent{UserID: userID, GameID: gameID, OccurredAt: time.Now().UTC()})
	return nil
}

// GetWishlist returns the games on a user's wishlist in insertion order.
func (s *GameService) GetWishlist(ctx context.Context, userID string) ([]models.Game, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	games, err := s.wishlist.List(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Error fetching wishlist", err)
	}
	return games, nil
}

// SeedGames inserts the games whose name is not yet in the catalog and
// drops the cached list. It returns how many were inserted.
func (s *GameService) SeedGames(ctx context.Context, games []models.Game) (int, error) {
	existing, err := s.games.GetAll(ctx)
	if err != nil {
		return 0, apperr.Internal("Error seeding games", err)
	}
	present := make(map[string]bool, len(existing))
	for _, g := range existing {
		present[g.Name] = true
	}

	created := 0
	for i := range games {
		if present[games[i].Name] {
			continue
		}
		if err := s.games.Create(ctx, &games[i]); err != nil {
			var dup *repositories.DuplicateError
			if errors.As(err, &dup) {
				continue
			}
			return created, apperr.Internal("Error seeding games", err)
		}
		present[games[i].Name] = true
		created++
	}
	if created > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("catalog cache invalidation failed", zap.Error(err))
		}
	}
	return created, nil
}

func (s *GameService) requireUser(ctx context.Context, userID string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		return apperr.Internal("Error fetching user", err)
	}
	return nil
}
