package services_test

import (
	"context"
	"errors"
	"testing"

	"gamewish/internal/apperr"
	"gamewish/internal/models"
	"gamewish/internal/repositories"
	"gamewish/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gameFixture struct {
	service  *services.GameService
	users    *repositories.MemoryUserRepository
	games    *repositories.MemoryGameRepository
	wishlist *repositories.MemoryWishlistRepository
	user     *models.User
	celeste  models.Game
	hades    models.Game
}

func newGameFixture(t *testing.T, cache services.CatalogCache, events services.EventPublisher) gameFixture {
	t.Helper()
	f := gameFixture{
		users: repositories.NewMemoryUserRepository(),
		games: repositories.NewMemoryGameRepository(),
	}
	f.wishlist = repositories.NewMemoryWishlistRepository(f.games)
	f.service = services.NewGameService(f.games, f.wishlist, f.users, cache, events, zap.NewNop())

	f.user = &models.User{Username: "wisher", Email: "wisher@example.com", Provider: models.ProviderGoogle}
	seedUsers(t, f.users, f.user)

	ctx := context.Background()
	f.celeste = models.Game{Name: "Celeste", Genre: "Platformer"}
	f.hades = models.Game{Name: "Hades", Genre: "Roguelike"}
	require.NoError(t, f.games.Create(ctx, &f.celeste))
	require.NoError(t, f.games.Create(ctx, &f.hades))
	return f
}

func TestGameService_ListGamesUsesCache(t *testing.T) {
	cache := new(MockCatalogCache)
	f := newGameFixture(t, cache, nil)
	ctx := context.Background()

	// Miss: read through and fill
	cache.On("Get", ctx).Return(nil, false, nil).Once()
	cache.On("Set", ctx, mock.AnythingOfType("[]models.Game")).Return(nil).Once()
	games, err := f.service.ListGames(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 2)

	// Hit: repository not consulted
	cached := []models.Game{{ID: "cached", Name: "From Cache"}}
	cache.On("Get", ctx).Return(cached, true, nil).Once()
	games, err = f.service.ListGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, games)

	// Cache failure falls back to the store
	cache.On("Get", ctx).Return(nil, false, errors.New("redis down")).Once()
	cache.On("Set", ctx, mock.AnythingOfType("[]models.Game")).Return(errors.New("redis down")).Once()
	games, err = f.service.ListGames(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 2)
	cache.AssertExpectations(t)
}

func TestGameService_SearchAndGet(t *testing.T) {
	f := newGameFixture(t, nil, nil)
	ctx := context.Background()

	found, err := f.service.SearchGames(ctx, "  HAD ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Hades", found[0].Name)

	_, err = f.service.SearchGames(ctx, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	game, err := f.service.GetGame(ctx, f.celeste.ID)
	require.NoError(t, err)
	assert.Equal(t, "Celeste", game.Name)

	_, err = f.service.GetGame(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Game not found", apperr.Message(err, ""))
}

func TestGameService_Wishlist(t *testing.T) {
	events := new(MockPublisher)
	f := newGameFixture(t, nil, events)
	ctx := context.Background()

	events.On("Publish", services.EventWishlistGameAdded, mock.AnythingOfType("services.WishlistEvent")).Return(nil).Twice()
	events.On("Publish", services.EventWishlistGameRemoved, mock.AnythingOfType("services.WishlistEvent")).Return(nil).Once()

	require.NoError(t, f.service.AddToWishlist(ctx, f.user.ID, f.hades.ID))
	require.NoError(t, f.service.AddToWishlist(ctx, f.user.ID, f.celeste.ID))

	err := f.service.AddToWishlist(ctx, f.user.ID, f.hades.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Game already in wishlist", apperr.Message(err, ""))

	err = f.service.AddToWishlist(ctx, "missing", f.hades.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "User not found", apperr.Message(err, ""))

	err = f.service.AddToWishlist(ctx, f.user.ID, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Game not found", apperr.Message(err, ""))

	assert.ErrorIs(t, f.service.AddToWishlist(ctx, "", ""), apperr.ErrValidation)

	games, err := f.service.GetWishlist(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Hades", games[0].Name)
	assert.Equal(t, "Celeste", games[1].Name)

	require.NoError(t, f.service.RemoveFromWishlist(ctx, f.user.ID, f.hades.ID))
	assert.ErrorIs(t, f.service.RemoveFromWishlist(ctx, f.user.ID, f.hades.ID), apperr.ErrNotFound)

	games, err = f.service.GetWishlist(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, f.celeste.ID, games[0].ID)

	_, err = f.service.GetWishlist(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	events.AssertExpectations(t)
}

func TestGameService_SeedGamesInvalidatesCache(t *testing.T) {
	cache := new(MockCatalogCache)
	f := newGameFixture(t, cache, nil)
	ctx := context.Background()

	cache.On("Invalidate", ctx).Return(nil).Once()
	n, err := f.service.SeedGames(ctx, []models.Game{{Name: "Tunic"}, {Name: "Outer Wilds"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := f.games.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	// Names already in the catalog are skipped and the cache is left alone
	n, err = f.service.SeedGames(ctx, []models.Game{{Name: "Tunic"}, {Name: "Celeste"}, {Name: "Hades"}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Duplicates within one batch are inserted once
	cache.On("Invalidate", ctx).Return(nil).Once()
	n, err = f.service.SeedGames(ctx, []models.Game{{Name: "Inside"}, {Name: "Inside"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err = f.games.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	cache.AssertExpectations(t)
	cache.AssertNumberOfCalls(t, "Invalidate", 2)
}
