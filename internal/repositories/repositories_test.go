package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"unsafe"

	"gamewish/internal/database"
	"gamewish/internal/models"
	"gamewish/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stores struct {
	users    repositories.UserRepository
	games    repositories.GameRepository
	wishlist repositories.WishlistRepository
}

// newGORMStores opens an isolated in-memory SQLite database.
func newGORMStores(t *testing.T) stores {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open(database.DriverSQLite, dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	return stores{
		users:    repositories.NewGORMUserRepository(db),
		games:    repositories.NewGORMGameRepository(db),
		wishlist: repositories.NewGORMWishlistRepository(db),
	}
}

func newMemoryStores(t *testing.T) stores {
	t.Helper()
	games := repositories.NewMemoryGameRepository()
	return stores{
		users:    repositories.NewMemoryUserRepository(),
		games:    games,
		wishlist: repositories.NewMemoryWishlistRepository(games),
	}
}

func eachStore(t *testing.T, fn func(t *testing.T, s stores)) {
	t.Run("gorm", func(t *testing.T) { fn(t, newGORMStores(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, newMemoryStores(t)) })
}

func hashPtr(s string) *string { return &s }

func TestUserRepository_CreateAndLookup(t *testing.T) {
	eachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		user := &models.User{
			Firstname:    "Ada",
			Lastname:     "Lovelace",
			Username:     "ada",
			Email:        "ada@example.com",
			Provider:     models.ProviderLocal,
			PasswordHash: hashPtr("hash"),
		}
		require.NoError(t, s.users.Create(ctx, user))
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, models.VisibilityPublic, user.ProfileVisibility)

		byID, err := s.users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada", byID.Username)
		require.NotNil(t, byID.PasswordHash)
		assert.Equal(t, "hash", *byID.PasswordHash)

		byName, err := s.users.GetByUsername(ctx, "ada")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byName.ID)

		byEmail, err := s.users.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		either, err := s.users.FindByEmailOrUsername(ctx, "other@example.com", "ada")
		require.NoError(t, err)
		assert.Equal(t, user.ID, either.ID)

		_, err = s.users.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = s.users.FindByEmailOrUsername(ctx, "x@example.com", "x")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestUserRepository_CreateDuplicateReportsField(t *testing.T) {
	eachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		require.NoError(t, s.users.Create(ctx, &models.User{Username: "ada", Email: "ada@example.com", Provider: models.ProviderGoogle}))

		err := s.users.Create(ctx, &models.User{Username: "ada", Email: "other@example.com", Provider: models.ProviderGoogle})
		var dup *repositories.DuplicateError
		require.True(t, errors.As(err, &dup), "got %v", err)
		assert.Equal(t, repositories.FieldUsername, dup.Field)

		err = s.users.Create(ctx, &models.User{Username: "someone", Email: "ada@example.com", Provider: models.ProviderGoogle})
		require.True(t, errors.As(err, &dup), "got %v", err)
		assert.Equal(t, repositories.FieldEmail, dup.Field)
	})
}

func TestUserRepository_UpdateDuplicateLeavesRecord(t *testing.T) {
	eachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		taken := &models.User{Username: "taken", Email: "taken@example.com", Provider: models.ProviderGoogle}
		target := &models.User{Username: "target", Email: "target@example.com", Provider: models.ProviderGoogle}
		require.NoError(t, s.users.Create(ctx, taken))
		require.NoError(t, s.users.Create(ctx, target))

		target.Username = "taken"
		err := s.users.Update(ctx, target)
		var dup *repositories.DuplicateError
		require.True(t, errors.As(err, &dup), "got %v", err)
		assert.Equal(t, repositories.FieldUsername, dup.Field)

		stored, err := s.users.GetByID(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, "target", stored.Username)

		stored.ProfilePicture = "https://img.example.com/a.png"
		require.NoError(t, s.users.Update(ctx, stored))
		again, err := s.users.GetByID(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://img.example.com/a.png", again.ProfilePicture)

		assert.ErrorIs(t, s.users.Update(ctx, &models.User{ID: "missing", Username: "m", Email: "m@example.com"}), repositories.ErrNotFound)
	})
}

func TestUserRepository_SetVisibility(t *testing.T) {
	eachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		user := &models.User{Username: "vis", Email: "vis@example.com", Provider: models.ProviderGoogle}
		require.NoError(t, s.users.Create(ctx, user))

		updated, err := s.users.SetVisibility(ctx, user.ID, models.VisibilityPrivate)
		require.NoError(t, err)
		assert.Equal(t, models.VisibilityPrivate, updated.ProfileVisibility)
		assert.Equal(t, "vis", updated.Username)

		_, err = s.users.SetVisibility(ctx, "missing", models.VisibilityPrivate)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestMemoryUserRepository_ConcurrentCreateHasOneWinner(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &models.User{Username: "racer", Email: "racer@example.com", Provider: models.ProviderGoogle})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var dup *repositories.DuplicateError
		assert.True(t, errors.As(err, &dup))
	}
	assert.Equal(t, 1, succeeded)
}

func TestGameRepository(t *testing.T) {
	eachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		for _, name := range []string{"Zelda", "Hades", "Hollow Knight"} {
			require.NoError(t, s.games.Create(ctx, &models.Game{Name: name}))
		}

		all, err := s.games.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Hades", all[0].Name)

		found, err := s.games.SearchByName(ctx, "hol")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Hollow Knight", found[0].Name)

		none, err := s.games.SearchByName(ctx, "portal")
		require.NoError(t, err)
		assert.Empty(t, none)

		// Wildcard characters match only themselves
		for _, q := range []string{"%", "_", "h_des", `\`} {
			none, err = s.games.SearchByName(ctx, q)
			require.NoError(t, err)
			assert.Empty(t, none, q)
		}
		require.NoError(t, s.games.Create(ctx, &models.Game{Name: "100% Orange Juice"}))
		juice, err := s.games.SearchByName(ctx, "0% o")
		require.NoError(t, err)
		require.Len(t, juice, 1)
		assert.Equal(t, "100% Orange Juice", juice[0].Name)

		game, err := s.games.GetByID(ctx, found[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Hollow Knight", game.Name)

		_, err = s.games.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		err = s.games.Create(ctx, &models.Game{Name: "Hades"})
		var dup *repositories.DuplicateError
		require.True(t, errors.As(err, &dup), "got %v", err)
		assert.Equal(t, repositories.FieldGameName, dup.Field)
	})
}

func TestWishlistRepository(t *testing.T) {
	eachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		user := &models.User{Username: "wisher", Email: "wisher@example.com", Provider: models.ProviderGoogle}
		require.NoError(t, s.users.Create(ctx, user))

		first := &models.Game{Name: "Celeste"}
		second := &models.Game{Name: "Baba Is You"}
		require.NoError(t, s.games.Create(ctx, first))
		require.NoError(t, s.games.Create(ctx, second))

		empty, err := s.wishlist.List(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, empty)

		require.NoError(t, s.wishlist.Add(ctx, user.ID, first.ID))
		require.NoError(t, s.wishlist.Add(ctx, user.ID, second.ID))

		err = s.wishlist.Add(ctx, user.ID, first.ID)
		var dup *repositories.DuplicateError
		require.True(t, errors.As(err, &dup), "got %v", err)
		assert.Equal(t, repositories.FieldGame, dup.Field)

		games, err := s.wishlist.List(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, games, 2)
		assert.Equal(t, "Celeste", games[0].Name)
		assert.Equal(t, "Baba Is You", games[1].Name)

		require.NoError(t, s.wishlist.Remove(ctx, user.ID, first.ID))
		assert.ErrorIs(t, s.wishlist.Remove(ctx, user.ID, first.ID), repositories.ErrNotFound)

		games, err = s.wishlist.List(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, second.ID, games[0].ID)
	})
}

// aliased returns a string sharing memory with buf, like a Fiber path
// parameter sharing the request buffer.
func aliased(buf []byte) string {
	return unsafe.String(&buf[0], len(buf))
}

func overwrite(buf []byte) {
	for i := range buf {
		buf[i] = 'x'
	}
}

func TestMemoryStoresCopyAliasedKeys(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStores(t)

	user := &models.User{Username: "alias", Email: "alias@example.com", Provider: models.ProviderGoogle}
	require.NoError(t, s.users.Create(ctx, user))
	a := &models.Game{Name: "Celeste"}
	b := &models.Game{Name: "Hades"}
	require.NoError(t, s.games.Create(ctx, a))
	require.NoError(t, s.games.Create(ctx, b))

	buf := []byte(user.ID)
	_, err := s.users.SetVisibility(ctx, aliased(buf), models.VisibilityPrivate)
	require.NoError(t, err)
	overwrite(buf)

	got, err := s.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPrivate, got.ProfileVisibility)

	userBuf, gameBuf := []byte(user.ID), []byte(a.ID)
	require.NoError(t, s.wishlist.Add(ctx, aliased(userBuf), aliased(gameBuf)))
	overwrite(userBuf)
	overwrite(gameBuf)
	require.NoError(t, s.wishlist.Add(ctx, user.ID, b.ID))

	userBuf = []byte(user.ID)
	require.NoError(t, s.wishlist.Remove(ctx, aliased(userBuf), b.ID))
	overwrite(userBuf)

	games, err := s.wishlist.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, a.ID, games[0].ID)
}
