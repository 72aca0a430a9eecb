package cmd

import (
	"gamewish/internal/database"
	"gamewish/internal/models"
	"gamewish/internal/repositories"
	"gamewish/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sampleCatalog is the built-in catalog inserted by seed-games.
func sampleCatalog() []models.Game {
	return []models.Game{
		{Name: "Celeste", Genre: "Platformer", Platform: "PC, Switch, PS4, Xbox One", ReleaseYear: 2018,
			Description: "Help Madeline survive her inner demons on her journey to the top of Celeste Mountain."},
		{Name: "Hades", Genre: "Roguelike", Platform: "PC, Switch, PS5, Xbox Series", ReleaseYear: 2020,
			Description: "Defy the god of the dead as you hack and slash out of the Underworld."},
		{Name: "Hollow Knight", Genre: "Metroidvania", Platform: "PC, Switch, PS4, Xbox One", ReleaseYear: 2017,
			Description: "Forge your own path in an epic action adventure through a vast ruined kingdom of insects."},
		{Name: "Stardew Valley", Genre: "Simulation", Platform: "PC, Switch, PS4, Xbox One, Mobile", ReleaseYear: 2016,
			Description: "Inherit your grandfather's old farm plot and build the farm of your dreams."},
		{Name: "The Witcher 3: Wild Hunt", Genre: "RPG", Platform: "PC, PS5, Xbox Series, Switch", ReleaseYear: 2015,
			Description: "A monster slayer for hire searches for the child of prophecy in an open world."},
		{Name: "Outer Wilds", Genre: "Adventure", Platform: "PC, PS4, Xbox One, Switch", ReleaseYear: 2019,
			Description: "Explore a solar system trapped in an endless time loop."},
		{Name: "Elden Ring", Genre: "Action RPG", Platform: "PC, PS5, Xbox Series", ReleaseYear: 2022,
			Description: "Rise, Tarnished, and become an Elden Lord in the Lands Between."},
		{Name: "Baldur's Gate 3", Genre: "RPG", Platform: "PC, PS5, Xbox Series", ReleaseYear: 2023,
			Description: "Gather your party and return to the Forgotten Realms."},
	}
}

func newSeedCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-games",
		Short: "Insert the sample game catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := database.Open(rt.cfg.DatabaseDriver, rt.cfg.DatabaseDSN, rt.log)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.Migrate(db); err != nil {
				return err
			}

			catalog, closeCache, err := openCatalogCache(ctx, rt)
			if err != nil {
				return err
			}
			defer closeCache()

			games := services.NewGameService(
				repositories.NewGORMGameRepository(db),
				repositories.NewGORMWishlistRepository(db),
				repositories.NewGORMUserRepository(db),
				catalog, nil, rt.log,
			)
			n, err := games.SeedGames(ctx, sampleCatalog())
			if err != nil {
				return err
			}
			rt.log.Info("seeded games", zap.Int("count", n))
			return nil
		},
	}
}
