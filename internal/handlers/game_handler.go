package handlers

import (
	"gamewish/internal/middleware"
	"gamewish/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GameHandler handles HTTP requests for the catalog and wishlists.
type GameHandler struct {
	service *services.GameService
	log     *zap.Logger
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(service *services.GameService, log *zap.Logger) *GameHandler {
	return &GameHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the game and wishlist routes.
func (h *GameHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	gameRoutes := router.Group("/games")
	gameRoutes.Get("/", h.HandleGetGames)
	gameRoutes.Get("/search", h.HandleSearchGames)
	gameRoutes.Get("/:id", h.HandleGetGame)

	wishlistRoutes := router.Group("/wishlist")
	wishlistRoutes.Post("/", auth, h.HandleAddToWishlist)
	wishlistRoutes.Delete("/:userId/:gameId", auth, middleware.OwnerOnly("userId"), h.HandleRemoveFromWishlist)
	wishlistRoutes.Get("/:userId", h.HandleGetWishlist)
}

// HandleGetGames returns the whole catalog.
func (h *GameHandler) HandleGetGames(c *fiber.Ctx) error {
	games, err := h.service.ListGames(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(games)
}

// HandleSearchGames matches games by name with the q query parameter.
func (h *GameHandler) HandleSearchGames(c *fiber.Ctx) error {
	games, err := h.service.SearchGames(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(games)
}

// HandleGetGame returns a single game.
func (h *GameHandler) HandleGetGame(c *fiber.Ctx) error {
	game, err := h.service.GetGame(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(game)
}

type wishlistRequest struct {
	UserID string `json:"userId"`
	GameID string `json:"gameId"`
}

// HandleAddToWishlist adds a game to the caller's wishlist.
func (h *GameHandler) HandleAddToWishlist(c *fiber.Ctx) error {
	var req wishlistRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	if req.UserID != "" && req.UserID != middleware.CurrentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You can only modify your own data",
		})
	}

	if err := h.service.AddToWishlist(c.UserContext(), req.UserID, req.GameID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Game added to wishlist"})
}

// HandleRemoveFromWishlist drops a game from the caller's wishlist.
func (h *GameHandler) HandleRemoveFromWishlist(c *fiber.Ctx) error {
	if err := h.service.RemoveFromWishlist(c.UserContext(), c.Params("userId"), c.Params("gameId")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Game removed from wishlist"})
}

// HandleGetWishlist returns a user's wishlist in the order games were added.
func (h *GameHandler) HandleGetWishlist(c *fiber.Ctx) error {
	games, err := h.service.GetWishlist(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(games)
}
