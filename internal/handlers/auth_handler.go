package handlers

import (
	"gamewish/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/google/signup", h.HandleGoogleSignup)
	authRoutes.Post("/google/login", h.HandleGoogleLogin)
}

// HandleSignup handles new local user registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.authService.RegisterLocal(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   result.Token,
		"userId":  result.UserID,
	})
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.authService.AuthenticateLocal(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"userId":  result.UserID,
	})
}

// HandleGoogleSignup reconciles a Google identity sent with separate
// profile fields. It answers 201 whether or not the account already existed.
func (h *AuthHandler) HandleGoogleSignup(c *fiber.Ctx) error {
	var req services.FederatedSignupInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.authService.FederatedSignup(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Google signup successful",
		"token":   result.Token,
		"userId":  result.UserID,
	})
}

// HandleGoogleLogin reconciles a Google identity sent with a display name.
func (h *AuthHandler) HandleGoogleLogin(c *fiber.Ctx) error {
	var req services.FederatedLoginInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.authService.FederatedLogin(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Google login successful",
		"token":    result.Token,
		"userId":   result.UserID,
		"username": result.Username,
	})
}
