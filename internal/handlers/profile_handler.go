package handlers

import (
	"gamewish/internal/apperr"
	"gamewish/internal/middleware"
	"gamewish/internal/models"
	"gamewish/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProfileHandler handles HTTP requests for user profiles.
type ProfileHandler struct {
	service *services.ProfileService
	log     *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the profile routes. Mutations go through auth
// and may only touch the caller's own profile.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/:id", h.HandleGetProfile)

	owner := middleware.OwnerOnly("userId")
	userRoutes.Put("/:userId/profile", auth, owner, h.HandleUpdateProfile)
	userRoutes.Put("/:userId/visibility", auth, owner, h.HandleSetVisibility)
	userRoutes.Post("/:userId/avatar", auth, owner, h.HandleUploadAvatar)
}

// HandleGetProfile returns a user's profile.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	profile, err := h.service.FetchProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(profile)
}

// HandleUpdateProfile applies a partial profile update.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	user, err := h.service.UpdateProfile(c.UserContext(), c.Params("userId"), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message":        "Profile updated successfully",
		"username":       user.Username,
		"profilePicture": user.ProfilePicture,
	})
}

type visibilityRequest struct {
	ProfileVisibility models.Visibility `json:"profileVisibility"`
}

// HandleSetVisibility replaces the profile visibility and returns the record.
func (h *ProfileHandler) HandleSetVisibility(c *fiber.Ctx) error {
	var req visibilityRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	user, err := h.service.SetVisibility(c.UserContext(), c.Params("userId"), req.ProfileVisibility)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(user.Profile())
}

// HandleUploadAvatar stores the multipart "avatar" file as the profile picture.
func (h *ProfileHandler) HandleUploadAvatar(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return respondError(c, h.log, apperr.Validation("avatar file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, h.log, apperr.Internal("Failed to read avatar", err))
	}
	defer file.Close()

	user, err := h.service.UploadAvatar(c.UserContext(), c.Params("userId"), file, fileHeader.Size,
		fileHeader.Header.Get(fiber.HeaderContentType), fileHeader.Filename)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message":        "Avatar uploaded successfully",
		"profilePicture": user.ProfilePicture,
	})
}
