package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"gamewish/internal/apperr"
	"gamewish/internal/models"
	"gamewish/internal/repositories"

	"go.uber.org/zap"
)

// MaxAvatarSize is the largest accepted avatar upload, in bytes.
const MaxAvatarSize = 5 << 20

const msgUserNotFound = "User not found"

// AvatarStore persists avatar images and returns a URL for them.
type AvatarStore interface {
	PutAvatar(ctx context.Context, userID string, body io.Reader, size int64, contentType, ext string) (string, error)
}

// ProfileService handles business logic for mutable profile fields.
type ProfileService struct {
	users   repositories.UserRepository
	avatars AvatarStore
	log     *zap.Logger
}

// NewProfileService creates a new ProfileService. avatars may be nil, in
// which case uploads are refused.
func NewProfileService(users repositories.UserRepository, avatars AvatarStore, log *zap.Logger) *ProfileService {
	return &ProfileService{
		users:   users,
		avatars: avatars,
		log:     log,
	}
}

// UpdateProfileInput carries the optional fields of a profile update.
// Empty fields are left untouched.
type UpdateProfileInput struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// FetchProfile returns the public view of a user.
func (s *ProfileService) FetchProfile(ctx context.Context, id string) (*models.Profile, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := user.Profile()
	return &p, nil
}

// UpdateProfile applies the supplied fields to the user and saves it.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Username != "" {
		user.Username = in.Username
	}
	if in.ProfilePicture != "" {
		user.ProfilePicture = in.ProfilePicture
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetVisibility replaces the user's profile visibility.
func (s *ProfileService) SetVisibility(ctx context.Context, userID string, visibility models.Visibility) (*models.User, error) {
	if !visibility.Valid() {
		return nil, apperr.Validation("profileVisibility must be one of public, private")
	}
	user, err := s.users.SetVisibility(ctx, userID, visibility)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound(msgUserNotFound)
		}
		return nil, apperr.Internal("Failed to update profile visibility", err)
	}
	return user, nil
}

// UploadAvatar stores an image and makes it the user's profile picture.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, body io.Reader, size int64, contentType, filename string) (*models.User, error) {
	if s.avatars == nil {
		return nil, apperr.Unavailable("Avatar storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("avatar must be an image")
	}
	if size <= 0 || size > MaxAvatarSize {
		return nil, apperr.Validation("avatar must be between 1 byte and 5 MB")
	}

	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.avatars.PutAvatar(ctx, userID, body, size, contentType, strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return nil, apperr.Internal("Failed to store avatar", err)
	}
	user.ProfilePicture = url
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("avatar updated", zap.String("user_id", userID), zap.String("url", url))
	return user, nil
}

func (s *ProfileService) get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound(msgUserNotFound)
		}
		return nil, apperr.Internal("Failed to load user information", err)
	}
	return user, nil
}

func (s *ProfileService) save(ctx context.Context, user *models.User) error {
	err := s.users.Update(ctx, user)
	if err == nil {
		return nil
	}
	var dup *repositories.DuplicateError
	switch {
	case errors.As(err, &dup) && dup.Field == repositories.FieldUsername:
		return apperr.Conflict(msgUsernameExists)
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound(msgUserNotFound)
	default:
		return apperr.Internal("Server Error", err)
	}
}
