package repositories

import (
	"context"
	"errors"
	"fmt"

	"gamewish/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository. The DB
// must be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new user, assigning an ID when none is set.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.ProfileVisibility == "" {
		user.ProfileVisibility = models.VisibilityPublic
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.duplicateField(ctx, user)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername retrieves a user by their username.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByEmail retrieves a user by their email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByEmailOrUsername returns the first user holding either value.
func (r *GORMUserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	return r.first(ctx, "email = ? OR username = ?", email, username)
}

// Update writes the mutable profile fields of user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"firstname":          user.Firstname,
		"lastname":           user.Lastname,
		"username":           user.Username,
		"profile_picture":    user.ProfilePicture,
		"profile_visibility": user.ProfileVisibility,
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return r.duplicateField(ctx, user)
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVisibility replaces the profile visibility and returns the updated record.
func (r *GORMUserRepository) SetVisibility(ctx context.Context, id string, visibility models.Visibility) (*models.User, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("profile_visibility", visibility)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to set visibility for user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *GORMUserRepository) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// duplicateField works out which unique column user collided on. The
// driver error does not name the column portably, so ask the table. Email
// wins when both collide since it is the federated identity key.
func (r *GORMUserRepository) duplicateField(ctx context.Context, user *models.User) error {
	checks := []struct {
		field  string
		column string
		value  string
	}{
		{FieldEmail, "email", user.Email},
		{FieldUsername, "username", user.Username},
	}
	for _, c := range checks {
		var n int64
		err := r.db.WithContext(ctx).Model(&models.User{}).
			Where(c.column+" = ? AND id <> ?", c.value, user.ID).
			Count(&n).Error
		if err != nil {
			return fmt.Errorf("failed to resolve duplicate user field: %w", err)
		}
		if n > 0 {
			return &DuplicateError{Field: c.field}
		}
	}
	return &DuplicateError{Field: "id"}
}
