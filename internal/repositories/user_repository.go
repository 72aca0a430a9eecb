package repositories

import (
	"context"
	"errors"
	"fmt"

	"gamewish/internal/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// DuplicateError reports which unique field a write collided on.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// Unique fields reported through DuplicateError.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldGame     = "gameId"
	FieldGameName = "name"
)

// UserRepository is the credential store. Email and username are unique;
// Create and Update report a collision as *DuplicateError.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetVisibility(ctx context.Context, id string, visibility models.Visibility) (*models.User, error)
}
