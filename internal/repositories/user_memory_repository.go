package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"gamewish/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// Uniqueness is checked under the write lock, so concurrent creates with the
// same email or username see exactly one winner.
type MemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.ProfileVisibility == "" {
		user.ProfileVisibility = models.VisibilityPublic
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	// Callers may pass IDs that alias request buffers.
	user.ID = strings.Clone(user.ID)
	r.users[user.ID] = cloneUser(*user)
	return nil
}

// GetByID returns a user by ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

// GetByUsername returns a user by username.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

// FindByEmailOrUsername returns a user holding either value.
func (r *MemoryUserRepository) FindByEmailOrUsername(_ context.Context, email, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email || u.Username == username })
}

// Update replaces the mutable profile fields of an existing user.
func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	current.Firstname = user.Firstname
	current.Lastname = user.Lastname
	current.Username = user.Username
	current.ProfilePicture = user.ProfilePicture
	current.ProfileVisibility = user.ProfileVisibility
	current.UpdatedAt = time.Now()
	r.users[current.ID] = current
	return nil
}

// SetVisibility replaces the profile visibility of a user.
func (r *MemoryUserRepository) SetVisibility(_ context.Context, id string, visibility models.Visibility) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.ProfileVisibility = visibility
	u.UpdatedAt = time.Now()
	r.users[u.ID] = u
	out := cloneUser(u)
	return &out, nil
}

func (r *MemoryUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// checkUnique must be called with the write lock held. Email is checked
// first since it is the identity key for federated logins.
func (r *MemoryUserRepository) checkUnique(user *models.User) error {
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email {
			return &DuplicateError{Field: FieldEmail}
		}
		if u.Username == user.Username {
			return &DuplicateError{Field: FieldUsername}
		}
	}
	return nil
}

func cloneUser(u models.User) models.User {
	if u.PasswordHash != nil {
		h := *u.PasswordHash
		u.PasswordHash = &h
	}
	return u
}
