package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gamewish/internal/apperr"
	"gamewish/internal/models"
	"gamewish/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Client-facing messages. Unknown user and wrong password share one message
// so a login attempt never reveals whether an account exists.
const (
	msgInvalidCredentials = "Invalid username or password"
	msgAccountExists      = "You already have an account with this email or username"
	msgUsernameExists     = "Username already exists"
	msgInternal           = "Internal server error"

	defaultFirstname = "Unknown"
)

// AuthService resolves local credentials or a federated identity to exactly
// one user record and issues a bearer token for it.
type AuthService struct {
	users    repositories.UserRepository
	hasher   PasswordHasher
	tokens   *TokenIssuer
	events   EventPublisher
	validate *validator.Validate
	log      *zap.Logger
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(users repositories.UserRepository, hasher PasswordHasher, tokens *TokenIssuer, events EventPublisher, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		events:   events,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterInput is a local signup request.
type RegisterInput struct {
	Firstname string `json:"firstname" validate:"required"`
	Lastname  string `json:"lastname" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// LoginInput is a local login request.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FederatedSignupInput is the signup shape sent after a Google sign-in:
// profile fields arrive separately.
type FederatedSignupInput struct {
	Firstname      string `json:"firstname"`
	Lastname       string `json:"lastname"`
	Username       string `json:"username"`
	Email          string `json:"email" validate:"required,email"`
	ProfilePicture string `json:"profilePicture"`
}

// FederatedLoginInput is the login shape sent after a Google sign-in: a
// single display name and a picture URL.
type FederatedLoginInput struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// AuthResult is what every successful auth operation yields.
type AuthResult struct {
	UserID   string
	Username string
	Token    string
	Created  bool
}

// RegisterLocal creates a password-backed account and issues a token.
func (s *AuthService) RegisterLocal(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateInput(s.validate, in, "All fields are required"); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmailOrUsername(ctx, in.Email, in.Username)
	switch {
	case err == nil:
		return nil, apperr.Conflict(msgAccountExists)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, apperr.Internal(msgInternal, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}

	user := &models.User{
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Username:     in.Username,
		Email:        in.Email,
		Provider:     models.ProviderLocal,
		PasswordHash: &hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same email or username.
		var dup *repositories.DuplicateError
		if errors.As(err, &dup) {
			return nil, apperr.Conflict(msgAccountExists)
		}
		return nil, apperr.Internal(msgInternal, err)
	}

	s.registered(user)
	return s.issue(user, true)
}

// AuthenticateLocal checks a username and password and issues a token.
func (s *AuthService) AuthenticateLocal(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validateInput(s.validate, in, "Username and password are required"); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.Auth(msgInvalidCredentials)
		}
		return nil, apperr.Internal(msgInternal, err)
	}

	hash, ok := user.LocalCredential()
	if !ok || !s.hasher.Verify(hash, in.Password) {
		return nil, apperr.Auth(msgInvalidCredentials)
	}
	return s.issue(user, false)
}

// FederatedSignup reconciles a Google identity given as separate profile fields.
func (s *AuthService) FederatedSignup(ctx context.Context, in FederatedSignupInput) (*AuthResult, error) {
	if err := validateInput(s.validate, in, "Email is required"); err != nil {
		return nil, err
	}
	return s.reconcile(ctx, federatedIdentity{
		email:     in.Email,
		firstname: in.Firstname,
		lastname:  in.Lastname,
		username:  in.Username,
		picture:   in.ProfilePicture,
	})
}

// FederatedLogin reconciles a Google identity given as a single display name.
// Only the first two whitespace-separated tokens of Name are kept.
func (s *AuthService) FederatedLogin(ctx context.Context, in FederatedLoginInput) (*AuthResult, error) {
	if err := validateInput(s.validate, in, "Email is required"); err != nil {
		return nil, err
	}
	first, last := splitName(in.Name)
	return s.reconcile(ctx, federatedIdentity{
		email:     in.Email,
		firstname: first,
		lastname:  last,
		picture:   in.Picture,
	})
}

// ValidateToken returns the claims of a token issued by this service.
func (s *AuthService) ValidateToken(token string) (*Claims, error) {
	return s.tokens.Validate(token)
}

type federatedIdentity struct {
	email     string
	firstname string
	lastname  string
	username  string
	picture   string
}

// reconcile finds the user by email or creates one. An existing record is
// never modified, so repeating a login with different profile data is a no-op.
func (s *AuthService) reconcile(ctx context.Context, id federatedIdentity) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, id.email)
	if err == nil {
		return s.issue(user, false)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Internal(msgInternal, err)
	}

	user = &models.User{
		Firstname:      firstNonEmpty(id.firstname, defaultFirstname),
		Lastname:       id.lastname,
		Username:       firstNonEmpty(id.username, emailLocalPart(id.email)),
		Email:          id.email,
		Provider:       models.ProviderGoogle,
		ProfilePicture: id.picture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var dup *repositories.DuplicateError
		if !errors.As(err, &dup) {
			return nil, apperr.Internal(msgInternal, err)
		}
		if dup.Field != repositories.FieldEmail {
			return nil, apperr.Conflict(msgUsernameExists)
		}
		// A concurrent first login created the record; use it.
		existing, gerr := s.users.GetByEmail(ctx, id.email)
		if gerr != nil {
			return nil, apperr.Internal(msgInternal, gerr)
		}
		return s.issue(existing, false)
	}

	s.registered(user)
	return s.issue(user, true)
}

func (s *AuthService) issue(user *models.User, created bool) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}
	return &AuthResult{
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
		Created:  created,
	}, nil
}

func (s *AuthService) registered(user *models.User) {
	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("provider", string(user.Provider)))
	publishEvent(s.log, s.events, EventUserRegistered, UserRegisteredEvent{
		UserID:     user.ID,
		Username:   user.Username,
		Provider:   user.Provider,
		OccurredAt: time.Now().UTC(),
	})
}

// splitName keeps the first token as the first name and the second as the
// last name; any further tokens are dropped.
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

func emailLocalPart(email string) string {
	return strings.SplitN(email, "@", 2)[0]
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
