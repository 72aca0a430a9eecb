package models

import "time"

// Provider identifies how a user proves their identity.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// Visibility controls who may see a profile.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// User is a persisted identity. Local identities carry a bcrypt hash in
// PasswordHash; federated identities never have one.
type User struct {
	ID                string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Firstname         string     `json:"firstname" gorm:"type:varchar(100)"`
	Lastname          string     `json:"lastname" gorm:"type:varchar(100)"`
	Username          string     `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email             string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Provider          Provider   `json:"provider" gorm:"type:varchar(20);not null;default:local"`
	PasswordHash      *string    `json:"-" gorm:"type:varchar(255)"`
	ProfilePicture    string     `json:"profilePicture" gorm:"type:varchar(512)"`
	ProfileVisibility Visibility `json:"profileVisibility" gorm:"type:varchar(20);not null;default:public"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// LocalCredential returns the password hash for a local identity. ok is
// false for federated identities, which cannot be verified by password.
func (u *User) LocalCredential() (hash string, ok bool) {
	if u.Provider != ProviderLocal || u.PasswordHash == nil || *u.PasswordHash == "" {
		return "", false
	}
	return *u.PasswordHash, true
}

// Profile is the public view of a User. It has no credential fields.
type Profile struct {
	ID                string     `json:"id"`
	Firstname         string     `json:"firstname"`
	Lastname          string     `json:"lastname"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Provider          Provider   `json:"provider"`
	ProfilePicture    string     `json:"profilePicture"`
	ProfileVisibility Visibility `json:"profileVisibility"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{
		ID:                u.ID,
		Firstname:         u.Firstname,
		Lastname:          u.Lastname,
		Username:          u.Username,
		Email:             u.Email,
		Provider:          u.Provider,
		ProfilePicture:    u.ProfilePicture,
		ProfileVisibility: u.ProfileVisibility,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
