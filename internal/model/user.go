package model

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultAvatarSize is the pixel size requested for gravatar fallbacks.
const DefaultAvatarSize = 128

// User represents a durable user record. Session liveness is NOT part
// of this record; it lives in the session store.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // "-" hides from JSON output
	Bio          *string   `db:"bio" json:"bio"`
	Twitter      *string   `db:"twitter" json:"twitter"`
	Instagram    *string   `db:"instagram" json:"instagram"`
	Github       *string   `db:"github" json:"github"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url"`
	AvatarKey    *string   `db:"avatar_key" json:"-"`
	Poster       bool      `db:"poster" json:"poster"`
	Admin        bool      `db:"admin" json:"admin"`
	ReceivesMail bool      `db:"receives_mail" json:"receives_mail"`
	LastSeen     time.Time `db:"last_seen" json:"last_seen"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Avatar returns the user's avatar URL, falling back to a gravatar
// identicon derived from the lowercased email.
func (u *User) Avatar(size int) string {
	if u.AvatarURL != nil && *u.AvatarURL != "" {
		return *u.AvatarURL
	}
	return gravatarURL(u.Email, size)
}

func gravatarURL(email string, size int) string {
	digest := md5.Sum([]byte(strings.ToLower(email)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d",
		hex.EncodeToString(digest[:]), size)
}

// MarshalJSON substitutes the gravatar fallback so users without an
// uploaded avatar never serialize a null avatar_url.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	a := alias(u)
	if a.AvatarURL == nil || *a.AvatarURL == "" {
		url := u.Avatar(DefaultAvatarSize)
		a.AvatarURL = &url
	}
	return json.Marshal(a)
}

// UserSummary is the lightweight user shape embedded in feeds and
// follower listings. Email is carried only to derive the avatar
// fallback; it never serializes.
type UserSummary struct {
	ID        int64   `db:"id" json:"id"`
	Username  string  `db:"username" json:"username"`
	Email     string  `db:"email" json:"-"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url"`
}

// MarshalJSON applies the same avatar fallback as User.
func (s UserSummary) MarshalJSON() ([]byte, error) {
	type alias UserSummary
	a := alias(s)
	if a.AvatarURL == nil || *a.AvatarURL == "" {
		url := gravatarURL(s.Email, DefaultAvatarSize)
		a.AvatarURL = &url
	}
	return json.Marshal(a)
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ResetPasswordRequest rotates the password of a signed-in user.
type ResetPasswordRequest struct {
	Password     string `json:"password"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
}

// ForgotPasswordRequest triggers a temporary-password email.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	Twitter   *string `json:"twitter"`
	Instagram *string `json:"instagram"`
	Github    *string `json:"github"`
}

// ProfileResponse is a user profile plus the viewer's relationship
// and the user's own posts, newest first.
type ProfileResponse struct {
	User        *User    `json:"user"`
	IsFollowing bool     `json:"is_following"`
	Posts       PostPage `json:"posts"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to use a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to use a taken email
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPasswordMismatch is returned when a password confirmation does not match
	ErrPasswordMismatch = errors.New("passwords do not match")
)
