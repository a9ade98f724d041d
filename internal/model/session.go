package model

import (
	"errors"
	"time"
)

// Session is an ephemeral login record. It never touches the users
// table; the token is the only handle a client holds.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "session"

var (
	ErrSessionNotFound = errors.New("session not found or expired")
)
