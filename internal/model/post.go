package model

import (
	"errors"
	"time"
)

// Post is a short blurb pointing at an external video track.
// URL holds the external video ID, not a full address.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Body      string    `db:"body" json:"body"`
	URL       string    `db:"url" json:"url"`
	Plays     int       `db:"plays" json:"plays"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Joined field, populated for feed and profile listings.
	Author *UserSummary `json:"author,omitempty"`
}

// PostsPerPage is the fixed page size for every post listing.
const PostsPerPage = 16

const (
	MaxPostBodyLength = 140
	MaxPostURLLength  = 140
)

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Body string `json:"body"`
	URL  string `json:"url"`
}

// UpdatePostRequest is the request body for updating a post.
type UpdatePostRequest struct {
	Body string `json:"body"`
	URL  string `json:"url"`
}

// PostPage is one offset-paginated page of posts. NextPage/PrevPage
// are nil at the ends of the listing; a page past the end carries an
// empty Posts slice and no NextPage.
type PostPage struct {
	Posts    []Post `json:"posts"`
	Page     int    `json:"page"`
	NextPage *int   `json:"next_page,omitempty"`
	PrevPage *int   `json:"prev_page,omitempty"`
}

// Post errors
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("not the owner of this post")
	ErrNotPoster    = errors.New("posting privileges required")
	ErrBodyRequired = errors.New("body is required")
	ErrURLRequired  = errors.New("url is required")
	ErrBodyTooLong  = errors.New("body too long")
	ErrURLTooLong   = errors.New("url too long")
)
