package repository

import (
	"context"
	"time"

	"trackshare/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	SetPoster(ctx context.Context, userID int64, poster bool) error
	SetReceivesMail(ctx context.Context, userID int64, receives bool) error
	TouchLastSeen(ctx context.Context, userID int64) error
	// Delete removes a user unless they hold the admin flag.
	Delete(ctx context.Context, userID int64) error
	// DeleteAllNonAdmin removes every user without the admin flag.
	DeleteAllNonAdmin(ctx context.Context) error
	// ListAll returns all users ordered by username ascending.
	ListAll(ctx context.Context) ([]model.User, error)
	// ListSubscribedEmails returns the emails of users with receives_mail set.
	ListSubscribedEmails(ctx context.Context) ([]string, error)
}

type PostRepository interface {
	Create(ctx context.Context, userID int64, url, body string) (*model.Post, error)
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	Update(ctx context.Context, postID int64, url, body string) error
	Delete(ctx context.Context, postID int64) error
	DeleteAll(ctx context.Context) error
	// IncrementPlays bumps the play counter in a single atomic UPDATE.
	IncrementPlays(ctx context.Context, postID int64) error
	// ListAll returns all posts ordered by id ascending (admin listing).
	ListAll(ctx context.Context) ([]model.Post, error)
	// ListPage returns one discover page: all posts, newest first.
	// limit+1 rows may be requested by callers to detect a next page.
	ListPage(ctx context.Context, offset, limit int) ([]model.Post, error)
	// ListByUserPage returns one page of a single user's posts, newest first.
	ListByUserPage(ctx context.Context, userID int64, offset, limit int) ([]model.Post, error)
	// ListFeedPage returns one page of posts authored by the user or by
	// anyone the user follows, newest first.
	ListFeedPage(ctx context.Context, userID int64, offset, limit int) ([]model.Post, error)
	// ListOlderThan returns posts created before the cutoff, newest first.
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]model.Post, error)
}

type FollowRepository interface {
	// Create inserts the edge if absent. Returns whether a row was inserted.
	Create(ctx context.Context, followerID, followeeID int64) (bool, error)
	// Delete removes the edge if present; removing an absent edge is not
	// an error.
	Delete(ctx context.Context, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	// GetFollowers enumerates users following userID, newest edge first.
	GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error)
	// GetFollowing enumerates users that userID follows, newest edge first.
	GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error)
}
