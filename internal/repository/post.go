package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"trackshare/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postWithAuthor flattens the author join for sqlx scanning.
type postWithAuthor struct {
	model.Post
	AuthorID        int64   `db:"author_id"`
	AuthorUsername  string  `db:"author_username"`
	AuthorEmail     string  `db:"author_email"`
	AuthorAvatarURL *string `db:"author_avatar_url"`
}

const postAuthorSelect = `
	SELECT p.id, p.user_id, p.body, p.url, p.plays, p.created_at, p.updated_at,
	       u.id AS author_id, u.username AS author_username, u.email AS author_email,
	       u.avatar_url AS author_avatar_url
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

func attachAuthors(rows []postWithAuthor) []model.Post {
	posts := make([]model.Post, len(rows))
	for i, row := range rows {
		post := row.Post
		post.Author = &model.UserSummary{
			ID:        row.AuthorID,
			Username:  row.AuthorUsername,
			Email:     row.AuthorEmail,
			AvatarURL: row.AuthorAvatarURL,
		}
		posts[i] = post
	}
	return posts
}

func (r *postRepository) Create(ctx context.Context, userID int64, url, body string) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, url, body)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, body, url, plays, created_at, updated_at
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, userID, url, body)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := postAuthorSelect + ` WHERE p.id = $1`

	var row postWithAuthor
	err := r.db.GetContext(ctx, &row, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	posts := attachAuthors([]postWithAuthor{row})
	return &posts[0], nil
}

func (r *postRepository) Update(ctx context.Context, postID int64, url, body string) error {
	query := `UPDATE posts SET url = $1, body = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, url, body, postID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return fmt.Errorf("delete all posts: %w", err)
	}
	return nil
}

// IncrementPlays relies on the store's row lock for atomicity, so N
// concurrent increments always land as N.
func (r *postRepository) IncrementPlays(ctx context.Context, postID int64) error {
	query := `UPDATE posts SET plays = plays + 1 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("increment plays: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	query := postAuthorSelect + ` ORDER BY p.id ASC`

	var rows []postWithAuthor
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return attachAuthors(rows), nil
}

func (r *postRepository) ListPage(ctx context.Context, offset, limit int) ([]model.Post, error) {
	query := postAuthorSelect + `
		ORDER BY p.created_at DESC, p.id DESC
		OFFSET $1 LIMIT $2
	`
	var rows []postWithAuthor
	err := r.db.SelectContext(ctx, &rows, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list post page: %w", err)
	}

	return attachAuthors(rows), nil
}

func (r *postRepository) ListByUserPage(ctx context.Context, userID int64, offset, limit int) ([]model.Post, error) {
	query := postAuthorSelect + `
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id DESC
		OFFSET $2 LIMIT $3
	`
	var rows []postWithAuthor
	err := r.db.SelectContext(ctx, &rows, query, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}

	return attachAuthors(rows), nil
}

// ListFeedPage pulls the personal feed straight off the follows edge
// table: posts by followees plus the user's own posts.
func (r *postRepository) ListFeedPage(ctx context.Context, userID int64, offset, limit int) ([]model.Post, error) {
	query := postAuthorSelect + `
		WHERE p.user_id = $1
		   OR p.user_id IN (SELECT followee_id FROM follows WHERE follower_id = $1)
		ORDER BY p.created_at DESC, p.id DESC
		OFFSET $2 LIMIT $3
	`
	var rows []postWithAuthor
	err := r.db.SelectContext(ctx, &rows, query, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list feed page: %w", err)
	}

	return attachAuthors(rows), nil
}

func (r *postRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]model.Post, error) {
	query := postAuthorSelect + `
		WHERE p.created_at < $1
		ORDER BY p.created_at DESC, p.id DESC
	`
	var rows []postWithAuthor
	err := r.db.SelectContext(ctx, &rows, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list posts older than cutoff: %w", err)
	}

	return attachAuthors(rows), nil
}
