package service

import (
	"context"
	"strings"

	"trackshare/internal/model"
	"trackshare/internal/repository"
)

// PostService handles post CRUD and the play counter. Ownership and
// role preconditions are enforced here; handlers only marshal.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

func validatePostFields(url, body string) error {
	if strings.TrimSpace(body) == "" {
		return model.ErrBodyRequired
	}
	if strings.TrimSpace(url) == "" {
		return model.ErrURLRequired
	}
	if len(body) > model.MaxPostBodyLength {
		return model.ErrBodyTooLong
	}
	if len(url) > model.MaxPostURLLength {
		return model.ErrURLTooLong
	}
	return nil
}

// Create inserts a post owned by userID. The caller must hold the
// poster flag.
func (s *PostService) Create(ctx context.Context, userID int64, req *model.CreatePostRequest) (*model.Post, error) {
	if err := validatePostFields(req.URL, req.Body); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Poster {
		return nil, model.ErrNotPoster
	}

	return s.postRepo.Create(ctx, userID, req.URL, req.Body)
}

// GetByID returns a single post with its author summary.
func (s *PostService) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// Update mutates body and URL. Only the owner may update.
func (s *PostService) Update(ctx context.Context, postID, userID int64, req *model.UpdatePostRequest) (*model.Post, error) {
	if err := validatePostFields(req.URL, req.Body); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, model.ErrNotPostOwner
	}

	if err := s.postRepo.Update(ctx, postID, req.URL, req.Body); err != nil {
		return nil, err
	}
	post.URL = req.URL
	post.Body = req.Body

	return post, nil
}

// Delete removes a post. The owner or an admin may delete.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.UserID != userID {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.Admin {
			return model.ErrNotPostOwner
		}
	}

	return s.postRepo.Delete(ctx, postID)
}

// DeleteAll removes every post. Admin only; the handler guards the
// route, this is the last line of defense.
func (s *PostService) DeleteAll(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Admin {
		return model.ErrNotPostOwner
	}
	return s.postRepo.DeleteAll(ctx)
}

// IncrementPlays bumps the play counter. No upper bound.
func (s *PostService) IncrementPlays(ctx context.Context, postID int64) error {
	return s.postRepo.IncrementPlays(ctx, postID)
}

// ListAll returns every post ascending by id, for the admin panel.
func (s *PostService) ListAll(ctx context.Context) ([]model.Post, error) {
	return s.postRepo.ListAll(ctx)
}
