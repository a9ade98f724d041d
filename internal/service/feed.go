package service

import (
	"context"

	"trackshare/internal/model"
	"trackshare/internal/repository"
)

// FeedService composes paginated post listings. Pagination is
// offset-based with a fixed page size: page N is rows
// (N-1)*size .. N*size-1, newest first. Pages past the end come back
// empty with no next page rather than erroring.
type FeedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

func NewFeedService(postRepo repository.PostRepository, userRepo repository.UserRepository) *FeedService {
	return &FeedService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// Discover returns one page of the global feed: every post,
// timestamp-descending.
func (s *FeedService) Discover(ctx context.Context, page int) (*model.PostPage, error) {
	page = normalizePage(page)

	posts, err := s.postRepo.ListPage(ctx, (page-1)*model.PostsPerPage, model.PostsPerPage+1)
	if err != nil {
		return nil, err
	}

	return buildPage(posts, page), nil
}

// Personal returns one page of the user's feed: posts by followed
// users plus the user's own, timestamp-descending. A user with zero
// follows still sees their own posts.
func (s *FeedService) Personal(ctx context.Context, userID int64, page int) (*model.PostPage, error) {
	page = normalizePage(page)

	posts, err := s.postRepo.ListFeedPage(ctx, userID, (page-1)*model.PostsPerPage, model.PostsPerPage+1)
	if err != nil {
		return nil, err
	}

	return buildPage(posts, page), nil
}

// UserPosts returns one page of a single user's posts for their
// profile, timestamp-descending.
func (s *FeedService) UserPosts(ctx context.Context, username string, page int) (*model.User, *model.PostPage, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	page = normalizePage(page)
	posts, err := s.postRepo.ListByUserPage(ctx, user.ID, (page-1)*model.PostsPerPage, model.PostsPerPage+1)
	if err != nil {
		return nil, nil, err
	}

	return user, buildPage(posts, page), nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// buildPage trims the probe row used to detect a next page and fills
// in the next/prev page numbers.
func buildPage(posts []model.Post, page int) *model.PostPage {
	result := &model.PostPage{Page: page}

	if len(posts) > model.PostsPerPage {
		posts = posts[:model.PostsPerPage]
		next := page + 1
		result.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		result.PrevPage = &prev
	}

	if posts == nil {
		posts = []model.Post{}
	}
	result.Posts = posts

	return result
}
