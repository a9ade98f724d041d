package service

import (
	"context"

	"trackshare/internal/model"
	"trackshare/internal/repository"
)

// FollowService owns the follow graph. The no-self-follow invariant
// lives here, not in the route layer.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow inserts the edge follower->followee. Following an already
// followed user is a no-op, so the call is idempotent.
func (s *FollowService) Follow(ctx context.Context, followerID int64, followeeUsername string) (*model.User, error) {
	followee, err := s.userRepo.GetByUsername(ctx, followeeUsername)
	if err != nil {
		return nil, err
	}

	if followerID == followee.ID {
		return nil, model.ErrCannotFollowSelf
	}

	if _, err := s.followRepo.Create(ctx, followerID, followee.ID); err != nil {
		return nil, err
	}

	return followee, nil
}

// Unfollow removes the edge if present; removing a missing edge leaves
// the graph in its prior state.
func (s *FollowService) Unfollow(ctx context.Context, followerID int64, followeeUsername string) (*model.User, error) {
	followee, err := s.userRepo.GetByUsername(ctx, followeeUsername)
	if err != nil {
		return nil, err
	}

	if followerID == followee.ID {
		return nil, model.ErrCannotFollowSelf
	}

	if err := s.followRepo.Delete(ctx, followerID, followee.ID); err != nil {
		return nil, err
	}

	return followee, nil
}

// IsFollowing answers whether follower currently follows followee.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followeeID)
}

// GetFollowers enumerates the users following the named user.
func (s *FollowService) GetFollowers(ctx context.Context, username string) (*model.FollowListResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	users, err := s.followRepo.GetFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.FollowListResponse{Users: users}, nil
}

// GetFollowing enumerates the users the named user follows.
func (s *FollowService) GetFollowing(ctx context.Context, username string) (*model.FollowListResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	users, err := s.followRepo.GetFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.FollowListResponse{Users: users}, nil
}
