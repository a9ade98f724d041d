package service

import (
	"context"
	"time"

	"trackshare/internal/model"
)

// =============================================================================
// MOCKS
// =============================================================================
//
// The services depend on the repository INTERFACES, not the sqlx
// implementations, so tests swap in mocks with controlled behavior.
// Each mock exposes function fields so a test can override just the
// calls it cares about; everything else falls back to a harmless
// default.

type mockUserRepository struct {
	createFn              func(ctx context.Context, user *model.User) error
	getByIDFn             func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn       func(ctx context.Context, username string) (*model.User, error)
	getByEmailFn          func(ctx context.Context, email string) (*model.User, error)
	existsByUsernameFn    func(ctx context.Context, username string) (bool, error)
	existsByEmailFn       func(ctx context.Context, email string) (bool, error)
	updateProfileFn       func(ctx context.Context, user *model.User) error
	updatePasswordFn      func(ctx context.Context, userID int64, passwordHash string) error
	setPosterFn           func(ctx context.Context, userID int64, poster bool) error
	setReceivesMailFn     func(ctx context.Context, userID int64, receives bool) error
	touchLastSeenFn       func(ctx context.Context, userID int64) error
	deleteFn              func(ctx context.Context, userID int64) error
	deleteAllNonAdminFn   func(ctx context.Context) error
	listAllFn             func(ctx context.Context) ([]model.User, error)
	listSubscribedFn      func(ctx context.Context) ([]string, error)

	createCalls         []*model.User
	updatePasswordCalls []updatePasswordCall
}

type updatePasswordCall struct {
	UserID int64
	Hash   string
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	m.updatePasswordCalls = append(m.updatePasswordCalls, updatePasswordCall{UserID: userID, Hash: passwordHash})
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, userID, passwordHash)
	}
	return nil
}

func (m *mockUserRepository) SetPoster(ctx context.Context, userID int64, poster bool) error {
	if m.setPosterFn != nil {
		return m.setPosterFn(ctx, userID, poster)
	}
	return nil
}

func (m *mockUserRepository) SetReceivesMail(ctx context.Context, userID int64, receives bool) error {
	if m.setReceivesMailFn != nil {
		return m.setReceivesMailFn(ctx, userID, receives)
	}
	return nil
}

func (m *mockUserRepository) TouchLastSeen(ctx context.Context, userID int64) error {
	if m.touchLastSeenFn != nil {
		return m.touchLastSeenFn(ctx, userID)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

func (m *mockUserRepository) DeleteAllNonAdmin(ctx context.Context) error {
	if m.deleteAllNonAdminFn != nil {
		return m.deleteAllNonAdminFn(ctx)
	}
	return nil
}

func (m *mockUserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) ListSubscribedEmails(ctx context.Context) ([]string, error) {
	if m.listSubscribedFn != nil {
		return m.listSubscribedFn(ctx)
	}
	return nil, nil
}

type mockPostRepository struct {
	createFn         func(ctx context.Context, userID int64, url, body string) (*model.Post, error)
	getByIDFn        func(ctx context.Context, postID int64) (*model.Post, error)
	updateFn         func(ctx context.Context, postID int64, url, body string) error
	deleteFn         func(ctx context.Context, postID int64) error
	deleteAllFn      func(ctx context.Context) error
	incrementPlaysFn func(ctx context.Context, postID int64) error
	listAllFn        func(ctx context.Context) ([]model.Post, error)
	listPageFn       func(ctx context.Context, offset, limit int) ([]model.Post, error)
	listByUserPageFn func(ctx context.Context, userID int64, offset, limit int) ([]model.Post, error)
	listFeedPageFn   func(ctx context.Context, userID int64, offset, limit int) ([]model.Post, error)
	listOlderThanFn  func(ctx context.Context, cutoff time.Time) ([]model.Post, error)
}

func (m *mockPostRepository) Create(ctx context.Context, userID int64, url, body string) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, url, body)
	}
	return &model.Post{ID: 1, UserID: userID, URL: url, Body: body}, nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Update(ctx context.Context, postID int64, url, body string) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, postID, url, body)
	}
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID)
	}
	return nil
}

func (m *mockPostRepository) DeleteAll(ctx context.Context) error {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx)
	}
	return nil
}

func (m *mockPostRepository) IncrementPlays(ctx context.Context, postID int64) error {
	if m.incrementPlaysFn != nil {
		return m.incrementPlaysFn(ctx, postID)
	}
	return nil
}

func (m *mockPostRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockPostRepository) ListPage(ctx context.Context, offset, limit int) ([]model.Post, error) {
	if m.listPageFn != nil {
		return m.listPageFn(ctx, offset, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) ListByUserPage(ctx context.Context, userID int64, offset, limit int) ([]model.Post, error) {
	if m.listByUserPageFn != nil {
		return m.listByUserPageFn(ctx, userID, offset, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) ListFeedPage(ctx context.Context, userID int64, offset, limit int) ([]model.Post, error) {
	if m.listFeedPageFn != nil {
		return m.listFeedPageFn(ctx, userID, offset, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]model.Post, error) {
	if m.listOlderThanFn != nil {
		return m.listOlderThanFn(ctx, cutoff)
	}
	return nil, nil
}

type mockFollowRepository struct {
	createFn       func(ctx context.Context, followerID, followeeID int64) (bool, error)
	deleteFn       func(ctx context.Context, followerID, followeeID int64) error
	existsFn       func(ctx context.Context, followerID, followeeID int64) (bool, error)
	getFollowersFn func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	getFollowingFn func(ctx context.Context, userID int64) ([]model.UserSummary, error)

	createCalls []followEdge
	deleteCalls []followEdge
}

type followEdge struct {
	FollowerID int64
	FolloweeID int64
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	m.createCalls = append(m.createCalls, followEdge{followerID, followeeID})
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	m.deleteCalls = append(m.deleteCalls, followEdge{followerID, followeeID})
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID)
	}
	return nil, nil
}

type mockSessionStore struct {
	createFn           func(ctx context.Context, userID int64) (*model.Session, error)
	getFn              func(ctx context.Context, token string) (*model.Session, error)
	deleteFn           func(ctx context.Context, token string) error
	deleteAllForUserFn func(ctx context.Context, userID int64) error

	deleteAllCalls []int64
}

func (m *mockSessionStore) Create(ctx context.Context, userID int64) (*model.Session, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID)
	}
	return &model.Session{Token: "test-token", UserID: userID}, nil
}

func (m *mockSessionStore) Get(ctx context.Context, token string) (*model.Session, error) {
	if m.getFn != nil {
		return m.getFn(ctx, token)
	}
	return nil, model.ErrSessionNotFound
}

func (m *mockSessionStore) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionStore) DeleteAllForUser(ctx context.Context, userID int64) error {
	m.deleteAllCalls = append(m.deleteAllCalls, userID)
	if m.deleteAllForUserFn != nil {
		return m.deleteAllForUserFn(ctx, userID)
	}
	return nil
}

type mockMailer struct {
	sendFn func(ctx context.Context, subject string, recipients []string, body string) error

	sendCalls []sendCall
}

type sendCall struct {
	Subject    string
	Recipients []string
	Body       string
}

func (m *mockMailer) Send(ctx context.Context, subject string, recipients []string, body string) error {
	m.sendCalls = append(m.sendCalls, sendCall{Subject: subject, Recipients: recipients, Body: body})
	if m.sendFn != nil {
		return m.sendFn(ctx, subject, recipients, body)
	}
	return nil
}
