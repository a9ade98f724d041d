package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"trackshare/internal/model"
	"trackshare/internal/repository"
	"trackshare/internal/session"
)

// TempPasswordLength matches the temporary password issued on
// forgot-password: 10 characters drawn from uppercase letters and digits.
const TempPasswordLength = 10

const tempPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// UserService handles business logic for user accounts: registration,
// login, profile edits, password lifecycle, and the admin actions.
type UserService struct {
	repo     repository.UserRepository
	sessions session.Store
	mailer   Mailer
}

func NewUserService(repo repository.UserRepository, sessions session.Store, mailer Mailer) *UserService {
	return &UserService{
		repo:     repo,
		sessions: sessions,
		mailer:   mailer,
	}
}

// Register creates a new user account. Username and email are globally
// unique; the password confirmation must match.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("username is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	if req.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if req.Password != req.Password2 {
		return nil, model.ErrPasswordMismatch
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether username exists or not
		return nil, model.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername retrieves a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// UpdateProfile applies the editable profile fields. A username change
// re-checks global uniqueness.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	newUsername := strings.TrimSpace(req.Username)
	if newUsername == "" {
		return nil, fmt.Errorf("username is required")
	}
	if newUsername != user.Username {
		exists, err := s.repo.ExistsByUsername(ctx, newUsername)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			return nil, model.ErrUsernameExists
		}
	}

	user.Username = newUsername
	user.Bio = req.Bio
	user.Twitter = req.Twitter
	user.Instagram = req.Instagram
	user.Github = req.Github

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetAvatar records a freshly uploaded avatar on the user.
func (s *UserService) SetAvatar(ctx context.Context, userID int64, url, key string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.AvatarURL = &url
	user.AvatarKey = &key
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword rotates a signed-in user's password. The current
// password must verify and the confirmation must match. Every live
// session is revoked so the user has to log back in.
func (s *UserService) ResetPassword(ctx context.Context, userID int64, req *model.ResetPasswordRequest) error {
	if req.NewPassword == "" {
		return fmt.Errorf("new password is required")
	}
	if req.NewPassword != req.NewPassword2 {
		return model.ErrPasswordMismatch
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return err
	}

	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		log.Printf("[UserService] Failed to revoke sessions after password reset: user=%d err=%v", userID, err)
	}

	return nil
}

// ForgotPassword overwrites the account's password with a random
// temporary one and mails it to the user. The temporary password has
// no expiry; callers respond identically whether or not the email is
// known, so this returns ErrUserNotFound only for the handler to
// swallow.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return fmt.Errorf("failed to generate temporary password: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash temporary password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}

	if err := s.sessions.DeleteAllForUser(ctx, user.ID); err != nil {
		log.Printf("[UserService] Failed to revoke sessions on password recovery: user=%d err=%v", user.ID, err)
	}

	body := "Your temporary password is: " + tempPassword +
		".\n Make sure to reset your password when you log back in!"
	if err := s.mailer.Send(ctx, "Your Temporary Password", []string{user.Email}, body); err != nil {
		// The hash is already rotated at this point; surface the
		// delivery failure rather than pretending the mail went out.
		return fmt.Errorf("failed to send temporary password: %w", err)
	}

	return nil
}

// GrantPoster gives the user posting privileges (post-checkout landing).
func (s *UserService) GrantPoster(ctx context.Context, userID int64) error {
	return s.repo.SetPoster(ctx, userID, true)
}

// SetMailSubscription flips the newsletter flag on a user by username.
func (s *UserService) SetMailSubscription(ctx context.Context, username string, subscribed bool) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetReceivesMail(ctx, user.ID, subscribed); err != nil {
		return nil, err
	}
	user.ReceivesMail = subscribed
	return user, nil
}

// TouchLastSeen records activity; failures are logged, not surfaced.
func (s *UserService) TouchLastSeen(ctx context.Context, userID int64) {
	if err := s.repo.TouchLastSeen(ctx, userID); err != nil {
		log.Printf("[UserService] Failed to touch last seen: user=%d err=%v", userID, err)
	}
}

// DeleteByUsername removes a user and revokes their sessions.
// Admin-flagged users are never deleted.
func (s *UserService) DeleteByUsername(ctx context.Context, username string) error {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return err
	}

	if err := s.sessions.DeleteAllForUser(ctx, user.ID); err != nil {
		log.Printf("[UserService] Failed to revoke sessions of deleted user=%d err=%v", user.ID, err)
	}

	return nil
}

// DeleteAllUsers removes every non-admin user.
func (s *UserService) DeleteAllUsers(ctx context.Context) error {
	return s.repo.DeleteAllNonAdmin(ctx)
}

// ListUsers returns all users ordered by username, for the admin panel.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListAll(ctx)
}

func generateTempPassword() (string, error) {
	chars := make([]byte, TempPasswordLength)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range chars {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		chars[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(chars), nil
}
