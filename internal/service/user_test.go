package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"trackshare/internal/model"
)

func newTestUserService(repo *mockUserRepository, sessions *mockSessionStore, mailer *mockMailer) *UserService {
	if repo == nil {
		repo = &mockUserRepository{}
	}
	if sessions == nil {
		sessions = &mockSessionStore{}
	}
	if mailer == nil {
		mailer = &mockMailer{}
	}
	return NewUserService(repo, sessions, mailer)
}

// =============================================================================
// REGISTER TESTS
// =============================================================================

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := newTestUserService(mockRepo, nil, nil)

	req := &model.RegisterRequest{
		Username:  "testuser",
		Email:     "test@example.com",
		Password:  "securepassword123",
		Password2: "securepassword123",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if user.Username != req.Username {
		t.Errorf("username = %q, want %q", user.Username, req.Username)
	}
	if user.Email != req.Email {
		t.Errorf("email = %q, want %q", user.Email, req.Email)
	}

	// Password must be hashed, never stored as given
	if user.PasswordHash == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}

	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	tests := []struct {
		name           string
		req            *model.RegisterRequest
		usernameExists bool
		emailExists    bool
		wantErr        error
	}{
		{
			name: "password confirmation mismatch",
			req: &model.RegisterRequest{
				Username:  "testuser",
				Email:     "test@example.com",
				Password:  "password123",
				Password2: "password124",
			},
			wantErr: model.ErrPasswordMismatch,
		},
		{
			name: "duplicate username",
			req: &model.RegisterRequest{
				Username:  "taken",
				Email:     "new@example.com",
				Password:  "password123",
				Password2: "password123",
			},
			usernameExists: true,
			wantErr:        model.ErrUsernameExists,
		},
		{
			name: "duplicate email",
			req: &model.RegisterRequest{
				Username:  "newuser",
				Email:     "taken@example.com",
				Password:  "password123",
				Password2: "password123",
			},
			emailExists: true,
			wantErr:     model.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{
				existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
					return tt.usernameExists, nil
				},
				existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
					return tt.emailExists, nil
				},
			}
			svc := newTestUserService(mockRepo, nil, nil)

			user, err := svc.Register(context.Background(), tt.req)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if user != nil {
				t.Error("user should be nil when registration fails")
			}
			if len(mockRepo.createCalls) != 0 {
				t.Error("Create should not be called when validation fails")
			}
		})
	}
}

func TestUserService_Register_ConcurrentDuplicate(t *testing.T) {
	// A second registration can pass the exists-checks before the first
	// commits; the unique constraint surfaces through Create and must
	// keep its domain identity.
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			return model.ErrUsernameExists
		},
	}
	svc := newTestUserService(mockRepo, nil, nil)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username:  "testuser",
		Email:     "test@example.com",
		Password:  "password123",
		Password2: "password123",
	})
	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("error = %v, want %v", err, model.ErrUsernameExists)
	}
}

func TestUserService_Register_EmptyFields(t *testing.T) {
	svc := newTestUserService(nil, nil, nil)

	for _, req := range []*model.RegisterRequest{
		{Email: "a@b.c", Password: "x", Password2: "x"},
		{Username: "user", Password: "x", Password2: "x"},
		{Username: "user", Email: "a@b.c"},
	} {
		if _, err := svc.Register(context.Background(), req); err == nil {
			t.Errorf("expected error for %+v, got nil", req)
		}
	}
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestUserService_Login(t *testing.T) {
	validPassword := "correctpassword"
	validHash, _ := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)

	testUser := &model.User{
		ID:           1,
		Username:     "testuser",
		PasswordHash: string(validHash),
	}

	tests := []struct {
		name          string
		username      string
		password      string
		mockGetByUser func(ctx context.Context, username string) (*model.User, error)
		wantErr       error
		wantUser      bool
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr:  nil,
			wantUser: true,
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "anypassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, model.ErrUserNotFound
			},
			wantErr:  model.ErrInvalidCredentials, // Don't reveal user doesn't exist
			wantUser: false,
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr:  model.ErrInvalidCredentials,
			wantUser: false,
		},
		{
			name:     "database error",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, errors.New("database error")
			},
			wantErr:  model.ErrInvalidCredentials, // Don't reveal internal errors
			wantUser: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{getByUsernameFn: tt.mockGetByUser}
			svc := newTestUserService(mockRepo, nil, nil)

			user, err := svc.Login(context.Background(), &model.LoginRequest{
				Username: tt.username,
				Password: tt.password,
			})

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantUser && user == nil {
				t.Error("expected user, got nil")
			}
			if !tt.wantUser && user != nil {
				t.Error("expected nil user")
			}
		})
	}
}

// =============================================================================
// PASSWORD LIFECYCLE TESTS
// =============================================================================

func TestUserService_ResetPassword(t *testing.T) {
	currentPassword := "oldpassword"
	currentHash, _ := bcrypt.GenerateFromPassword([]byte(currentPassword), bcrypt.MinCost)

	testUser := &model.User{ID: 7, Username: "testuser", PasswordHash: string(currentHash)}

	t.Run("success revokes all sessions", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
				return testUser, nil
			},
		}
		sessions := &mockSessionStore{}
		svc := newTestUserService(mockRepo, sessions, nil)

		err := svc.ResetPassword(context.Background(), 7, &model.ResetPasswordRequest{
			Password:     currentPassword,
			NewPassword:  "newpassword",
			NewPassword2: "newpassword",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(mockRepo.updatePasswordCalls) != 1 {
			t.Fatalf("UpdatePassword called %d times, want 1", len(mockRepo.updatePasswordCalls))
		}
		if len(sessions.deleteAllCalls) != 1 || sessions.deleteAllCalls[0] != 7 {
			t.Errorf("sessions not revoked for user 7: %v", sessions.deleteAllCalls)
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
				return testUser, nil
			},
		}
		svc := newTestUserService(mockRepo, nil, nil)

		err := svc.ResetPassword(context.Background(), 7, &model.ResetPasswordRequest{
			Password:     "notthepassword",
			NewPassword:  "newpassword",
			NewPassword2: "newpassword",
		})
		if !errors.Is(err, model.ErrInvalidCredentials) {
			t.Errorf("error = %v, want %v", err, model.ErrInvalidCredentials)
		}
		if len(mockRepo.updatePasswordCalls) != 0 {
			t.Error("password should not change when verification fails")
		}
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		svc := newTestUserService(nil, nil, nil)

		err := svc.ResetPassword(context.Background(), 7, &model.ResetPasswordRequest{
			Password:     currentPassword,
			NewPassword:  "newpassword",
			NewPassword2: "different",
		})
		if !errors.Is(err, model.ErrPasswordMismatch) {
			t.Errorf("error = %v, want %v", err, model.ErrPasswordMismatch)
		}
	})
}

func TestUserService_ForgotPassword(t *testing.T) {
	testUser := &model.User{ID: 3, Username: "testuser", Email: "test@example.com"}

	mockRepo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return testUser, nil
		},
	}
	sessions := &mockSessionStore{}
	mailer := &mockMailer{}
	svc := newTestUserService(mockRepo, sessions, mailer)

	if err := svc.ForgotPassword(context.Background(), "test@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mockRepo.updatePasswordCalls) != 1 {
		t.Fatalf("UpdatePassword called %d times, want 1", len(mockRepo.updatePasswordCalls))
	}
	if len(sessions.deleteAllCalls) != 1 || sessions.deleteAllCalls[0] != 3 {
		t.Errorf("sessions not revoked: %v", sessions.deleteAllCalls)
	}

	if len(mailer.sendCalls) != 1 {
		t.Fatalf("Send called %d times, want 1", len(mailer.sendCalls))
	}
	sent := mailer.sendCalls[0]
	if sent.Subject != "Your Temporary Password" {
		t.Errorf("subject = %q", sent.Subject)
	}
	if len(sent.Recipients) != 1 || sent.Recipients[0] != "test@example.com" {
		t.Errorf("recipients = %v", sent.Recipients)
	}
}

func TestUserService_ForgotPassword_UnknownEmail(t *testing.T) {
	mailer := &mockMailer{}
	svc := newTestUserService(&mockUserRepository{}, nil, mailer)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
	if len(mailer.sendCalls) != 0 {
		t.Error("no mail should go out for unknown addresses")
	}
}

func TestGenerateTempPassword_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := generateTempPassword()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pw) != TempPasswordLength {
			t.Fatalf("length = %d, want %d", len(pw), TempPasswordLength)
		}
		for _, c := range pw {
			if !strings.ContainsRune(tempPasswordAlphabet, c) {
				t.Fatalf("character %q outside A-Z0-9 alphabet", c)
			}
		}
	}
}

// =============================================================================
// ADMIN / ACCOUNT MANAGEMENT TESTS
// =============================================================================

func TestUserService_DeleteByUsername_RevokesSessions(t *testing.T) {
	mockRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 9, Username: username}, nil
		},
	}
	sessions := &mockSessionStore{}
	svc := newTestUserService(mockRepo, sessions, nil)

	if err := svc.DeleteByUsername(context.Background(), "doomed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions.deleteAllCalls) != 1 || sessions.deleteAllCalls[0] != 9 {
		t.Errorf("sessions not revoked: %v", sessions.deleteAllCalls)
	}
}

func TestUserService_SetMailSubscription(t *testing.T) {
	var gotReceives bool
	mockRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 4, Username: username, ReceivesMail: false}, nil
		},
		setReceivesMailFn: func(ctx context.Context, userID int64, receives bool) error {
			gotReceives = receives
			return nil
		},
	}
	svc := newTestUserService(mockRepo, nil, nil)

	user, err := svc.SetMailSubscription(context.Background(), "testuser", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gotReceives || !user.ReceivesMail {
		t.Error("subscription should be enabled")
	}
}
