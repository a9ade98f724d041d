package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"trackshare/internal/model"
)

func TestNewsletterService_SendWeekly(t *testing.T) {
	var gotCutoff time.Time
	postRepo := &mockPostRepository{
		listOlderThanFn: func(ctx context.Context, cutoff time.Time) ([]model.Post, error) {
			gotCutoff = cutoff
			return []model.Post{
				{ID: 1, Body: "First Track", URL: "aaa111"},
				{ID: 2, Body: "Second Track", URL: "bbb222"},
			}, nil
		},
	}
	userRepo := &mockUserRepository{
		listSubscribedFn: func(ctx context.Context) ([]string, error) {
			return []string{"a@example.com", "b@example.com"}, nil
		},
	}
	mailer := &mockMailer{}
	svc := NewNewsletterService(userRepo, postRepo, mailer)

	count, err := svc.SendWeekly(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	// Same-day posts stay out of the digest
	if age := time.Since(gotCutoff); age < 23*time.Hour || age > 25*time.Hour {
		t.Errorf("cutoff is %v old, want about 24h", age)
	}

	if len(mailer.sendCalls) != 1 {
		t.Fatalf("Send called %d times, want 1", len(mailer.sendCalls))
	}
	sent := mailer.sendCalls[0]
	if sent.Subject != NewsletterSubject {
		t.Errorf("subject = %q, want %q", sent.Subject, NewsletterSubject)
	}
	if len(sent.Recipients) != 2 {
		t.Errorf("recipients = %v", sent.Recipients)
	}
	if !strings.Contains(sent.Body, "First Track - https://www.youtube.com/watch?v=aaa111") {
		t.Errorf("body missing watch link: %q", sent.Body)
	}
}

func TestNewsletterService_SendWeekly_NoSubscribers(t *testing.T) {
	userRepo := &mockUserRepository{
		listSubscribedFn: func(ctx context.Context) ([]string, error) {
			return nil, nil
		},
	}
	mailer := &mockMailer{}
	svc := NewNewsletterService(userRepo, &mockPostRepository{}, mailer)

	count, err := svc.SendWeekly(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if len(mailer.sendCalls) != 0 {
		t.Error("no mail should go out without subscribers")
	}
}
