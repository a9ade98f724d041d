package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"trackshare/internal/repository"
)

const (
	// NewsletterSubject is the weekly digest subject line.
	NewsletterSubject = "Your Playlist This Week"

	// newsletterMinAge keeps same-day posts out of the digest.
	newsletterMinAge = 24 * time.Hour
)

// NewsletterService sends the weekly digest: every post older than a
// day, mailed to every subscribed user. This is a synchronous,
// request-triggered loop, not a scheduled job.
type NewsletterService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	mailer   Mailer
}

func NewNewsletterService(userRepo repository.UserRepository, postRepo repository.PostRepository, mailer Mailer) *NewsletterService {
	return &NewsletterService{
		userRepo: userRepo,
		postRepo: postRepo,
		mailer:   mailer,
	}
}

// SendWeekly builds and dispatches the digest. Returns the number of
// recipients mailed.
func (s *NewsletterService) SendWeekly(ctx context.Context) (int, error) {
	recipients, err := s.userRepo.ListSubscribedEmails(ctx)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		log.Println("[Newsletter] No subscribed recipients, skipping")
		return 0, nil
	}

	posts, err := s.postRepo.ListOlderThan(ctx, time.Now().Add(-newsletterMinAge))
	if err != nil {
		return 0, err
	}

	var b strings.Builder
	for _, post := range posts {
		fmt.Fprintf(&b, "%s - https://www.youtube.com/watch?v=%s\n", post.Body, post.URL)
	}

	if err := s.mailer.Send(ctx, NewsletterSubject, recipients, b.String()); err != nil {
		return 0, fmt.Errorf("send newsletter: %w", err)
	}

	log.Printf("[Newsletter] Sent digest: recipients=%d posts=%d", len(recipients), len(posts))
	return len(recipients), nil
}
