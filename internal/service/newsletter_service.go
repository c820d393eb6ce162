package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
)

// NewsletterService handles the storefront footer signup.
type NewsletterService struct {
	repo repository.NewsletterRepository
}

func NewNewsletterService(repo repository.NewsletterRepository) *NewsletterService {
	return &NewsletterService{repo: repo}
}

// Subscribe stores the address once. created is false for repeat signups.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*entity.NewsletterSubscriber, bool, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return nil, false, ErrInvalidEmail
	}

	sub, created, err := s.repo.Subscribe(ctx, strings.ToLower(addr.Address))
	if err != nil {
		return nil, false, fmt.Errorf("failed to subscribe: %w", err)
	}
	if created {
		slog.Info("Service: Newsletter signup", "email", sub.Email)
	}
	return sub, created, nil
}
