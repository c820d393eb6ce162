package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
)

type newsletterRepository struct {
	db *sql.DB
}

func NewNewsletterRepository(db *sql.DB) repository.NewsletterRepository {
	return &newsletterRepository{db: db}
}

func (r *newsletterRepository) Subscribe(ctx context.Context, email string) (*entity.NewsletterSubscriber, bool, error) {
	sub := &entity.NewsletterSubscriber{Email: email}

	err := r.db.QueryRowContext(ctx,
		"INSERT INTO newsletter_subscribers (email, subscribed_at) VALUES ($1, $2) ON CONFLICT (email) DO NOTHING RETURNING subscribed_at",
		email, time.Now().UTC(),
	).Scan(&sub.SubscribedAt)
	if err == nil {
		return sub, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to insert subscriber: %w", err)
	}

	// ON CONFLICT DO NOTHING: already subscribed.
	err = r.db.QueryRowContext(ctx,
		"SELECT subscribed_at FROM newsletter_subscribers WHERE email = $1", email,
	).Scan(&sub.SubscribedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load subscriber: %w", err)
	}
	return sub, false, nil
}
