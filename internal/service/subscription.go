package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/Skotchmaster/fashion_shop/internal/events"
	"github.com/Skotchmaster/fashion_shop/internal/models"
	"github.com/Skotchmaster/fashion_shop/internal/notify"
	"github.com/Skotchmaster/fashion_shop/internal/repo"
	"github.com/Skotchmaster/fashion_shop/internal/transport"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func validEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	return email, nil
}

type SubscriptionService struct {
	Repo   *repo.GormRepo
	Mailer notify.Mailer
	Events events.Publisher
}

// Subscribe adds the address to the newsletter. An inactive subscription is
// reactivated in place; an active one is a conflict.
func (s *SubscriptionService) Subscribe(ctx context.Context, req transport.SubscribeRequest) (*models.Subscription, bool, error) {
	email, err := validEmail(req.Email)
	if err != nil {
		return nil, false, err
	}
	source := req.Source
	if source == "" {
		source = domain.SourceNewsletter
	}
	if !source.Valid() {
		return nil, false, fmt.Errorf("%w: unknown source %q", domain.ErrValidation, source)
	}

	sub, err := s.Repo.GetSubscriptionByEmail(ctx, email)
	reactivated := false
	switch {
	case err == nil:
		if sub.IsActive {
			return nil, false, fmt.Errorf("%w: %s is already subscribed", domain.ErrConflict, email)
		}
		sub.IsActive = true
		sub.Source = source
		if err := s.Repo.SaveSubscription(ctx, sub); err != nil {
			return nil, false, err
		}
		reactivated = true
	case errors.Is(err, domain.ErrNotFound):
		sub = &models.Subscription{Email: email, IsActive: true, Source: source}
		if err := s.Repo.CreateSubscription(ctx, sub); err != nil {
			return nil, false, err
		}
	default:
		return nil, false, err
	}

	publish(ctx, s.Events, events.TopicSubscriptions, email, map[string]any{
		"type":        "subscribed",
		"email":       email,
		"source":      source,
		"reactivated": reactivated,
		"at":          time.Now().UTC(),
	})
	sendMail(ctx, s.Mailer, func() (notify.Message, error) { return notify.Welcome(email) })
	return sub, reactivated, nil
}

// Unsubscribe deactivates the address. Unknown or already inactive
// addresses are not found.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, raw string) error {
	email, err := validEmail(raw)
	if err != nil {
		return err
	}
	sub, err := s.Repo.GetSubscriptionByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !sub.IsActive {
		return fmt.Errorf("%w: %s is not subscribed", domain.ErrNotFound, email)
	}
	sub.IsActive = false
	if err := s.Repo.SaveSubscription(ctx, sub); err != nil {
		return err
	}
	publish(ctx, s.Events, events.TopicSubscriptions, email, map[string]any{
		"type":  "unsubscribed",
		"email": email,
		"at":    time.Now().UTC(),
	})
	return nil
}

func (s *SubscriptionService) ListActive(ctx context.Context, offset, limit int) (int64, []models.Subscription, error) {
	return s.Repo.ListActiveSubscriptions(ctx, offset, limit)
}

type ContactService struct {
	Repo   *repo.GormRepo
	Mailer notify.Mailer
	// Inbox receives forwarded messages. Empty disables forwarding.
	Inbox string
}

func (s *ContactService) Submit(ctx context.Context, req transport.ContactRequest) (*models.ContactMessage, error) {
	email, err := validEmail(req.Email)
	if err != nil {
		return nil, err
	}
	m := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   email,
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if m.Name == "" || m.Subject == "" || m.Message == "" {
		return nil, fmt.Errorf("%w: name, subject and message are required", domain.ErrValidation)
	}
	if err := s.Repo.CreateContactMessage(ctx, m); err != nil {
		return nil, err
	}
	if s.Inbox != "" {
		sendMail(ctx, s.Mailer, func() (notify.Message, error) { return notify.ContactForward(s.Inbox, m) })
	}
	return m, nil
}
