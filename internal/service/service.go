package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/fashion_shop/internal/events"
	"github.com/Skotchmaster/fashion_shop/internal/logging"
	"github.com/Skotchmaster/fashion_shop/internal/notify"
)

// Actor is the authenticated caller as resolved by the auth middleware.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func (a Actor) Owns(userID uuid.UUID) bool {
	return a.UserID != uuid.Nil && a.UserID == userID
}

const (
	publishTimeout = 5 * time.Second
	mailTimeout    = 15 * time.Second
)

// publish sends an event and only logs a failure.
func publish(ctx context.Context, p events.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}

// sendMail delivers m in the background. The parent operation has already
// committed; a failed send is logged and dropped.
func sendMail(ctx context.Context, m notify.Mailer, build func() (notify.Message, error)) {
	if m == nil {
		return
	}
	l := logging.FromContext(ctx)
	msg, err := build()
	if err != nil {
		l.Warn("mail_render_error", "error", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
		defer cancel()
		if err := m.Send(ctx, msg); err != nil {
			l.Warn("mail_send_error", "subject", msg.Subject, "error", err)
		}
	}()
}
