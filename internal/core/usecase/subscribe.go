package usecase

import (
	"context"
	"fmt"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/domain"
	"listing-web/internal/core/port"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxEmailLength = 254

// Исходы подписки для метрик
const (
	SubscriptionCreated   = "created"
	SubscriptionDuplicate = "duplicate"
	SubscriptionInvalid   = "invalid"
	SubscriptionFailed    = "error"
)

type SubscribeUseCase struct {
	repo    port.SubscriberRepositoryPort
	events  port.SubscriberEventsPort
	metrics port.MetricsPort
}

// NewSubscribeUseCase: repo == nil означает, что подписка отключена (нет БД)
func NewSubscribeUseCase(repo port.SubscriberRepositoryPort, events port.SubscriberEventsPort, metrics port.MetricsPort) *SubscribeUseCase {
	if metrics == nil {
		metrics = port.NoopMetrics{}
	}
	return &SubscribeUseCase{repo: repo, events: events, metrics: metrics}
}

// Execute подписывает email на рассылку. Повторная подписка - не ошибка (created=false).
func (uc *SubscribeUseCase) Execute(ctx context.Context, email, source string) (bool, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "Subscribe",
		"source":   source,
	})

	if uc.repo == nil {
		return false, domain.ErrSubscriptionsDisabled
	}

	normalized, err := normalizeEmail(email)
	if err != nil {
		uc.metrics.ObserveSubscription(SubscriptionInvalid)
		ucLogger.Warn("Invalid email rejected", port.Fields{"error": err.Error()})
		return false, err
	}

	sub := domain.Subscriber{
		ID:        uuid.New(),
		Email:     normalized,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}

	created, err := uc.repo.Save(ctx, sub)
	if err != nil {
		uc.metrics.ObserveSubscription(SubscriptionFailed)
		ucLogger.Error("Failed to save subscriber", err, nil)
		return false, fmt.Errorf("failed to save subscriber: %w", err)
	}

	if !created {
		uc.metrics.ObserveSubscription(SubscriptionDuplicate)
		ucLogger.Info("Email already subscribed", nil)
		return false, nil
	}

	uc.metrics.ObserveSubscription(SubscriptionCreated)
	ucLogger.Info("Subscriber registered", port.Fields{"subscriber_id": sub.ID})

	if uc.events != nil {
		if err := uc.events.PublishSubscriberRegistered(ctx, sub); err != nil {
			// подписка уже сохранена, событие не критично
			ucLogger.Warn("Failed to publish subscriber event", port.Fields{"error": err.Error()})
		}
	}

	return true, nil
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxEmailLength {
		return "", fmt.Errorf("%w: email is empty or too long", domain.ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw || addr.Name != "" {
		return "", fmt.Errorf("%w: %q is not a valid address", domain.ErrInvalidEmail, raw)
	}
	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 || !strings.Contains(addr.Address[at+1:], ".") {
		return "", fmt.Errorf("%w: %q has no valid domain", domain.ErrInvalidEmail, raw)
	}
	return strings.ToLower(addr.Address), nil
}
