// Package tracker ingests asynchronous provider delivery callbacks and
// reconciles them with the message log under the monotonic lifecycle
// invariant.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/campushq/notification-engine/internal/repository"
	"github.com/campushq/notification-engine/internal/types"
)

type Tracker struct {
	log     repository.MessageLogRepository
	secrets map[string]string
	logger  *slog.Logger
	now     func() time.Time
}

// New builds a tracker with one shared webhook secret per provider name.
func New(log repository.MessageLogRepository, secrets map[string]string, logger *slog.Logger) *Tracker {
	return &Tracker{
		log:     log,
		secrets: secrets,
		logger:  logger,
		now:     time.Now,
	}
}

// Ingest validates and applies one raw webhook delivery. It returns an
// error only for authenticity failures, which the caller should surface as
// a rejected request; everything after authentication is absorbed:
// unknown message IDs, out-of-order transitions and redelivered payloads
// are harmless no-ops.
func (t *Tracker) Ingest(ctx context.Context, provider string, rawBody []byte, signatureHeader string) error {
	secret, ok := t.secrets[provider]
	if !ok {
		t.logger.Warn("webhook from unconfigured provider rejected", "provider", provider)
		return types.ErrUnknownProvider
	}

	// Authenticity comes before any state mutation. A mismatch is a
	// security event: the whole payload is dropped untouched.
	if err := verifySignature(secret, rawBody, signatureHeader, t.now()); err != nil {
		t.logger.Warn("webhook signature verification failed",
			"provider", provider, "error", err, "security_event", true)
		return err
	}

	updates, err := normalizePayload(provider, rawBody)
	if err != nil {
		// Authenticated but unparseable payloads are logged and dropped;
		// the provider will not send anything better on retry.
		t.logger.Warn("unparseable webhook payload dropped", "provider", provider, "error", err)
		return nil
	}

	for _, update := range updates {
		t.apply(ctx, provider, update)
	}
	return nil
}

func (t *Tracker) apply(ctx context.Context, provider string, update statusUpdate) {
	entry, err := t.log.GetByProviderMessageID(ctx, update.providerMessageID)
	if err != nil {
		if errors.Is(err, types.ErrNoRows) {
			// Providers redeliver webhooks for messages we no longer
			// track; a lookup miss is not an error.
			t.logger.Debug("webhook for unknown message ignored",
				"provider", provider, "provider_message_id", update.providerMessageID)
			return
		}
		t.logger.Error("message log lookup failed",
			"provider", provider, "provider_message_id", update.providerMessageID, "error", err)
		return
	}

	if !entry.Status.CanTransition(update.status) {
		// Out-of-order or post-terminal update; redelivery of an already
		// applied transition lands here too.
		t.logger.Debug("out-of-order status update dropped",
			"id", entry.ID, "current", entry.Status, "incoming", update.status)
		return
	}

	err = t.log.ApplyDeliveryStatus(ctx, entry.ID, update.status, update.occurredAt, update.errCode, update.errMsg)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Lost the race against a later transition; the SQL guard
			// kept the newer state.
			return
		}
		t.logger.Error("failed to apply delivery status",
			"id", entry.ID, "status", update.status, "error", err)
		return
	}

	t.logger.Info("delivery status updated",
		"id", entry.ID, "channel", entry.Channel, "status", update.status, "provider", provider)
}
