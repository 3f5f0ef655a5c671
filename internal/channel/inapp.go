package channel

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/inbox"
)

// InAppAdapter writes to the recipient-scoped inbox store. There is no
// external provider: the write is synchronous, and this channel is the
// one the dispatcher attempts on every non-short-circuited request so no
// event is ever silently lost.
type InAppAdapter struct {
	store inbox.Store
}

func NewInAppAdapter(store inbox.Store) *InAppAdapter {
	return &InAppAdapter{store: store}
}

func (a *InAppAdapter) Name() domain.Channel {
	return domain.ChannelInApp
}

func (a *InAppAdapter) Send(ctx context.Context, recipient string, content Content, _ Options) domain.ChannelResult {
	if recipient == "" {
		return domain.FailureResult(domain.ChannelInApp,
			domain.ValidationError("in-app send requires a user id"))
	}

	msg := inbox.Message{
		ID:        uuid.NewString(),
		Title:     content.Subject,
		Body:      content.Body,
		Category:  content.Category,
		CreatedAt: time.Now().UTC(),
	}

	if err := a.store.Push(ctx, recipient, msg); err != nil {
		// The inbox store can recover; let the retry wrapper try again.
		return domain.FailureResult(domain.ChannelInApp,
			domain.TransientError(domain.CodeInboxError, "inbox write failed: %v", err))
	}

	// The inbox message ID plays the role of the provider message ID so
	// read receipts can correlate back to the log entry.
	return domain.SuccessResult(domain.ChannelInApp, msg.ID)
}
