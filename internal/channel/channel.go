// Package channel contains the outbound delivery adapters. Each adapter
// owns provider-specific request/response shaping and classifies provider
// failures as transient or permanent for the retry wrapper.
package channel

import (
	"context"

	"github.com/campushq/notification-engine/internal/domain"
)

// Content is the rendered payload handed to an adapter.
type Content struct {
	Subject  string
	Body     string
	Category domain.NotificationType
	Language string
}

// Options is a free-form per-send option bag passed through to the
// provider request where the channel supports it.
type Options map[string]string

// Adapter is the uniform send contract across heterogeneous providers.
// Implementations never return Go errors for send failures: every outcome
// is a ChannelResult so the dispatcher can aggregate partial success.
type Adapter interface {
	Name() domain.Channel
	Send(ctx context.Context, recipient string, content Content, opts Options) domain.ChannelResult
}
