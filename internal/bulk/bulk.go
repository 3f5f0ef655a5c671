// Package bulk fans one piece of content out to many recipients on top of
// the dispatcher, with pre-flight validation, rate limiting and a flat
// partial-success summary an operator can review.
package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/campushq/notification-engine/internal/channel"
	"github.com/campushq/notification-engine/internal/domain"
)

// Dispatcher is the single-recipient send path the controller builds on.
type Dispatcher interface {
	Dispatch(ctx context.Context, req domain.NotificationRequest) domain.CommunicationResult
}

// Content is the shared payload of one campaign.
type Content struct {
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Body      string                  `json:"body"`
	Template  string                  `json:"template,omitempty"`
	Variables map[string]string       `json:"variables,omitempty"`
	Override  domain.Channel          `json:"override,omitempty"`
	TenantID  string                  `json:"tenant_id,omitempty"`
}

// RecipientResult is one recipient's outcome inside the summary.
type RecipientResult struct {
	Index   int                                     `json:"index"`
	UserID  string                                  `json:"user_id,omitempty"`
	Success bool                                    `json:"success"`
	Results map[domain.Channel]domain.ChannelResult `json:"results,omitempty"`
}

// Summary is the flat partial-success report of one bulk call.
type Summary struct {
	Total        int               `json:"total"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	PerRecipient []RecipientResult `json:"per_recipient"`
}

// InvalidRecipientsError reports the pre-flight validation failure that
// aborts a batch before anything is sent.
type InvalidRecipientsError struct {
	Addresses []string
}

func (e *InvalidRecipientsError) Error() string {
	return fmt.Sprintf("bulk send rejected, malformed recipient addresses: %s",
		strings.Join(e.Addresses, ", "))
}

type Controller struct {
	dispatcher Dispatcher
	limiter    *RateLimiter
	workers    int
	logger     *slog.Logger
}

func NewController(dispatcher Dispatcher, limiter *RateLimiter, workers int, logger *slog.Logger) *Controller {
	if workers < 1 {
		workers = 10
	}
	return &Controller{
		dispatcher: dispatcher,
		limiter:    limiter,
		workers:    workers,
		logger:     logger,
	}
}

// SendBulk delivers the shared content to every recipient. Validation is
// all-or-nothing: one malformed address fails the whole call before any
// send. Sending thereafter is per-recipient and partial, one recipient's
// failure never blocks the others. Duplicate recipients produce duplicate
// sends; deduplication is the caller's responsibility.
func (c *Controller) SendBulk(ctx context.Context, recipients []domain.Recipient, content Content) (Summary, error) {
	if err := validateBatch(recipients, content.Override); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Total:        len(recipients),
		PerRecipient: make([]RecipientResult, len(recipients)),
	}
	if len(recipients) == 0 {
		return summary, nil
	}

	jobs := make(chan int, len(recipients))

	var wg sync.WaitGroup
	workers := c.workers
	if workers > len(recipients) {
		workers = len(recipients)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				summary.PerRecipient[i] = c.sendOne(ctx, i, recipients[i], content)
			}
		}()
	}

	for i := range recipients {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, r := range summary.PerRecipient {
		if r.Success {
			summary.SuccessCount++
		} else {
			summary.FailureCount++
		}
	}

	c.logger.Info("bulk send finished",
		"total", summary.Total, "succeeded", summary.SuccessCount, "failed", summary.FailureCount)
	return summary, nil
}

func (c *Controller) sendOne(ctx context.Context, index int, recipient domain.Recipient, content Content) RecipientResult {
	if err := c.limiter.Wait(ctx); err != nil {
		return RecipientResult{
			Index:  index,
			UserID: recipient.UserID,
			Results: map[domain.Channel]domain.ChannelResult{
				"": domain.FailureResult("", domain.TransientError(domain.CodeTimeout, "bulk send cancelled: %v", err)),
			},
		}
	}

	result := c.dispatcher.Dispatch(ctx, domain.NotificationRequest{
		Recipient: recipient,
		Type:      content.Type,
		Title:     content.Title,
		Body:      content.Body,
		Template:  content.Template,
		Variables: content.Variables,
		Override:  content.Override,
		TenantID:  content.TenantID,
	})

	return RecipientResult{
		Index:   index,
		UserID:  recipient.UserID,
		Success: result.Success,
		Results: result.Results,
	}
}

// validateBatch checks every address before anything is sent.
func validateBatch(recipients []domain.Recipient, override domain.Channel) error {
	var malformed []string
	for _, r := range recipients {
		if r.Email != "" && !channel.ValidEmail(r.Email) {
			malformed = append(malformed, r.Email)
		}
		if r.Phone != "" && !channel.ValidPhone(r.Phone) {
			malformed = append(malformed, r.Phone)
		}
		if r.ChatID != "" && !channel.ValidPhone(r.ChatID) {
			malformed = append(malformed, r.ChatID)
		}
		if addr := r.AddressFor(override); override != "" && override != domain.ChannelInApp && addr == "" {
			malformed = append(malformed, fmt.Sprintf("missing %s address for user %s", override, r.UserID))
		}
	}
	if len(malformed) > 0 {
		return &InvalidRecipientsError{Addresses: malformed}
	}
	return nil
}
