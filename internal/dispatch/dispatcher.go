// Package dispatch is the orchestration core: it turns one notification
// request into concurrent channel attempts, records every attempt in the
// message log, and aggregates the per-channel outcomes into one result.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/campushq/notification-engine/internal/channel"
	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/preference"
	"github.com/campushq/notification-engine/internal/repository"
	"github.com/campushq/notification-engine/internal/retry"
)

type Dispatcher struct {
	adapters  map[domain.Channel]channel.Adapter
	retry     retry.Policy
	resolver  *preference.Resolver
	log       repository.MessageLogRepository
	renderer  domain.TemplateRenderer
	directory domain.ContactDirectory
	logger    *slog.Logger
}

func NewDispatcher(
	adapters []channel.Adapter,
	retryPolicy retry.Policy,
	resolver *preference.Resolver,
	logRepo repository.MessageLogRepository,
	renderer domain.TemplateRenderer,
	directory domain.ContactDirectory,
	logger *slog.Logger,
) *Dispatcher {
	byName := make(map[domain.Channel]channel.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Dispatcher{
		adapters:  byName,
		retry:     retryPolicy,
		resolver:  resolver,
		log:       logRepo,
		renderer:  renderer,
		directory: directory,
		logger:    logger,
	}
}

// Dispatch sends the request across every resolved channel. Channel
// attempts run concurrently and independently: one channel's failure never
// prevents attempts on the others, and partial success is a reportable
// outcome, not an error. The only total-failure case is every channel
// failing, the In-App write included.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.NotificationRequest) domain.CommunicationResult {
	// Requests tied to a domain condition that did not fire are a no-op
	// success: an attendance alert for a PRESENT student sends nothing
	// and leaves no log rows.
	if !req.Actionable() {
		d.logger.Debug("dispatch short-circuited on domain condition",
			"type", req.Type, "condition", req.Condition)
		return domain.CommunicationResult{Success: true, Skipped: true}
	}

	content := d.render(req)
	channels := d.resolver.Resolve(d.preferenceFor(ctx, req), req.Type, req.Override)

	opts := channel.Options{}
	if req.Template != "" {
		opts["chat_template"] = req.Template
	}

	results := make(map[domain.Channel]domain.ChannelResult, len(channels))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ch := range channels {
		wg.Add(1)
		go func(ch domain.Channel) {
			defer wg.Done()
			result := d.sendChannel(ctx, ch, req, content, opts)
			mu.Lock()
			results[ch] = result
			mu.Unlock()
		}(ch)
	}
	wg.Wait()

	policy := req.Policy
	if policy == "" {
		policy = domain.PolicyAny
	}

	return domain.CommunicationResult{
		Results: results,
		Success: domain.Aggregate(results, policy),
	}
}

// sendChannel runs one channel attempt end to end: audit row, retry-wrapped
// adapter call, outcome write. The outcome is logged immediately after it is
// known so a crash mid-dispatch leaves a correct partial audit trail.
func (d *Dispatcher) sendChannel(ctx context.Context, ch domain.Channel, req domain.NotificationRequest, content channel.Content, opts channel.Options) domain.ChannelResult {
	adapter, ok := d.adapters[ch]
	if !ok {
		return domain.FailureResult(ch,
			domain.PermanentError(domain.CodeProviderError, "no adapter configured for channel %s", ch))
	}

	entry := &domain.MessageLogEntry{
		ID:        uuid.NewString(),
		TenantID:  req.TenantID,
		Channel:   ch,
		Recipient: req.Recipient.AddressFor(ch),
		UserID:    req.Recipient.UserID,
		Category:  req.Type,
		Subject:   content.Subject,
		Body:      content.Body,
		Status:    domain.StatusQueued,
	}
	if req.Condition != "" {
		entry.Metadata = map[string]string{"condition": req.Condition}
	}

	// A failing audit write degrades the trail but must not block the
	// send itself.
	logged := true
	if err := d.log.Create(ctx, entry); err != nil {
		logged = false
		d.logger.Error("failed to create message log entry",
			"channel", ch, "recipient", entry.Recipient, "error", err)
	}
	if logged {
		if err := d.log.UpdateStatus(ctx, entry.ID, domain.StatusSending); err != nil {
			d.logger.Warn("failed to mark log entry sending", "id", entry.ID, "error", err)
		}
	}

	result := d.retry.Do(ctx, func(ctx context.Context) domain.ChannelResult {
		return adapter.Send(ctx, entry.Recipient, content, opts)
	})

	if logged {
		if err := d.log.MarkOutcome(ctx, entry.ID, result); err != nil {
			d.logger.Error("failed to record send outcome",
				"id", entry.ID, "channel", ch, "error", err)
		}
	}

	if result.Success {
		d.logger.Info("channel send succeeded",
			"channel", ch, "recipient", entry.Recipient, "provider_message_id", result.ProviderMessageID)
	} else {
		d.logger.Warn("channel send failed",
			"channel", ch, "recipient", entry.Recipient, "code", result.ErrorCode, "error", result.ErrorMessage)
	}
	return result
}

// render resolves the message content: a named template through the
// rendering collaborator, otherwise the request's literal title and body.
func (d *Dispatcher) render(req domain.NotificationRequest) channel.Content {
	content := channel.Content{
		Subject:  req.Title,
		Body:     req.Body,
		Category: req.Type,
	}
	if req.Template == "" {
		return content
	}

	subject, body, err := d.renderer.Render(req.Template, req.Variables)
	if err != nil {
		d.logger.Warn("template rendering failed, using literal content",
			"template", req.Template, "error", err)
		return content
	}
	content.Subject = subject
	content.Body = body
	return content
}

func (d *Dispatcher) preferenceFor(ctx context.Context, req domain.NotificationRequest) domain.ContactPreference {
	pref, err := d.directory.GetContactPreference(ctx, req.Recipient.UserID)
	if err != nil {
		// Directory outage must not lose the event; fall back to the
		// in-app-only default.
		d.logger.Warn("contact directory lookup failed, falling back to default preference",
			"user_id", req.Recipient.UserID, "error", err)
		return domain.DefaultPreference(req.Recipient.UserID)
	}
	return pref
}
