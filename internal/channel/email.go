package channel

import (
	"context"
	"net/http"

	"github.com/campushq/notification-engine/internal/domain"
)

// EmailAdapter delivers through the transactional mail provider.
type EmailAdapter struct {
	client *providerClient
	from   string
}

func NewEmailAdapter(cfg ProviderConfig, from string, httpClient *http.Client) *EmailAdapter {
	return &EmailAdapter{
		client: newProviderClient(cfg, httpClient),
		from:   from,
	}
}

func (a *EmailAdapter) Name() domain.Channel {
	return domain.ChannelEmail
}

type emailSendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type emailSendResponse struct {
	MessageID string `json:"message_id"`
}

func (a *EmailAdapter) Send(ctx context.Context, recipient string, content Content, _ Options) domain.ChannelResult {
	if !ValidEmail(recipient) {
		return domain.FailureResult(domain.ChannelEmail,
			domain.ValidationError("malformed email address %q", recipient))
	}

	req := emailSendRequest{
		From:    a.from,
		To:      recipient,
		Subject: content.Subject,
		HTML:    content.Body,
	}

	var resp emailSendResponse
	if cerr := a.client.postJSON(ctx, "/v1/mail/send", req, &resp); cerr != nil {
		return domain.FailureResult(domain.ChannelEmail, cerr)
	}

	return domain.SuccessResult(domain.ChannelEmail, resp.MessageID)
}
