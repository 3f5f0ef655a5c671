package channel

import (
	"context"
	"net/http"

	"github.com/campushq/notification-engine/internal/domain"
)

// SMSAdapter delivers through the SMS gateway.
type SMSAdapter struct {
	client *providerClient
	sender string
}

func NewSMSAdapter(cfg ProviderConfig, sender string, httpClient *http.Client) *SMSAdapter {
	return &SMSAdapter{
		client: newProviderClient(cfg, httpClient),
		sender: sender,
	}
}

func (a *SMSAdapter) Name() domain.Channel {
	return domain.ChannelSMS
}

type smsSendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

type smsSendResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (a *SMSAdapter) Send(ctx context.Context, recipient string, content Content, _ Options) domain.ChannelResult {
	if !ValidPhone(recipient) {
		return domain.FailureResult(domain.ChannelSMS,
			domain.ValidationError("phone number %q is not international E.164 format", recipient))
	}

	// SMS has no subject line; the body carries everything.
	req := smsSendRequest{
		From: a.sender,
		To:   recipient,
		Body: content.Body,
	}

	var resp smsSendResponse
	if cerr := a.client.postJSON(ctx, "/v1/sms/messages", req, &resp); cerr != nil {
		return domain.FailureResult(domain.ChannelSMS, cerr)
	}

	return domain.SuccessResult(domain.ChannelSMS, resp.ID)
}
