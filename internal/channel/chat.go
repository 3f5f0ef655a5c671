package channel

import (
	"context"
	"net/http"

	"github.com/campushq/notification-engine/internal/domain"
)

// ChatAdapter delivers through the business chat messaging provider.
// Recipients are phone-number chat IDs; sending requires the recipient's
// explicit opt-in, which the preference resolver enforces upstream.
type ChatAdapter struct {
	client *providerClient
}

func NewChatAdapter(cfg ProviderConfig, httpClient *http.Client) *ChatAdapter {
	return &ChatAdapter{client: newProviderClient(cfg, httpClient)}
}

func (a *ChatAdapter) Name() domain.Channel {
	return domain.ChannelChat
}

type chatText struct {
	Body string `json:"body"`
}

type chatTemplate struct {
	Name     string            `json:"name"`
	Language string            `json:"language"`
	Params   map[string]string `json:"params,omitempty"`
}

type chatSendRequest struct {
	To       string        `json:"to"`
	Kind     string        `json:"type"`
	Text     *chatText     `json:"text,omitempty"`
	Template *chatTemplate `json:"template,omitempty"`
}

type chatSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (a *ChatAdapter) Send(ctx context.Context, recipient string, content Content, opts Options) domain.ChannelResult {
	if !ValidPhone(recipient) {
		return domain.FailureResult(domain.ChannelChat,
			domain.ValidationError("chat recipient %q is not international E.164 format", recipient))
	}

	req := chatSendRequest{To: recipient}
	if name := opts["chat_template"]; name != "" {
		// Business chat providers require pre-approved templates for
		// outbound messages outside an open conversation window.
		lang := content.Language
		if lang == "" {
			lang = "en"
		}
		req.Kind = "template"
		req.Template = &chatTemplate{Name: name, Language: lang}
	} else {
		req.Kind = "text"
		req.Text = &chatText{Body: content.Body}
	}

	var resp chatSendResponse
	if cerr := a.client.postJSON(ctx, "/v1/business/messages", req, &resp); cerr != nil {
		return domain.FailureResult(domain.ChannelChat, cerr)
	}

	if len(resp.Messages) == 0 {
		return domain.FailureResult(domain.ChannelChat,
			domain.TransientError(domain.CodeProviderError, "provider accepted the request but returned no message id"))
	}
	return domain.SuccessResult(domain.ChannelChat, resp.Messages[0].ID)
}
