package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campushq/notification-engine/internal/domain"
)

// ProviderConfig configures one vendor HTTP API client.
type ProviderConfig struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each outbound call. A timed-out call classifies
	// transient and enters the retry path like any network error.
	Timeout time.Duration
}

// providerClient is the shared HTTP plumbing of the external adapters.
type providerClient struct {
	cfg  ProviderConfig
	http *http.Client
}

func newProviderClient(cfg ProviderConfig, client *http.Client) *providerClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{}
	}
	return &providerClient{cfg: cfg, http: client}
}

// providerError is the common error body shape of the vendor APIs.
type providerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// postJSON sends the payload and decodes a 2xx response into out.
// Non-2xx responses and transport failures come back classified.
func (c *providerClient) postJSON(ctx context.Context, path string, payload, out any) *domain.ChannelError {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.PermanentError(domain.CodeContentRejected, "encode request: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return domain.PermanentError(domain.CodeProviderError, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.TransientError(domain.CodeTimeout, "provider call timed out after %s", c.cfg.Timeout)
		}
		return domain.TransientError(domain.CodeProviderError, "provider call failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.TransientError(domain.CodeProviderError, "read provider response: %v", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return domain.TransientError(domain.CodeProviderError, "decode provider response: %v", err)
			}
		}
		return nil
	}

	return classifyStatus(resp.StatusCode, raw)
}

// classifyStatus maps a provider HTTP status to the retry taxonomy:
// rate limits, timeouts and 5xx are transient; everything the provider
// rejected outright is permanent.
func classifyStatus(status int, raw []byte) *domain.ChannelError {
	var pe providerError
	_ = json.Unmarshal(raw, &pe)
	detail := pe.Message
	if detail == "" {
		detail = fmt.Sprintf("provider returned status %d", status)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return domain.TransientError(domain.CodeRateLimited, "%s", detail)
	case status == http.StatusRequestTimeout:
		return domain.TransientError(domain.CodeTimeout, "%s", detail)
	case status >= 500:
		return domain.TransientError(domain.CodeProviderError, "%s", detail)
	case pe.Code == domain.CodeInvalidRecipient || status == http.StatusNotFound || status == http.StatusGone:
		return domain.PermanentError(domain.CodeInvalidRecipient, "%s", detail)
	case pe.Code == domain.CodeUnsubscribed:
		return domain.PermanentError(domain.CodeUnsubscribed, "%s", detail)
	default:
		return domain.PermanentError(domain.CodeContentRejected, "%s", detail)
	}
}
