package dto

import (
	"github.com/campushq/notification-engine/internal/bulk"
	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/inbox"
)

type RecipientRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email" binding:"omitempty,email"`
	Phone  string `json:"phone" binding:"omitempty,e164"`
	ChatID string `json:"chat_id" binding:"omitempty,e164"`
}

func (r RecipientRequest) ToDomain() domain.Recipient {
	return domain.Recipient{UserID: r.UserID, Email: r.Email, Phone: r.Phone, ChatID: r.ChatID}
}

type DispatchRequest struct {
	Recipient RecipientRequest  `json:"recipient" binding:"required"`
	Type      string            `json:"type" binding:"required"`
	Title     string            `json:"title" binding:"max=255"`
	Body      string            `json:"body"`
	Template  string            `json:"template"`
	Variables map[string]string `json:"variables"`
	Override  string            `json:"override"`
	TenantID  string            `json:"tenant_id"`
	Condition string            `json:"condition"`
	Policy    string            `json:"policy" binding:"omitempty,oneof=any all"`
}

func (r DispatchRequest) ToDomain() domain.NotificationRequest {
	return domain.NotificationRequest{
		Recipient: r.Recipient.ToDomain(),
		Type:      domain.NotificationType(r.Type),
		Title:     r.Title,
		Body:      r.Body,
		Template:  r.Template,
		Variables: r.Variables,
		Override:  domain.Channel(r.Override),
		TenantID:  r.TenantID,
		Condition: r.Condition,
		Policy:    domain.SuccessPolicy(r.Policy),
	}
}

type ChannelResultResponse struct {
	Success           bool   `json:"success"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
	ErrorCode         string `json:"error_code,omitempty"`
	ErrorMessage      string `json:"error_message,omitempty"`
}

type DispatchResponse struct {
	Success bool                             `json:"success"`
	Skipped bool                             `json:"skipped,omitempty"`
	Results map[string]ChannelResultResponse `json:"results"`
}

func ToDispatchResponse(result domain.CommunicationResult) DispatchResponse {
	resp := DispatchResponse{
		Success: result.Success,
		Skipped: result.Skipped,
		Results: make(map[string]ChannelResultResponse, len(result.Results)),
	}
	for ch, r := range result.Results {
		resp.Results[string(ch)] = ChannelResultResponse{
			Success:           r.Success,
			ProviderMessageID: r.ProviderMessageID,
			ErrorCode:         r.ErrorCode,
			ErrorMessage:      r.ErrorMessage,
		}
	}
	return resp
}

type BulkRequest struct {
	Recipients []RecipientRequest `json:"recipients" binding:"required,min=1,dive"`
	Type       string             `json:"type" binding:"required"`
	Title      string             `json:"title" binding:"max=255"`
	Body       string             `json:"body"`
	Template   string             `json:"template"`
	Variables  map[string]string  `json:"variables"`
	Override   string             `json:"override"`
	TenantID   string             `json:"tenant_id"`
}

func (r BulkRequest) ToDomain() ([]domain.Recipient, bulk.Content) {
	recipients := make([]domain.Recipient, len(r.Recipients))
	for i, rec := range r.Recipients {
		recipients[i] = rec.ToDomain()
	}
	return recipients, bulk.Content{
		Type:      domain.NotificationType(r.Type),
		Title:     r.Title,
		Body:      r.Body,
		Template:  r.Template,
		Variables: r.Variables,
		Override:  domain.Channel(r.Override),
		TenantID:  r.TenantID,
	}
}

type LogListResponse struct {
	Entries  []domain.MessageLogEntry `json:"entries"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
}

type InboxResponse struct {
	Messages []inbox.Message `json:"messages"`
	Total    int64           `json:"total"`
}

type InboxReadResponse struct {
	Updated int64 `json:"updated"`
}

type JobResponse struct {
	Status string `json:"status"`
}

type WebhookResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error     string   `json:"error"`
	Addresses []string `json:"addresses,omitempty"`
}
