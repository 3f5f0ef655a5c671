package domain

import "time"

// MessageStatus is the delivery lifecycle state of one log entry.
//
// Transitions are monotonic and one-directional along
// QUEUED → SENDING → SENT → DELIVERED → READ, with FAILED reachable from any
// pre-DELIVERED state. READ and FAILED are terminal and never overwritten.
type MessageStatus string

const (
	StatusQueued    MessageStatus = "QUEUED"
	StatusSending   MessageStatus = "SENDING"
	StatusSent      MessageStatus = "SENT"
	StatusDelivered MessageStatus = "DELIVERED"
	StatusRead      MessageStatus = "READ"
	StatusFailed    MessageStatus = "FAILED"
)

var statusRank = map[MessageStatus]int{
	StatusQueued:    0,
	StatusSending:   1,
	StatusSent:      2,
	StatusDelivered: 3,
	StatusRead:      4,
}

func (s MessageStatus) IsValid() bool {
	if s == StatusFailed {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether the state can never change again.
func (s MessageStatus) Terminal() bool {
	return s == StatusRead || s == StatusFailed
}

// CanTransition reports whether moving from s to next respects the
// lifecycle invariant. Out-of-order and post-terminal updates are expected
// from redelivered webhooks and must be dropped by callers, not treated as
// errors.
func (s MessageStatus) CanTransition(next MessageStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return statusRank[s] < statusRank[StatusDelivered]
	}
	nr, ok := statusRank[next]
	if !ok {
		return false
	}
	return nr > statusRank[s]
}

// PriorStates lists every state from which next is reachable. The
// repository uses it to guard status updates at the SQL level so that a
// racing earlier update can never clobber a later one.
func PriorStates(next MessageStatus) []MessageStatus {
	var prior []MessageStatus
	for _, s := range []MessageStatus{StatusQueued, StatusSending, StatusSent, StatusDelivered} {
		if s.CanTransition(next) {
			prior = append(prior, s)
		}
	}
	return prior
}

// MessageLogEntry is the durable audit record of one channel attempt.
// Created by the dispatcher at send time; thereafter mutated only by the
// delivery status tracker; never deleted by normal flow.
type MessageLogEntry struct {
	ID        string           `json:"id"`
	TenantID  string           `json:"tenant_id,omitempty"`
	Channel   Channel          `json:"channel"`
	Recipient string           `json:"recipient"`
	UserID    string           `json:"user_id,omitempty"`
	Category  NotificationType `json:"category"`
	Subject   string           `json:"subject"`
	Body      string           `json:"body"`
	Status    MessageStatus    `json:"status"`
	// ProviderMessageID correlates asynchronous provider callbacks.
	ProviderMessageID string            `json:"provider_message_id,omitempty"`
	ErrorCode         string            `json:"error_code,omitempty"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	SentAt            *time.Time        `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time        `json:"delivered_at,omitempty"`
	ReadAt            *time.Time        `json:"read_at,omitempty"`
	FailedAt          *time.Time        `json:"failed_at,omitempty"`
}

// LogFilter holds the query parameters of the audit log surface.
type LogFilter struct {
	Recipient string
	UserID    string
	Channel   Channel
	Status    MessageStatus
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// Normalize clamps pagination the same way the API layer does, so direct
// repository callers get identical behaviour.
func (f *LogFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}
