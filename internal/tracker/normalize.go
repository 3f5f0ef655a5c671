package tracker

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/types"
)

// Provider names accepted on the webhook ingest path.
const (
	ProviderMailpost = "mailpost"
	ProviderSMSGate  = "smsgate"
	ProviderChatBiz  = "chatbiz"
)

// statusUpdate is one provider callback normalized into the canonical
// lifecycle vocabulary.
type statusUpdate struct {
	providerMessageID string
	status            domain.MessageStatus
	errCode           string
	errMsg            string
	occurredAt        time.Time
}

// normalizePayload maps a provider-specific payload shape onto canonical
// status updates. Events outside the lifecycle vocabulary (opens tracking
// pixels, clicks, interop noise) are dropped silently.
func normalizePayload(provider string, raw []byte) ([]statusUpdate, error) {
	switch provider {
	case ProviderMailpost:
		return normalizeMailpost(raw)
	case ProviderSMSGate:
		return normalizeSMSGate(raw)
	case ProviderChatBiz:
		return normalizeChatBiz(raw)
	}
	return nil, types.ErrUnknownProvider
}

type mailpostEvent struct {
	MessageID string `json:"message_id"`
	Event     string `json:"event"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

func normalizeMailpost(raw []byte) ([]statusUpdate, error) {
	var ev mailpostEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode mailpost payload: %w", err)
	}
	if ev.MessageID == "" {
		return nil, fmt.Errorf("mailpost payload missing message_id")
	}

	update := statusUpdate{
		providerMessageID: ev.MessageID,
		occurredAt:        time.Unix(ev.Timestamp, 0).UTC(),
	}
	switch ev.Event {
	case "delivered":
		update.status = domain.StatusDelivered
	case "opened":
		update.status = domain.StatusRead
	case "bounced":
		update.status = domain.StatusFailed
		update.errCode = domain.CodeInvalidRecipient
		update.errMsg = ev.Reason
	case "dropped":
		update.status = domain.StatusFailed
		update.errCode = domain.CodeContentRejected
		update.errMsg = ev.Reason
	default:
		return nil, nil
	}
	return []statusUpdate{update}, nil
}

type smsGateReport struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	DoneAt string `json:"done_at"`
}

func normalizeSMSGate(raw []byte) ([]statusUpdate, error) {
	var report smsGateReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode smsgate payload: %w", err)
	}
	if report.ID == "" {
		return nil, fmt.Errorf("smsgate payload missing id")
	}

	occurred := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339, report.DoneAt); err == nil {
		occurred = t.UTC()
	}

	update := statusUpdate{providerMessageID: report.ID, occurredAt: occurred}
	switch report.Status {
	case "SENT":
		update.status = domain.StatusSent
	case "DELIVERED":
		update.status = domain.StatusDelivered
	case "UNDELIVERED", "EXPIRED":
		update.status = domain.StatusFailed
		update.errCode = domain.CodeProviderError
		update.errMsg = report.Error
	default:
		return nil, nil
	}
	return []statusUpdate{update}, nil
}

type chatBizPayload struct {
	Statuses []struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Errors    []struct {
			Code  string `json:"code"`
			Title string `json:"title"`
		} `json:"errors,omitempty"`
	} `json:"statuses"`
}

func normalizeChatBiz(raw []byte) ([]statusUpdate, error) {
	var payload chatBizPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode chatbiz payload: %w", err)
	}

	var updates []statusUpdate
	for _, st := range payload.Statuses {
		if st.ID == "" {
			continue
		}
		occurred := time.Now().UTC()
		if unix, err := strconv.ParseInt(st.Timestamp, 10, 64); err == nil {
			occurred = time.Unix(unix, 0).UTC()
		}

		update := statusUpdate{providerMessageID: st.ID, occurredAt: occurred}
		switch st.Status {
		case "sent":
			update.status = domain.StatusSent
		case "delivered":
			update.status = domain.StatusDelivered
		case "read":
			update.status = domain.StatusRead
		case "failed":
			update.status = domain.StatusFailed
			update.errCode = domain.CodeProviderError
			if len(st.Errors) > 0 {
				update.errCode = st.Errors[0].Code
				update.errMsg = st.Errors[0].Title
			}
		default:
			continue
		}
		updates = append(updates, update)
	}
	return updates, nil
}
