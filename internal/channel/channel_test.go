package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/inbox"
)

func TestValidPhone(t *testing.T) {
	cases := []struct {
		address string
		valid   bool
	}{
		{"+905551112233", true},
		{"+14155550123", true},
		{"905551112233", false},
		{"+0555111223", false},
		{"+1-415-555", false},
		{"", false},
		{"+1234", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.valid, ValidPhone(tc.address), tc.address)
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("parent@example.com"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("Parent <parent@example.com>"))
}

func TestEmailAdapter_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message_id":"mail-42"}`))
	}))
	defer srv.Close()

	a := NewEmailAdapter(ProviderConfig{BaseURL: srv.URL, APIKey: "test-key"}, "noreply@school.example", nil)
	result := a.Send(context.Background(), "parent@example.com", Content{Subject: "Fee due", Body: "<p>hi</p>"}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, "mail-42", result.ProviderMessageID)
}

func TestEmailAdapter_MalformedAddressSkipsProvider(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	a := NewEmailAdapter(ProviderConfig{BaseURL: srv.URL}, "noreply@school.example", nil)
	result := a.Send(context.Background(), "nope", Content{}, nil)

	assert.False(t, result.Success)
	assert.Equal(t, domain.ClassValidation, result.Err.Class)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "validation failure must not reach the provider")
}

func TestSMSAdapter_MalformedNumberSkipsProvider(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	a := NewSMSAdapter(ProviderConfig{BaseURL: srv.URL}, "SCHOOL", nil)
	result := a.Send(context.Background(), "0555-123", Content{Body: "absent today"}, nil)

	assert.False(t, result.Success)
	assert.Equal(t, domain.CodeInvalidRecipient, result.ErrorCode)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClassifyProviderFailures(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		wantCode  string
		wantClass domain.ErrorClass
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.CodeRateLimited, domain.ClassTransient},
		{"server error", http.StatusInternalServerError, `{}`, domain.CodeProviderError, domain.ClassTransient},
		{"bad gateway", http.StatusBadGateway, `{}`, domain.CodeProviderError, domain.ClassTransient},
		{"unknown recipient", http.StatusNotFound, `{}`, domain.CodeInvalidRecipient, domain.ClassPermanent},
		{"unsubscribed", http.StatusBadRequest, `{"code":"unsubscribed","message":"opted out"}`, domain.CodeUnsubscribed, domain.ClassPermanent},
		{"rejected content", http.StatusUnprocessableEntity, `{"message":"spam detected"}`, domain.CodeContentRejected, domain.ClassPermanent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			a := NewSMSAdapter(ProviderConfig{BaseURL: srv.URL}, "SCHOOL", nil)
			result := a.Send(context.Background(), "+905551112233", Content{Body: "x"}, nil)

			assert.False(t, result.Success)
			assert.Equal(t, tc.wantCode, result.Err.Code)
			assert.Equal(t, tc.wantClass, result.Err.Class)
		})
	}
}

func TestProviderTimeoutClassifiesTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	a := NewSMSAdapter(ProviderConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, "SCHOOL", nil)
	result := a.Send(context.Background(), "+905551112233", Content{Body: "x"}, nil)

	assert.False(t, result.Success)
	assert.Equal(t, domain.CodeTimeout, result.Err.Code)
	assert.Equal(t, domain.ClassTransient, result.Err.Class)
}

func TestChatAdapter_TemplateSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/business/messages", r.URL.Path)
		_, _ = w.Write([]byte(`{"messages":[{"id":"chat-77"}]}`))
	}))
	defer srv.Close()

	a := NewChatAdapter(ProviderConfig{BaseURL: srv.URL}, nil)
	result := a.Send(context.Background(), "+905551112233",
		Content{Body: "fee reminder", Language: "tr"},
		Options{"chat_template": "fee_reminder"})

	assert.True(t, result.Success)
	assert.Equal(t, "chat-77", result.ProviderMessageID)
}

type fakeInbox struct {
	pushed map[string][]inbox.Message
	err    error
}

func (f *fakeInbox) Push(_ context.Context, userID string, msg inbox.Message) error {
	if f.err != nil {
		return f.err
	}
	if f.pushed == nil {
		f.pushed = make(map[string][]inbox.Message)
	}
	f.pushed[userID] = append(f.pushed[userID], msg)
	return nil
}

func (f *fakeInbox) List(context.Context, string, int, int) ([]inbox.Message, int64, error) {
	return nil, 0, nil
}

func (f *fakeInbox) Ping(context.Context) error { return nil }

func TestInAppAdapter_Send(t *testing.T) {
	store := &fakeInbox{}
	a := NewInAppAdapter(store)

	result := a.Send(context.Background(), "user-7", Content{Subject: "Leave approved", Body: "details", Category: domain.TypeLeave}, nil)

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ProviderMessageID)
	assert.Len(t, store.pushed["user-7"], 1)
	assert.Equal(t, "Leave approved", store.pushed["user-7"][0].Title)
}

func TestInAppAdapter_StoreFailureIsTransient(t *testing.T) {
	a := NewInAppAdapter(&fakeInbox{err: assert.AnError})

	result := a.Send(context.Background(), "user-7", Content{}, nil)

	assert.False(t, result.Success)
	assert.Equal(t, domain.CodeInboxError, result.Err.Code)
	assert.True(t, result.Err.Retryable())
}
