package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/notification-engine/internal/api/dto"
	"github.com/campushq/notification-engine/internal/bulk"
	"github.com/campushq/notification-engine/internal/channel"
	"github.com/campushq/notification-engine/internal/dispatch"
	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/inbox"
	"github.com/campushq/notification-engine/internal/preference"
	"github.com/campushq/notification-engine/internal/repository"
	"github.com/campushq/notification-engine/internal/retry"
	"github.com/campushq/notification-engine/internal/tracker"
	"github.com/campushq/notification-engine/internal/worker"
)

const webhookSecret = "whsec_test"

type okAdapter struct {
	ch domain.Channel
}

func (a okAdapter) Name() domain.Channel { return a.ch }

func (a okAdapter) Send(_ context.Context, _ string, _ channel.Content, _ channel.Options) domain.ChannelResult {
	return domain.SuccessResult(a.ch, "pm-"+string(a.ch))
}

type memoryInbox struct {
	mu       sync.Mutex
	messages map[string][]inbox.Message
}

func newMemoryInbox() *memoryInbox {
	return &memoryInbox{messages: make(map[string][]inbox.Message)}
}

func (s *memoryInbox) Push(_ context.Context, userID string, msg inbox.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[userID] = append([]inbox.Message{msg}, s.messages[userID]...)
	return nil
}

func (s *memoryInbox) List(_ context.Context, userID string, page, pageSize int) ([]inbox.Message, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.messages[userID]
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (s *memoryInbox) Ping(context.Context) error { return nil }

type staticPerms struct {
	allow bool
}

func (p staticPerms) IsAllowed(context.Context, string, string, string) bool { return p.allow }

type staticDirectory struct {
	pref domain.ContactPreference
}

func (d staticDirectory) GetContactPreference(_ context.Context, userID string) (domain.ContactPreference, error) {
	pref := d.pref
	pref.UserID = userID
	return pref, nil
}

type passthroughRenderer struct{}

func (passthroughRenderer) Render(name string, _ map[string]string) (string, string, error) {
	return name, "body of " + name, nil
}

type testEnv struct {
	router  *gin.Engine
	logRepo repository.MessageLogRepository
	inbox   *memoryInbox
}

func newTestEnv(t *testing.T, allow bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	logRepo := repository.NewMemoryMessageLog()
	inboxStore := newMemoryInbox()

	adapters := []channel.Adapter{
		okAdapter{ch: domain.ChannelEmail},
		okAdapter{ch: domain.ChannelSMS},
		channel.NewInAppAdapter(inboxStore),
	}
	dispatcher := dispatch.NewDispatcher(
		adapters,
		retry.Policy{MaxAttempts: 1},
		preference.NewResolver(),
		logRepo,
		passthroughRenderer{},
		staticDirectory{pref: domain.ContactPreference{
			Preferred: domain.PreferredAll,
			Email:     true,
			SMS:       true,
		}},
		logger,
	)
	bulkController := bulk.NewController(dispatcher, bulk.NewRateLimiter(1000, time.Minute), 4, logger)
	deliveryTracker := tracker.New(logRepo, map[string]string{
		tracker.ProviderMailpost: webhookSecret,
	}, logger)
	jobManager := worker.NewJobManager(logRepo, time.Minute, 10*time.Minute, logger, &sync.WaitGroup{})

	handler := NewHandler(
		dispatcher,
		bulkController,
		deliveryTracker,
		logRepo,
		inboxStore,
		jobManager,
		staticPerms{allow: allow},
		context.Background(),
	)
	return &testEnv{router: NewRouter(handler), logRepo: logRepo, inbox: inboxStore}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestDispatchNotificationEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodPost, "/api/notifications", dto.DispatchRequest{
		Recipient: dto.RecipientRequest{
			UserID: "user-1",
			Email:  "parent@example.com",
			Phone:  "+905551112233",
		},
		Type:  "announcement",
		Title: "School closed",
		Body:  "Snow day tomorrow.",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.DispatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Results["EMAIL"].Success)
	assert.True(t, resp.Results["SMS"].Success)
	assert.True(t, resp.Results["IN_APP"].Success)

	entries, total, err := env.logRepo.List(context.Background(), domain.LogFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	for _, e := range entries {
		assert.Equal(t, domain.StatusSent, e.Status)
	}
}

func TestDispatchNotificationRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodPost, "/api/notifications", map[string]string{"type": "general"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatchNotificationForbiddenActor(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(http.MethodPost, "/api/notifications", dto.DispatchRequest{
		Recipient: dto.RecipientRequest{UserID: "user-1"},
		Type:      "general",
		Body:      "hi",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, total, err := env.logRepo.List(context.Background(), domain.LogFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBulkNotificationEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodPost, "/api/notifications/bulk", dto.BulkRequest{
		Recipients: []dto.RecipientRequest{
			{UserID: "u1", Email: "a@example.com"},
			{UserID: "u2", Email: "b@example.com"},
		},
		Type:  "announcement",
		Title: "PTA meeting",
		Body:  "Thursday 18:00",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var summary bulk.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Zero(t, summary.FailureCount)
}

func TestBulkNotificationRejectsBatchWithMalformedAddress(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodPost, "/api/notifications/bulk", dto.BulkRequest{
		Recipients: []dto.RecipientRequest{
			{UserID: "u1", Email: "a@example.com"},
			{UserID: "u2", Email: "not-an-email"},
		},
		Type: "announcement",
		Body: "hi",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Addresses, "not-an-email")

	_, total, err := env.logRepo.List(context.Background(), domain.LogFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestQueryNotificationsEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	env.do(http.MethodPost, "/api/notifications", dto.DispatchRequest{
		Recipient: dto.RecipientRequest{UserID: "user-9", Email: "c@example.com"},
		Type:      "fee",
		Body:      "Fee reminder",
	})

	rec := env.do(http.MethodGet, "/api/notifications?user_id=user-9&channel=EMAIL", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.LogListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.Total)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, domain.ChannelEmail, resp.Entries[0].Channel)
	assert.Equal(t, "c@example.com", resp.Entries[0].Recipient)
}

func TestQueryNotificationsRejectsBadTimestamp(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodGet, "/api/notifications?from=yesterday", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookEndpointAdvancesStatus(t *testing.T) {
	env := newTestEnv(t, true)

	env.do(http.MethodPost, "/api/notifications", dto.DispatchRequest{
		Recipient: dto.RecipientRequest{UserID: "user-2", Email: "d@example.com"},
		Type:      "general",
		Body:      "hello",
	})
	entries, _, err := env.logRepo.List(context.Background(), domain.LogFilter{UserID: "user-2", Channel: domain.ChannelEmail})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	payload, _ := json.Marshal(map[string]any{
		"message_id": entries[0].ProviderMessageID,
		"event":      "delivered",
		"timestamp":  time.Now().Unix(),
	})
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mailpost", bytes.NewReader(payload))
	req.Header.Set("X-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := env.logRepo.GetByID(context.Background(), entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.Status)
}

func TestWebhookEndpointRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t, true)

	payload := []byte(`{"message_id":"pm-x","event":"delivered"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mailpost", bytes.NewReader(payload))
	req.Header.Set("X-Signature", "sha256=deadbeef")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookEndpointUnknownProvider(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/pigeonpost", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("X-Signature", "sha256=deadbeef")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInboxEndpoints(t *testing.T) {
	env := newTestEnv(t, true)

	for i := 0; i < 3; i++ {
		env.do(http.MethodPost, "/api/notifications", dto.DispatchRequest{
			Recipient: dto.RecipientRequest{UserID: "user-5"},
			Type:      "general",
			Body:      fmt.Sprintf("note %d", i),
		})
	}

	rec := env.do(http.MethodGet, "/api/inbox/user-5?page=1&pageSize=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.InboxResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 3, resp.Total)
	assert.Len(t, resp.Messages, 2)

	rec = env.do(http.MethodPost, "/api/inbox/user-5/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var read dto.InboxReadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &read))
	assert.EqualValues(t, 3, read.Updated)

	entries, _, err := env.logRepo.List(context.Background(), domain.LogFilter{UserID: "user-5", Channel: domain.ChannelInApp})
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, domain.StatusRead, e.Status)
	}
}

func TestToggleReconcilerJobEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodPut, "/api/jobs/reconciler/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "started")

	rec = env.do(http.MethodPut, "/api/jobs/reconciler/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stopped")
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
