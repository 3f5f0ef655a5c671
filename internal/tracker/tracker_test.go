package tracker

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/repository"
	"github.com/campushq/notification-engine/internal/types"
)

const testSecret = "whsec_test"

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func signTimestamped(secret string, body []byte, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newTracker(t *testing.T) (*Tracker, repository.MessageLogRepository) {
	t.Helper()
	repo := repository.NewMemoryMessageLog()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tr := New(repo, map[string]string{
		ProviderMailpost: testSecret,
		ProviderSMSGate:  testSecret,
		ProviderChatBiz:  testSecret,
	}, logger)
	return tr, repo
}

func seedEntry(t *testing.T, repo repository.MessageLogRepository, providerMessageID string, status domain.MessageStatus) *domain.MessageLogEntry {
	t.Helper()
	entry := &domain.MessageLogEntry{
		ID:        "entry-" + providerMessageID,
		Channel:   domain.ChannelEmail,
		Recipient: "parent@example.com",
		Category:  domain.TypeFee,
		Status:    domain.StatusQueued,
	}
	assert.NoError(t, repo.Create(context.Background(), entry))
	assert.NoError(t, repo.MarkOutcome(context.Background(), entry.ID, domain.SuccessResult(domain.ChannelEmail, providerMessageID)))
	if status != domain.StatusSent {
		assert.NoError(t, repo.ApplyDeliveryStatus(context.Background(), entry.ID, status, time.Now(), "", ""))
	}
	return entry
}

func getStatus(t *testing.T, repo repository.MessageLogRepository, id string) domain.MessageStatus {
	t.Helper()
	entry, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	return entry.Status
}

func TestIngest_DeliveredTransition(t *testing.T) {
	tr, repo := newTracker(t)
	entry := seedEntry(t, repo, "mail-1", domain.StatusSent)

	body := []byte(`{"message_id":"mail-1","event":"delivered","timestamp":1700000000}`)
	err := tr.Ingest(context.Background(), ProviderMailpost, body, sign(testSecret, body))

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, getStatus(t, repo, entry.ID))
}

func TestIngest_TamperedBodyRejectedWithoutMutation(t *testing.T) {
	tr, repo := newTracker(t)
	entry := seedEntry(t, repo, "mail-1", domain.StatusSent)

	body := []byte(`{"message_id":"mail-1","event":"delivered","timestamp":1700000000}`)
	header := sign(testSecret, body)
	tampered := []byte(`{"message_id":"mail-1","event":"failed","timestamp":1700000000}`)

	err := tr.Ingest(context.Background(), ProviderMailpost, tampered, header)

	assert.ErrorIs(t, err, types.ErrInvalidSignature)
	assert.Equal(t, domain.StatusSent, getStatus(t, repo, entry.ID), "status unchanged after rejected payload")
}

func TestIngest_TimestampedSignatureScheme(t *testing.T) {
	tr, repo := newTracker(t)
	entry := seedEntry(t, repo, "sms-1", domain.StatusSent)

	body := []byte(`{"id":"sms-1","status":"DELIVERED","done_at":"2026-01-15T10:00:00Z"}`)
	err := tr.Ingest(context.Background(), ProviderSMSGate, body, signTimestamped(testSecret, body, time.Now()))

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, getStatus(t, repo, entry.ID))
}

func TestIngest_StaleTimestampRejected(t *testing.T) {
	tr, repo := newTracker(t)
	entry := seedEntry(t, repo, "sms-1", domain.StatusSent)

	body := []byte(`{"id":"sms-1","status":"DELIVERED","done_at":"2026-01-15T10:00:00Z"}`)
	header := signTimestamped(testSecret, body, time.Now().Add(-10*time.Minute))

	err := tr.Ingest(context.Background(), ProviderSMSGate, body, header)

	assert.ErrorIs(t, err, types.ErrStaleSignature)
	assert.Equal(t, domain.StatusSent, getStatus(t, repo, entry.ID))
}

func TestIngest_IdempotentRedelivery(t *testing.T) {
	tr, repo := newTracker(t)
	entry := seedEntry(t, repo, "mail-1", domain.StatusSent)

	body := []byte(`{"message_id":"mail-1","event":"delivered","timestamp":1700000000}`)
	header := sign(testSecret, body)

	assert.NoError(t, tr.Ingest(context.Background(), ProviderMailpost, body, header))
	afterFirst := getStatus(t, repo, entry.ID)
	assert.NoError(t, tr.Ingest(context.Background(), ProviderMailpost, body, header))

	assert.Equal(t, afterFirst, getStatus(t, repo, entry.ID))
	assert.Equal(t, domain.StatusDelivered, afterFirst)
}

func TestIngest_TerminalStateNeverOverwritten(t *testing.T) {
	tr, repo := newTracker(t)
	entry := seedEntry(t, repo, "chat-1", domain.StatusRead)

	body := []byte(`{"statuses":[{"id":"chat-1","status":"delivered","timestamp":"1700000000"}]}`)
	err := tr.Ingest(context.Background(), ProviderChatBiz, body, sign(testSecret, body))

	assert.NoError(t, err, "out-of-order update is a no-op, not an error")
	assert.Equal(t, domain.StatusRead, getStatus(t, repo, entry.ID))
}

func TestIngest_FailedNotAppliedAfterDelivery(t *testing.T) {
	tr, repo := newTracker(t)
	entry := seedEntry(t, repo, "sms-1", domain.StatusDelivered)

	body := []byte(`{"id":"sms-1","status":"EXPIRED","error":"handset unreachable"}`)
	err := tr.Ingest(context.Background(), ProviderSMSGate, body, sign(testSecret, body))

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, getStatus(t, repo, entry.ID))
}

func TestIngest_UnknownMessageIsNoOp(t *testing.T) {
	tr, _ := newTracker(t)

	body := []byte(`{"message_id":"never-seen","event":"delivered","timestamp":1700000000}`)
	err := tr.Ingest(context.Background(), ProviderMailpost, body, sign(testSecret, body))

	assert.NoError(t, err)
}

func TestIngest_UnknownProviderRejected(t *testing.T) {
	tr, _ := newTracker(t)

	err := tr.Ingest(context.Background(), "mystery", []byte(`{}`), "sha256=abc")

	assert.ErrorIs(t, err, types.ErrUnknownProvider)
}

func TestIngest_UnparseablePayloadDroppedQuietly(t *testing.T) {
	tr, _ := newTracker(t)

	body := []byte(`not json at all`)
	err := tr.Ingest(context.Background(), ProviderMailpost, body, sign(testSecret, body))

	assert.NoError(t, err)
}

func TestIngest_ChatReadReceipt(t *testing.T) {
	tr, repo := newTracker(t)
	entry := seedEntry(t, repo, "chat-9", domain.StatusDelivered)

	body := []byte(`{"statuses":[{"id":"chat-9","status":"read","timestamp":"1700000500"}]}`)
	err := tr.Ingest(context.Background(), ProviderChatBiz, body, sign(testSecret, body))

	assert.NoError(t, err)
	got, err := repo.GetByID(context.Background(), entry.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusRead, got.Status)
	assert.NotNil(t, got.ReadAt)
}
