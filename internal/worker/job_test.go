package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconcile_FailsOutStuckEntries(t *testing.T) {
	repo := repository.NewMemoryMessageLog()
	ctx := context.Background()

	stuck := &domain.MessageLogEntry{
		ID: "stuck-1", Channel: domain.ChannelEmail, Recipient: "parent@example.com",
		Category: domain.TypeFee, Status: domain.StatusSending,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	assert.NoError(t, repo.Create(ctx, stuck))

	fresh := &domain.MessageLogEntry{
		ID: "fresh-1", Channel: domain.ChannelEmail, Recipient: "parent@example.com",
		Category: domain.TypeFee, Status: domain.StatusQueued,
		CreatedAt: time.Now(),
	}
	assert.NoError(t, repo.Create(ctx, fresh))

	done := &domain.MessageLogEntry{
		ID: "done-1", Channel: domain.ChannelEmail, Recipient: "parent@example.com",
		Category: domain.TypeFee, Status: domain.StatusQueued,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	assert.NoError(t, repo.Create(ctx, done))
	assert.NoError(t, repo.MarkOutcome(ctx, done.ID, domain.SuccessResult(domain.ChannelEmail, "mail-1")))

	j := NewJob(time.Hour, 10*time.Minute, repo, discardLogger())
	j.reconcile(ctx)

	get := func(id string) domain.MessageStatus {
		entry, err := repo.GetByID(ctx, id)
		assert.NoError(t, err)
		return entry.Status
	}
	assert.Equal(t, domain.StatusFailed, get("stuck-1"))
	assert.Equal(t, domain.StatusQueued, get("fresh-1"), "recent in-flight entries are left alone")
	assert.Equal(t, domain.StatusSent, get("done-1"), "completed sends are untouched")
}

func TestJobManager_StartStopToggle(t *testing.T) {
	repo := repository.NewMemoryMessageLog()
	var wg sync.WaitGroup
	m := NewJobManager(repo, time.Hour, time.Hour, discardLogger(), &wg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.False(t, m.IsRunning())
	assert.NoError(t, m.Start(ctx))
	assert.True(t, m.IsRunning())
	assert.Error(t, m.Start(ctx), "double start is rejected")

	assert.NoError(t, m.Stop())
	assert.False(t, m.IsRunning())
	assert.Error(t, m.Stop())
}
