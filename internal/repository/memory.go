package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/types"
)

// memoryMessageLog is an in-memory MessageLogRepository used by tests and
// local development. It applies the same lifecycle guards as the SQL
// implementation.
type memoryMessageLog struct {
	mu      sync.Mutex
	entries map[string]*domain.MessageLogEntry
}

func NewMemoryMessageLog() MessageLogRepository {
	return &memoryMessageLog{entries: make(map[string]*domain.MessageLogEntry)}
}

func (m *memoryMessageLog) Create(_ context.Context, entry *domain.MessageLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	clone := *entry
	m.entries[entry.ID] = &clone
	return nil
}

func (m *memoryMessageLog) UpdateStatus(_ context.Context, id string, status domain.MessageStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return types.ErrNotFound
	}
	entry.Status = status
	return nil
}

func (m *memoryMessageLog) MarkOutcome(_ context.Context, id string, result domain.ChannelResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return types.ErrNotFound
	}
	if entry.Status != domain.StatusQueued && entry.Status != domain.StatusSending {
		return types.ErrNotFound
	}
	now := time.Now().UTC()
	if result.Success {
		entry.Status = domain.StatusSent
		entry.ProviderMessageID = result.ProviderMessageID
		entry.SentAt = &now
	} else {
		entry.Status = domain.StatusFailed
		entry.ErrorCode = result.ErrorCode
		entry.ErrorMessage = result.ErrorMessage
		entry.FailedAt = &now
	}
	return nil
}

func (m *memoryMessageLog) GetByID(_ context.Context, id string) (*domain.MessageLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, types.ErrNoRows
	}
	clone := *entry
	return &clone, nil
}

func (m *memoryMessageLog) GetByProviderMessageID(_ context.Context, providerMessageID string) (*domain.MessageLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.entries {
		if entry.ProviderMessageID != "" && entry.ProviderMessageID == providerMessageID {
			clone := *entry
			return &clone, nil
		}
	}
	return nil, types.ErrNoRows
}

func (m *memoryMessageLog) ApplyDeliveryStatus(_ context.Context, id string, status domain.MessageStatus, at time.Time, errCode, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return types.ErrNotFound
	}
	if !entry.Status.CanTransition(status) {
		return types.ErrNotFound
	}
	entry.Status = status
	stamp := at
	switch status {
	case domain.StatusSent:
		entry.SentAt = &stamp
	case domain.StatusDelivered:
		entry.DeliveredAt = &stamp
	case domain.StatusRead:
		entry.ReadAt = &stamp
	case domain.StatusFailed:
		entry.FailedAt = &stamp
	}
	if errCode != "" {
		entry.ErrorCode = errCode
		entry.ErrorMessage = errMsg
	}
	return nil
}

func (m *memoryMessageLog) List(_ context.Context, filter domain.LogFilter) ([]domain.MessageLogEntry, int64, error) {
	filter.Normalize()
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []domain.MessageLogEntry
	for _, entry := range m.entries {
		if filter.Recipient != "" && entry.Recipient != filter.Recipient {
			continue
		}
		if filter.UserID != "" && entry.UserID != filter.UserID {
			continue
		}
		if filter.Channel != "" && entry.Channel != filter.Channel {
			continue
		}
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		if filter.From != nil && entry.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !entry.CreatedAt.Before(*filter.To) {
			continue
		}
		matched = append(matched, *entry)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matched) {
		return []domain.MessageLogEntry{}, total, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memoryMessageLog) FailStuck(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	now := time.Now().UTC()
	for _, entry := range m.entries {
		if (entry.Status == domain.StatusQueued || entry.Status == domain.StatusSending) && entry.CreatedAt.Before(olderThan) {
			entry.Status = domain.StatusFailed
			entry.ErrorCode = domain.CodeTimeout
			entry.ErrorMessage = "send attempt never completed"
			entry.FailedAt = &now
			n++
		}
	}
	return n, nil
}

func (m *memoryMessageLog) MarkInAppRead(_ context.Context, userID string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, entry := range m.entries {
		if entry.UserID != userID || entry.Channel != domain.ChannelInApp || entry.Status.Terminal() {
			continue
		}
		stamp := at
		entry.Status = domain.StatusRead
		entry.ReadAt = &stamp
		n++
	}
	return n, nil
}

func (m *memoryMessageLog) Ping(context.Context) error { return nil }
