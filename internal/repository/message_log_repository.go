package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/types"
)

// MessageLogRepository is the durable audit trail of every send attempt
// and status transition. Rows are created by the dispatcher and mutated
// only by the delivery status tracker; normal flow never deletes them.
type MessageLogRepository interface {
	Create(ctx context.Context, entry *domain.MessageLogEntry) error
	// UpdateStatus moves an entry along the in-process part of the
	// lifecycle (e.g. QUEUED to SENDING) without touching outcome fields.
	UpdateStatus(ctx context.Context, id string, status domain.MessageStatus) error
	// MarkOutcome records the final result of the send attempt: SENT with
	// the provider message id, or FAILED with the classified error.
	MarkOutcome(ctx context.Context, id string, result domain.ChannelResult) error
	GetByID(ctx context.Context, id string) (*domain.MessageLogEntry, error)
	GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.MessageLogEntry, error)
	// ApplyDeliveryStatus writes a tracker-driven transition. The update
	// is guarded at the SQL level by the allowed prior states, so a
	// racing earlier webhook can never overwrite a later state.
	ApplyDeliveryStatus(ctx context.Context, id string, status domain.MessageStatus, at time.Time, errCode, errMsg string) error
	List(ctx context.Context, filter domain.LogFilter) ([]domain.MessageLogEntry, int64, error)
	// FailStuck fails out entries sitting in QUEUED/SENDING since before
	// the threshold. Run by the reconciliation job.
	FailStuck(ctx context.Context, olderThan time.Time) (int64, error)
	// MarkInAppRead transitions a user's deliverable IN_APP entries to
	// READ when the recipient opens the inbox.
	MarkInAppRead(ctx context.Context, userID string, at time.Time) (int64, error)
	Ping(ctx context.Context) error
}

type messageLogRepository struct {
	db *pgxpool.Pool
}

func NewMessageLogRepository(db *pgxpool.Pool) MessageLogRepository {
	return &messageLogRepository{db: db}
}

const logColumns = `id, tenant_id, channel, recipient, user_id, category, subject, body,
			status, provider_message_id, error_code, error_message, metadata,
			created_at, sent_at, delivered_at, read_at, failed_at`

func (r *messageLogRepository) Create(ctx context.Context, entry *domain.MessageLogEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	sql := `
        INSERT INTO message_log
            (id, tenant_id, channel, recipient, user_id, category, subject, body, status, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at`

	return r.db.QueryRow(ctx, sql,
		entry.ID, entry.TenantID, entry.Channel, entry.Recipient, entry.UserID,
		entry.Category, entry.Subject, entry.Body, entry.Status, metadata,
	).Scan(&entry.CreatedAt)
}

func (r *messageLogRepository) UpdateStatus(ctx context.Context, id string, status domain.MessageStatus) error {
	sql := `UPDATE message_log SET status = $1 WHERE id = $2`

	cmdTag, err := r.db.Exec(ctx, sql, status, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *messageLogRepository) MarkOutcome(ctx context.Context, id string, result domain.ChannelResult) error {
	var sql string
	var args []any
	if result.Success {
		sql = `UPDATE message_log
			   SET status = $1, provider_message_id = $2, sent_at = NOW()
			   WHERE id = $3 AND status IN ('QUEUED', 'SENDING')`
		args = []any{domain.StatusSent, result.ProviderMessageID, id}
	} else {
		sql = `UPDATE message_log
			   SET status = $1, error_code = $2, error_message = $3, failed_at = NOW()
			   WHERE id = $4 AND status IN ('QUEUED', 'SENDING')`
		args = []any{domain.StatusFailed, result.ErrorCode, result.ErrorMessage, id}
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *messageLogRepository) GetByID(ctx context.Context, id string) (*domain.MessageLogEntry, error) {
	sql := `SELECT ` + logColumns + ` FROM message_log WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, sql, id))
}

func (r *messageLogRepository) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.MessageLogEntry, error) {
	sql := `SELECT ` + logColumns + ` FROM message_log WHERE provider_message_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, sql, providerMessageID))
}

func (r *messageLogRepository) scanOne(row pgx.Row) (*domain.MessageLogEntry, error) {
	var entry domain.MessageLogEntry
	var metadata []byte
	err := row.Scan(
		&entry.ID, &entry.TenantID, &entry.Channel, &entry.Recipient, &entry.UserID,
		&entry.Category, &entry.Subject, &entry.Body,
		&entry.Status, &entry.ProviderMessageID, &entry.ErrorCode, &entry.ErrorMessage, &metadata,
		&entry.CreatedAt, &entry.SentAt, &entry.DeliveredAt, &entry.ReadAt, &entry.FailedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &entry.Metadata)
	}
	return &entry, nil
}

// timestampColumn maps a lifecycle state to the audit timestamp it stamps.
func timestampColumn(status domain.MessageStatus) string {
	switch status {
	case domain.StatusSent:
		return "sent_at"
	case domain.StatusDelivered:
		return "delivered_at"
	case domain.StatusRead:
		return "read_at"
	case domain.StatusFailed:
		return "failed_at"
	}
	return ""
}

func (r *messageLogRepository) ApplyDeliveryStatus(ctx context.Context, id string, status domain.MessageStatus, at time.Time, errCode, errMsg string) error {
	prior := domain.PriorStates(status)
	if len(prior) == 0 {
		return types.ErrNotFound
	}
	priorList := make([]string, len(prior))
	for i, s := range prior {
		priorList[i] = string(s)
	}

	sets := []string{"status = $1"}
	args := []any{status}
	if col := timestampColumn(status); col != "" {
		args = append(args, at)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if errCode != "" {
		args = append(args, errCode, errMsg)
		sets = append(sets, fmt.Sprintf("error_code = $%d", len(args)-1), fmt.Sprintf("error_message = $%d", len(args)))
	}
	args = append(args, id, priorList)

	sql := fmt.Sprintf(`UPDATE message_log SET %s WHERE id = $%d AND status = ANY($%d)`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *messageLogRepository) List(ctx context.Context, filter domain.LogFilter) ([]domain.MessageLogEntry, int64, error) {
	filter.Normalize()

	var conds []string
	var args []any
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Recipient != "" {
		add("recipient = $%d", filter.Recipient)
	}
	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.Channel != "" {
		add("channel = $%d", filter.Channel)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM message_log"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	sql := fmt.Sprintf("SELECT %s FROM message_log%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		logColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]domain.MessageLogEntry, 0)
	for rows.Next() {
		var entry domain.MessageLogEntry
		var metadata []byte
		if err := rows.Scan(
			&entry.ID, &entry.TenantID, &entry.Channel, &entry.Recipient, &entry.UserID,
			&entry.Category, &entry.Subject, &entry.Body,
			&entry.Status, &entry.ProviderMessageID, &entry.ErrorCode, &entry.ErrorMessage, &metadata,
			&entry.CreatedAt, &entry.SentAt, &entry.DeliveredAt, &entry.ReadAt, &entry.FailedAt,
		); err != nil {
			return nil, 0, err
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &entry.Metadata)
		}
		entries = append(entries, entry)
	}

	return entries, total, rows.Err()
}

func (r *messageLogRepository) FailStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	sql := `UPDATE message_log
			SET status = $1, error_code = $2, error_message = 'send attempt never completed', failed_at = NOW()
			WHERE status IN ('QUEUED', 'SENDING') AND created_at < $3`

	cmdTag, err := r.db.Exec(ctx, sql, domain.StatusFailed, domain.CodeTimeout, olderThan)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

func (r *messageLogRepository) MarkInAppRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	sql := `UPDATE message_log
			SET status = $1, read_at = $2
			WHERE user_id = $3 AND channel = $4 AND status IN ('QUEUED', 'SENDING', 'SENT', 'DELIVERED')`

	cmdTag, err := r.db.Exec(ctx, sql, domain.StatusRead, at, userID, domain.ChannelInApp)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

func (r *messageLogRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
