package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushq/notification-engine/internal/domain"
)

// preferenceRepository implements domain.ContactDirectory against the
// contact_preferences table owned by the recipient settings surface.
// This engine only ever reads it.
type preferenceRepository struct {
	db *pgxpool.Pool
}

func NewPreferenceRepository(db *pgxpool.Pool) domain.ContactDirectory {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) GetContactPreference(ctx context.Context, userID string) (domain.ContactPreference, error) {
	sql := `SELECT user_id, preferred_channel, email_enabled, sms_enabled, chat_enabled, chat_opt_in, language
			FROM contact_preferences
			WHERE user_id = $1`

	var pref domain.ContactPreference
	err := r.db.QueryRow(ctx, sql, userID).Scan(
		&pref.UserID, &pref.Preferred, &pref.Email, &pref.SMS, &pref.Chat, &pref.ChatOptIn, &pref.Language,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		// A recipient without stored settings still gets the in-app inbox.
		return domain.DefaultPreference(userID), nil
	}
	if err != nil {
		return domain.ContactPreference{}, err
	}
	return pref, nil
}
