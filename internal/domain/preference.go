package domain

// PreferredAll expands to every channel the recipient has enabled.
const PreferredAll = "ALL"

// ContactPreference is the per-recipient channel configuration. It is a
// read-only input to the preference resolver; recipients mutate it through
// their own settings surface, outside this engine.
type ContactPreference struct {
	UserID string `json:"user_id"`
	// Preferred is a single channel name or PreferredAll.
	Preferred string `json:"preferred"`
	Email     bool   `json:"email_enabled"`
	SMS       bool   `json:"sms_enabled"`
	Chat      bool   `json:"chat_enabled"`
	// ChatOptIn is the explicit consent required for business chat
	// messaging. Its absence excludes the chat channel unconditionally,
	// regardless of stated preference.
	ChatOptIn bool   `json:"chat_opt_in"`
	Language  string `json:"language,omitempty"`
}

// Enabled reports whether the recipient has switched the channel on.
// In-App has no switch; it is the fallback of last resort.
func (p ContactPreference) Enabled(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return p.Email
	case ChannelSMS:
		return p.SMS
	case ChannelChat:
		return p.Chat
	case ChannelInApp:
		return true
	}
	return false
}

// DefaultPreference is used when a recipient has no stored preference:
// only the In-App inbox is reached until the recipient opts in to
// external channels.
func DefaultPreference(userID string) ContactPreference {
	return ContactPreference{UserID: userID, Preferred: PreferredAll}
}
