package domain

// Channel is one outbound medium.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
	ChannelChat  Channel = "CHAT"
	ChannelInApp Channel = "IN_APP"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelChat, ChannelInApp:
		return true
	}
	return false
}

// ExternalChannels lists every channel with an outside provider, in the
// order the resolver emits them. In-App is handled separately because it
// is never skipped.
var ExternalChannels = []Channel{ChannelEmail, ChannelSMS, ChannelChat}

// NotificationType categorizes the triggering domain event.
type NotificationType string

const (
	TypeAttendance   NotificationType = "attendance"
	TypeLeave        NotificationType = "leave"
	TypeFee          NotificationType = "fee"
	TypeAnnouncement NotificationType = "announcement"
	TypeGeneral      NotificationType = "general"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case TypeAttendance, TypeLeave, TypeFee, TypeAnnouncement, TypeGeneral:
		return true
	}
	return false
}

// Attendance conditions carried by attendance-type requests.
const (
	AttendancePresent = "PRESENT"
	AttendanceAbsent  = "ABSENT"
	AttendanceLate    = "LATE"
)

// Recipient carries the per-channel addresses of one recipient.
type Recipient struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	ChatID string `json:"chat_id,omitempty"`
}

// AddressFor returns the recipient address used by the given channel.
// In-App delivers to the user ID itself.
func (r Recipient) AddressFor(ch Channel) string {
	switch ch {
	case ChannelEmail:
		return r.Email
	case ChannelSMS:
		return r.Phone
	case ChannelChat:
		return r.ChatID
	case ChannelInApp:
		return r.UserID
	}
	return ""
}

// NotificationRequest is the ephemeral input to one dispatch. It is consumed
// once and never persisted itself; its durable trace is the set of
// MessageLogEntry rows the dispatch produces.
type NotificationRequest struct {
	Recipient Recipient         `json:"recipient"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body,omitempty"`
	Template  string            `json:"template,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
	// Override forces a single channel; In-App is still appended.
	Override Channel `json:"override,omitempty"`
	TenantID string  `json:"tenant_id,omitempty"`
	// Condition is the triggering domain condition for types that have one,
	// e.g. the attendance status for attendance alerts.
	Condition string        `json:"condition,omitempty"`
	Policy    SuccessPolicy `json:"policy,omitempty"`
}

// Actionable reports whether the request should produce any sends at all.
// An attendance alert is only meaningful for ABSENT or LATE; a PRESENT
// condition short-circuits the whole dispatch as a no-op success.
func (r NotificationRequest) Actionable() bool {
	if r.Type == TypeAttendance && r.Condition == AttendancePresent {
		return false
	}
	return true
}
