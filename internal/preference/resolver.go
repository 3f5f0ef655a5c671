// Package preference turns a recipient's stored contact preference into
// the ordered list of channels a dispatch should attempt.
package preference

import "github.com/campushq/notification-engine/internal/domain"

// Resolver applies opt-in/opt-out and fallback rules. It is stateless.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the deduplicated, order-preserving channel list for one
// dispatch. In-App is always included and always last unless it is the
// only entry: it is the fallback of last resort, so no event is silently
// lost even when every external provider is unreachable.
//
// An explicit override wins over stored preference but cannot bypass the
// chat consent rule: consent absence is a hard exclusion, not a soft
// preference.
func (r *Resolver) Resolve(pref domain.ContactPreference, _ domain.NotificationType, override domain.Channel) []domain.Channel {
	if override != "" && override.IsValid() {
		if override == domain.ChannelInApp || !r.permitted(pref, override) {
			return []domain.Channel{domain.ChannelInApp}
		}
		return []domain.Channel{override, domain.ChannelInApp}
	}

	var channels []domain.Channel
	if pref.Preferred == domain.PreferredAll {
		for _, ch := range domain.ExternalChannels {
			if pref.Enabled(ch) && r.permitted(pref, ch) {
				channels = append(channels, ch)
			}
		}
	} else if preferred := domain.Channel(pref.Preferred); preferred.IsValid() && preferred != domain.ChannelInApp {
		if pref.Enabled(preferred) && r.permitted(pref, preferred) {
			channels = append(channels, preferred)
		}
	}

	return append(dedupe(channels), domain.ChannelInApp)
}

// permitted enforces consent for regulated channels.
func (r *Resolver) permitted(pref domain.ContactPreference, ch domain.Channel) bool {
	if ch == domain.ChannelChat {
		return pref.ChatOptIn
	}
	return true
}

func dedupe(channels []domain.Channel) []domain.Channel {
	seen := make(map[domain.Channel]bool, len(channels))
	out := channels[:0]
	for _, ch := range channels {
		if !seen[ch] {
			seen[ch] = true
			out = append(out, ch)
		}
	}
	return out
}
