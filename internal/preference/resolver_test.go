package preference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campushq/notification-engine/internal/domain"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		pref     domain.ContactPreference
		override domain.Channel
		want     []domain.Channel
	}{
		{
			name: "all expands to every enabled channel, in-app last",
			pref: domain.ContactPreference{
				Preferred: domain.PreferredAll,
				Email:     true, SMS: true, Chat: true, ChatOptIn: true,
			},
			want: []domain.Channel{domain.ChannelEmail, domain.ChannelSMS, domain.ChannelChat, domain.ChannelInApp},
		},
		{
			name: "single preference plus in-app",
			pref: domain.ContactPreference{Preferred: string(domain.ChannelEmail), Email: true},
			want: []domain.Channel{domain.ChannelEmail, domain.ChannelInApp},
		},
		{
			name: "preferred channel disabled falls back to in-app only",
			pref: domain.ContactPreference{Preferred: string(domain.ChannelSMS), SMS: false},
			want: []domain.Channel{domain.ChannelInApp},
		},
		{
			name: "chat without consent is excluded from all",
			pref: domain.ContactPreference{
				Preferred: domain.PreferredAll,
				Email:     true, Chat: true, ChatOptIn: false,
			},
			want: []domain.Channel{domain.ChannelEmail, domain.ChannelInApp},
		},
		{
			name: "chat preference without consent yields in-app only",
			pref: domain.ContactPreference{Preferred: string(domain.ChannelChat), Chat: true, ChatOptIn: false},
			want: []domain.Channel{domain.ChannelInApp},
		},
		{
			name:     "override wins over preference",
			pref:     domain.ContactPreference{Preferred: domain.PreferredAll, Email: true, SMS: true},
			override: domain.ChannelSMS,
			want:     []domain.Channel{domain.ChannelSMS, domain.ChannelInApp},
		},
		{
			name:     "override cannot bypass chat consent",
			pref:     domain.ContactPreference{Preferred: domain.PreferredAll, ChatOptIn: false},
			override: domain.ChannelChat,
			want:     []domain.Channel{domain.ChannelInApp},
		},
		{
			name:     "override to in-app stays a single entry",
			pref:     domain.ContactPreference{Preferred: domain.PreferredAll, Email: true},
			override: domain.ChannelInApp,
			want:     []domain.Channel{domain.ChannelInApp},
		},
		{
			name: "empty preference still reaches in-app",
			pref: domain.ContactPreference{},
			want: []domain.Channel{domain.ChannelInApp},
		},
	}

	r := NewResolver()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Resolve(tc.pref, domain.TypeGeneral, tc.override)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolve_InAppAlwaysPresent(t *testing.T) {
	r := NewResolver()
	prefs := []domain.ContactPreference{
		{},
		{Preferred: domain.PreferredAll, Email: true, SMS: true, Chat: true, ChatOptIn: true},
		{Preferred: string(domain.ChannelEmail), Email: true},
		{Preferred: "bogus"},
	}
	for _, p := range prefs {
		got := r.Resolve(p, domain.TypeAnnouncement, "")
		assert.Equal(t, domain.ChannelInApp, got[len(got)-1])
	}
}
