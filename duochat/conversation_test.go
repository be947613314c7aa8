// Copyright (c) The duochat authors. All rights reserved.

package duochat_test

import (
	"testing"

	"gitlab.com/duo-console/duochat/duochat"
)

func TestPreferredConversationType(t *testing.T) {
	tests := []struct {
		name       string
		advertised []string
		want       string
	}{
		{
			name:       "full set picks chat",
			advertised: []string{"DUO_CHAT_LEGACY", "DUO_AGENTIC_CHAT", "DUO_CHAT"},
			want:       duochat.ConversationTypeChat,
		},
		{
			name:       "chat missing picks agentic",
			advertised: []string{"DUO_CHAT_LEGACY", "DUO_AGENTIC_CHAT"},
			want:       duochat.ConversationTypeAgentic,
		},
		{
			name:       "legacy only",
			advertised: []string{"DUO_CHAT_LEGACY"},
			want:       duochat.ConversationTypeLegacy,
		},
		{
			name:       "empty set falls back to legacy",
			advertised: nil,
			want:       duochat.ConversationTypeLegacy,
		},
		{
			name:       "unrecognized values fall back to legacy",
			advertised: []string{"DUO_SOMETHING_NEW", "OTHER"},
			want:       duochat.ConversationTypeLegacy,
		},
		{
			name:       "advertised order does not matter",
			advertised: []string{"DUO_AGENTIC_CHAT", "DUO_CHAT"},
			want:       duochat.ConversationTypeChat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := duochat.PreferredConversationType(tt.advertised); got != tt.want {
				t.Errorf("PreferredConversationType(%v) = %q, want %q", tt.advertised, got, tt.want)
			}
		})
	}
}
