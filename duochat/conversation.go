// Copyright (c) The duochat authors. All rights reserved.

package duochat

// Conversation types the server may advertise for the aiAction
// conversationType field.
const (
	// ConversationTypeChat is the full interactive chat mode.
	ConversationTypeChat = "DUO_CHAT"

	// ConversationTypeAgentic is the autonomous agent mode.
	ConversationTypeAgentic = "DUO_AGENTIC_CHAT"

	// ConversationTypeLegacy is the pre-threads chat mode, accepted by every
	// deployment that supports the field at all. It is the default when
	// introspection fails.
	ConversationTypeLegacy = "DUO_CHAT_LEGACY"
)

// conversationTypePreference is the fixed selection order, most capable
// mode first.
var conversationTypePreference = []string{
	ConversationTypeChat,
	ConversationTypeAgentic,
	ConversationTypeLegacy,
}

// PreferredConversationType picks the most capable conversation type among
// those the server advertises. An empty or unrecognized advertised set
// yields [ConversationTypeLegacy].
func PreferredConversationType(advertised []string) string {
	for _, want := range conversationTypePreference {
		for _, have := range advertised {
			if have == want {
				return want
			}
		}
	}
	return ConversationTypeLegacy
}
