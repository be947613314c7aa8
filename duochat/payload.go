// Copyright (c) The duochat authors. All rights reserved.

package duochat

import "github.com/google/uuid"

// DefaultPlatformOrigin is the platformOrigin tag sent on capability tiers
// that support it.
const DefaultPlatformOrigin = "duochat-cli"

// Submission is a fully assembled chat submission: the mutation document for
// the reached capability tier plus its variables. Immutable after dispatch.
type Submission struct {
	Query         string
	Variables     map[string]any
	CorrelationID string
}

// BuildSubmission assembles the outgoing submission for one user message.
// It is total: every combination of capabilities and session state yields a
// well-formed payload.
//
// The payload shape is driven by the highest capability tier reached; each
// tier's fields are a superset of the previous tier's. The session's thread
// id is included when set (continuing a conversation) and omitted when not
// (starting one). conversationType is ignored below the threads tier.
func BuildSubmission(caps Capabilities, conversationType string, origin string, session *Session, message string) Submission {
	if origin == "" {
		origin = DefaultPlatformOrigin
	}

	correlationID := uuid.NewString()
	vars := map[string]any{
		"question":             message,
		"clientSubscriptionId": correlationID,
	}

	query := mutationChatBase
	if caps.PlatformOrigin {
		query = mutationChatWithOrigin
		vars["platformOrigin"] = origin
	}
	if caps.AdditionalContext {
		query = mutationChatWithContext
		// Reserved for collaborators that attach files or snippets; the
		// console client always sends an empty list.
		vars["additionalContext"] = []any{}
	}
	if caps.ConversationThreads {
		query = mutationChatThreaded
		if conversationType == "" {
			conversationType = ConversationTypeLegacy
		}
		vars["conversationType"] = conversationType
		if session != nil {
			if threadID := session.ThreadID(); threadID != "" {
				vars["threadId"] = threadID
			}
		}
	}

	return Submission{
		Query:         query,
		Variables:     vars,
		CorrelationID: correlationID,
	}
}
