// Copyright (c) The duochat authors. All rights reserved.

package duochat

import (
	"strings"
	"time"
)

// Role identifies the author of a chat [Message].
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// NormalizeRole lowercases a server-reported role so that "ASSISTANT" and
// "assistant" compare equal.
func NormalizeRole(s string) Role {
	return Role(strings.ToLower(s))
}

// Message is a chat message read back from the server.
type Message struct {
	RequestID string
	Role      Role
	Content   string
	Timestamp string

	// Raw holds the node's full decoded representation, for callers that
	// need fields beyond the standard ones.
	Raw map[string]any
}

// Time parses the message timestamp. ok is false when the timestamp is
// absent or not RFC 3339.
func (m *Message) Time() (t time.Time, ok bool) {
	if m.Timestamp == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// newerThan reports whether m has a strictly newer timestamp than other.
// Unparsable timestamps fall back to string comparison, which orders
// correctly for ISO 8601 strings of equal precision.
func (m *Message) newerThan(other *Message) bool {
	mt, mok := m.Time()
	ot, ook := other.Time()
	if mok && ook {
		return mt.After(ot)
	}
	return m.Timestamp > other.Timestamp
}
