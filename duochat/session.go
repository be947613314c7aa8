// Copyright (c) The duochat authors. All rights reserved.

package duochat

import "sync"

// Session holds the cross-request state of one conversation: the server
// thread id (empty until the server assigns one), the ordered audit trail of
// issued request ids, and the cached negotiation results.
//
// A session supports one in-flight request at a time; it is mutated only
// between dispatch and resolve steps, never during them. [Session.Reset]
// clears the conversation but keeps the cached version and capabilities,
// which are fixed for the session's lifetime.
type Session struct {
	mu         sync.Mutex
	threadID   string
	requestIDs []string

	version     Version
	caps        Capabilities
	versionSet  bool
	convType    string
	convTypeSet bool
}

// NewSession creates an empty Session.
func NewSession() *Session {
	return &Session{}
}

// ThreadID returns the server-assigned conversation thread id, or "" when no
// conversation has been started.
func (s *Session) ThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadID
}

// AdoptThreadID stores a server-returned thread id if the session has none
// yet. It reports whether the id was adopted; an already-established thread
// id is never overwritten.
func (s *Session) AdoptThreadID(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.threadID != "" {
		return false
	}
	s.threadID = id
	return true
}

// RecordRequestID appends a dispatched request id to the audit trail.
func (s *Session) RecordRequestID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestIDs = append(s.requestIDs, id)
}

// RequestIDs returns a copy of the issued request ids in dispatch order.
func (s *Session) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]string, len(s.requestIDs))
	copy(cp, s.requestIDs)
	return cp
}

// Reset clears the thread id and request-id history, ending the current
// conversation. Cached negotiation results survive.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threadID = ""
	s.requestIDs = nil
}

func (s *Session) cachedVersion() (Version, Capabilities, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, s.caps, s.versionSet
}

func (s *Session) storeVersion(v Version, caps Capabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
	s.caps = caps
	s.versionSet = true
}

func (s *Session) cachedConversationType() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convType, s.convTypeSet
}

func (s *Session) storeConversationType(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convType = t
	s.convTypeSet = true
}
