// Copyright (c) The duochat authors. All rights reserved.

// Package mockserver provides an in-process mock GitLab instance for
// development and tests: the GraphQL surface the duochat client speaks
// (aiAction, the aiMessages read paths, version metadata, enum
// introspection) plus the OpenAI-compatible chat-completions endpoint with a
// scripted streaming simulator.
//
// The GraphQL side is eventually consistent by construction: an assistant
// reply only becomes visible on the read paths after a configurable delay,
// which is what the client's polling loop exists to absorb.
package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Server is the HTTP handler for the mock instance. Create one with [New];
// it is safe for concurrent use.
type Server struct {
	version           string
	conversationTypes []string
	chatAvailable     bool
	metadataDisabled  bool
	primaryHidden     bool
	replyDelay        time.Duration
	streamInterval    time.Duration
	reply             func(question string) string

	mu          sync.Mutex
	nextID      int
	byRequestID map[string]*storedMessage
	threads     map[string][]*storedMessage

	mux *http.ServeMux
}

// storedMessage is one message held by the mock store. availableAt gates
// visibility on the read paths.
type storedMessage struct {
	requestID   string
	threadID    string
	role        string
	content     string
	timestamp   time.Time
	availableAt time.Time
}

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithVersion sets the reported server version. Defaults to "17.10.0".
func WithVersion(v string) ServerOption {
	return func(s *Server) { s.version = v }
}

// WithConversationTypes sets the advertised conversation-type enum values.
func WithConversationTypes(types ...string) ServerOption {
	return func(s *Server) { s.conversationTypes = types }
}

// WithChatUnavailable makes currentUser report Duo Chat as unavailable.
func WithChatUnavailable() ServerOption {
	return func(s *Server) { s.chatAvailable = false }
}

// WithoutMetadataVersion fails the structured metadata query, leaving only
// the legacy top-level version field.
func WithoutMetadataVersion() ServerOption {
	return func(s *Server) { s.metadataDisabled = true }
}

// WithPrimaryPathHidden makes the aiMessages request-id lookup return no
// nodes, forcing clients onto the fallback read paths.
func WithPrimaryPathHidden() ServerOption {
	return func(s *Server) { s.primaryHidden = true }
}

// WithReplyDelay sets how long an assistant reply stays invisible on the
// read paths after dispatch. Defaults to zero (immediately visible).
func WithReplyDelay(d time.Duration) ServerOption {
	return func(s *Server) { s.replyDelay = d }
}

// WithStreamInterval sets the delay between streamed completion chunks.
func WithStreamInterval(d time.Duration) ServerOption {
	return func(s *Server) { s.streamInterval = d }
}

// WithReply overrides how the assistant reply is generated from a question.
func WithReply(fn func(question string) string) ServerOption {
	return func(s *Server) { s.reply = fn }
}

// New creates a mock server.
func New(opts ...ServerOption) *Server {
	s := &Server{
		version:           "17.10.0",
		conversationTypes: []string{"DUO_CHAT", "DUO_AGENTIC_CHAT", "DUO_CHAT_LEGACY"},
		chatAvailable:     true,
		streamInterval:    100 * time.Millisecond,
		reply: func(question string) string {
			return "Mock reply to: " + question
		},
		byRequestID: make(map[string]*storedMessage),
		threads:     make(map[string][]*storedMessage),
		mux:         http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/graphql", s.handleGraphQL)
	s.mux.HandleFunc("GET /models", s.handleModels)
	s.mux.HandleFunc("GET /v1/models", s.handleModels)
	s.mux.HandleFunc("POST /v1/chat/completions", s.handleCompletions)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// graphQLRequest is the JSON body of a GraphQL POST.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGraphQLErrors(w, "invalid request body")
		return
	}

	// Dispatch on the fields the document selects, the way a resolver
	// would. Order matters: several documents mention overlapping names.
	switch {
	case strings.Contains(req.Query, "aiAction"):
		s.resolveChat(w, req)
	case strings.Contains(req.Query, "aiMessages"):
		s.resolveMessagesByRequestID(w, req)
	case strings.Contains(req.Query, "aiMessage"):
		s.resolveMessageByID(w, req)
	case strings.Contains(req.Query, "lastMessage"):
		s.resolveThreadLastMessage(w, req)
	case strings.Contains(req.Query, "aiConversationThread"):
		s.resolveThreadMessages(w, req)
	case strings.Contains(req.Query, "__type"):
		s.resolveConversationTypes(w)
	case strings.Contains(req.Query, "currentUser"):
		s.resolveAvailability(w)
	case strings.Contains(req.Query, "metadata"):
		s.resolveMetadataVersion(w)
	case strings.Contains(req.Query, "version"):
		writeGraphQLData(w, map[string]any{"version": s.version})
	default:
		writeGraphQLErrors(w, "unsupported query")
	}
}

func (s *Server) resolveAvailability(w http.ResponseWriter) {
	writeGraphQLData(w, map[string]any{
		"currentUser": map[string]any{"duoChatAvailable": s.chatAvailable},
	})
}

func (s *Server) resolveMetadataVersion(w http.ResponseWriter) {
	if s.metadataDisabled {
		writeGraphQLErrors(w, "field 'metadata' doesn't exist on type 'Query'")
		return
	}
	writeGraphQLData(w, map[string]any{
		"metadata": map[string]any{"version": s.version},
	})
}

func (s *Server) resolveConversationTypes(w http.ResponseWriter) {
	values := make([]map[string]any, len(s.conversationTypes))
	for i, t := range s.conversationTypes {
		values[i] = map[string]any{"name": t}
	}
	writeGraphQLData(w, map[string]any{
		"__type": map[string]any{"enumValues": values},
	})
}

// resolveChat handles the aiAction mutation: it records the user message,
// schedules the assistant reply, and answers with the request id (plus a
// thread id on the threaded tier).
func (s *Server) resolveChat(w http.ResponseWriter, req graphQLRequest) {
	question, _ := req.Variables["question"].(string)
	if question == "" {
		writeGraphQLData(w, map[string]any{
			"aiAction": map[string]any{
				"requestId": nil,
				"errors":    []string{"question can't be blank"},
			},
		})
		return
	}

	s.mu.Lock()
	s.nextID++
	requestID := fmt.Sprintf("req-%d", s.nextID)

	threaded := strings.Contains(req.Query, "threadId")
	var threadID string
	if threaded {
		threadID, _ = req.Variables["threadId"].(string)
		if threadID == "" {
			threadID = fmt.Sprintf("thread-%d", s.nextID)
		}
	}

	now := time.Now()
	userMsg := &storedMessage{
		requestID:   requestID,
		threadID:    threadID,
		role:        "user",
		content:     question,
		timestamp:   now,
		availableAt: now,
	}
	assistantMsg := &storedMessage{
		requestID:   requestID,
		threadID:    threadID,
		role:        "assistant",
		content:     s.reply(question),
		timestamp:   now.Add(time.Millisecond),
		availableAt: now.Add(s.replyDelay),
	}
	s.byRequestID[requestID] = assistantMsg
	if threadID != "" {
		s.threads[threadID] = append(s.threads[threadID], userMsg, assistantMsg)
	}
	s.mu.Unlock()

	action := map[string]any{
		"requestId": requestID,
		"errors":    []string{},
	}
	if threaded {
		action["threadId"] = threadID
	}
	writeGraphQLData(w, map[string]any{"aiAction": action})
}

func (s *Server) resolveMessagesByRequestID(w http.ResponseWriter, req graphQLRequest) {
	nodes := []map[string]any{}
	if !s.primaryHidden {
		requestIDs, _ := req.Variables["requestIds"].([]any)
		s.mu.Lock()
		now := time.Now()
		for _, raw := range requestIDs {
			id, _ := raw.(string)
			if msg, ok := s.byRequestID[id]; ok && !msg.availableAt.After(now) {
				nodes = append(nodes, msg.node())
			}
		}
		s.mu.Unlock()
	}
	writeGraphQLData(w, map[string]any{
		"aiMessages": map[string]any{"nodes": nodes},
	})
}

func (s *Server) resolveMessageByID(w http.ResponseWriter, req graphQLRequest) {
	id, _ := req.Variables["messageId"].(string)
	s.mu.Lock()
	msg, ok := s.byRequestID[id]
	visible := ok && !msg.availableAt.After(time.Now())
	var node map[string]any
	if visible {
		node = msg.node()
	}
	s.mu.Unlock()
	writeGraphQLData(w, map[string]any{"aiMessage": node})
}

func (s *Server) resolveThreadMessages(w http.ResponseWriter, req graphQLRequest) {
	threadID, _ := req.Variables["threadId"].(string)
	nodes := []map[string]any{}
	s.mu.Lock()
	now := time.Now()
	for _, msg := range s.threads[threadID] {
		if !msg.availableAt.After(now) {
			nodes = append(nodes, msg.node())
		}
	}
	s.mu.Unlock()
	writeGraphQLData(w, map[string]any{
		"aiConversationThread": map[string]any{
			"messages": map[string]any{"nodes": nodes},
		},
	})
}

func (s *Server) resolveThreadLastMessage(w http.ResponseWriter, req graphQLRequest) {
	threadID, _ := req.Variables["threadId"].(string)
	var node map[string]any
	s.mu.Lock()
	now := time.Now()
	for _, msg := range s.threads[threadID] {
		if !msg.availableAt.After(now) {
			node = msg.node()
		}
	}
	s.mu.Unlock()
	writeGraphQLData(w, map[string]any{
		"aiConversationThread": map[string]any{"lastMessage": node},
	})
}

func (m *storedMessage) node() map[string]any {
	return map[string]any{
		"requestId": m.requestID,
		"role":      m.role,
		"content":   m.content,
		"timestamp": m.timestamp.UTC().Format(time.RFC3339Nano),
		"errors":    []string{},
	}
}

func writeGraphQLData(w http.ResponseWriter, data map[string]any) {
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func writeGraphQLErrors(w http.ResponseWriter, messages ...string) {
	errs := make([]map[string]any, len(messages))
	for i, m := range messages {
		errs[i] = map[string]any{"message": m}
	}
	writeJSON(w, http.StatusOK, map[string]any{"errors": errs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
