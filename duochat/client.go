// Copyright (c) The duochat authors. All rights reserved.

package duochat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Transport is the generic query/mutation submission primitive. The graphql
// package provides the HTTP implementation; tests inject fakes.
//
// Send returns the response's data document. HTTP-level failures yield an
// error matching [ErrTransport]; a GraphQL errors list yields an error
// matching [ErrProtocol].
type Transport interface {
	Send(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error)
}

// ResetMessage is the reserved control message that asks the service to
// drop the current conversation context.
const ResetMessage = "/clear"

const (
	defaultMaxAttempts  = 30
	defaultPollInterval = time.Second
)

// Client drives Duo Chat conversations: it negotiates the protocol once per
// session, dispatches messages, and resolves their asynchronous responses.
// Create one with [NewClient].
//
// A Client supports one in-flight request at a time per session; overlapping
// [Client.Ask] calls on the same session are not supported.
type Client struct {
	tp           Transport
	session      *Session
	origin       string
	pollInterval time.Duration
	maxAttempts  int
}

// Option configures a [Client].
type Option func(*Client)

// WithSession attaches an existing [Session] instead of starting a new one.
func WithSession(s *Session) Option {
	return func(c *Client) { c.session = s }
}

// WithPlatformOrigin overrides the platformOrigin tag sent on capability
// tiers that support it.
func WithPlatformOrigin(origin string) Option {
	return func(c *Client) { c.origin = origin }
}

// WithPollInterval sets the delay between resolution attempts.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithMaxAttempts sets the resolution retry budget.
func WithMaxAttempts(n int) Option {
	return func(c *Client) { c.maxAttempts = n }
}

// NewClient creates a Client using the given [Transport].
func NewClient(tp Transport, opts ...Option) *Client {
	c := &Client{
		tp:           tp,
		origin:       DefaultPlatformOrigin,
		pollInterval: defaultPollInterval,
		maxAttempts:  defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		c.session = NewSession()
	}
	return c
}

// Session returns the client's conversation session.
func (c *Client) Session() *Session { return c.session }

// Available reports whether Duo Chat is enabled for the authenticated user.
func (c *Client) Available(ctx context.Context) (bool, error) {
	data, err := c.tp.Send(ctx, queryChatAvailable, nil)
	if err != nil {
		return false, err
	}
	var payload struct {
		CurrentUser struct {
			DuoChatAvailable bool `json:"duoChatAvailable"`
		} `json:"currentUser"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return false, fmt.Errorf("decode availability: %w", err)
	}
	return payload.CurrentUser.DuoChatAvailable, nil
}

// ServerVersion discovers the server's version: the structured metadata
// field first, the legacy top-level field as fallback. The result is cached
// for the session, including the failure of both paths (which yields
// [UnknownVersion]), so at most one underlying call sequence is performed.
func (c *Client) ServerVersion(ctx context.Context) Version {
	if v, _, ok := c.session.cachedVersion(); ok {
		return v
	}

	v := c.discoverVersion(ctx)
	c.session.storeVersion(v, CapabilitiesFor(v))
	slog.DebugContext(ctx, "negotiated server version",
		"version", v.String(),
	)
	return v
}

func (c *Client) discoverVersion(ctx context.Context) Version {
	data, err := c.tp.Send(ctx, queryMetadataVersion, nil)
	if err == nil {
		var payload struct {
			Metadata struct {
				Version string `json:"version"`
			} `json:"metadata"`
		}
		if err := json.Unmarshal(data, &payload); err == nil && payload.Metadata.Version != "" {
			return ParseVersion(payload.Metadata.Version)
		}
	} else {
		slog.DebugContext(ctx, "metadata version query failed, trying legacy field", "error", err)
	}

	data, err = c.tp.Send(ctx, queryLegacyVersion, nil)
	if err != nil {
		slog.DebugContext(ctx, "legacy version query failed", "error", err)
		return UnknownVersion
	}
	var payload struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Version == "" {
		return UnknownVersion
	}
	return ParseVersion(payload.Version)
}

// Capabilities returns the feature set enabled by the negotiated server
// version, negotiating first if needed.
func (c *Client) Capabilities(ctx context.Context) Capabilities {
	c.ServerVersion(ctx)
	_, caps, _ := c.session.cachedVersion()
	return caps
}

// ConversationType returns the negotiated conversation type, or "" when the
// server's capability tier has no conversation-type support. Introspection
// failure degrades to [ConversationTypeLegacy] without error. The result is
// cached for the session.
func (c *Client) ConversationType(ctx context.Context) string {
	if !c.Capabilities(ctx).ConversationThreads {
		return ""
	}
	if t, ok := c.session.cachedConversationType(); ok {
		return t
	}

	t := ConversationTypeLegacy
	if advertised, err := c.advertisedConversationTypes(ctx); err != nil {
		slog.DebugContext(ctx, "conversation type introspection failed, using legacy", "error", err)
	} else {
		t = PreferredConversationType(advertised)
	}
	c.session.storeConversationType(t)
	slog.DebugContext(ctx, "negotiated conversation type", "type", t)
	return t
}

func (c *Client) advertisedConversationTypes(ctx context.Context) ([]string, error) {
	data, err := c.tp.Send(ctx, queryConversationTypes, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Type struct {
			EnumValues []struct {
				Name string `json:"name"`
			} `json:"enumValues"`
		} `json:"__type"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode enum values: %w", err)
	}
	names := make([]string, 0, len(payload.Type.EnumValues))
	for _, v := range payload.Type.EnumValues {
		names = append(names, v.Name)
	}
	return names, nil
}

// DispatchResult is the outcome of one successful dispatch.
type DispatchResult struct {
	RequestID string
	ThreadID  string
}

// Dispatch submits an assembled [Submission]. On success the session records
// the request id and adopts a returned thread id if it had none; on error no
// session state changes. A dispatch that yields no request id fails with
// [ErrMissingRequestID].
//
// Dispatch is not retried automatically; a failed dispatch is the caller's
// to retry.
func (c *Client) Dispatch(ctx context.Context, sub Submission) (*DispatchResult, error) {
	data, err := c.tp.Send(ctx, sub.Query, sub.Variables)
	if err != nil {
		return nil, err
	}

	var payload struct {
		AiAction struct {
			RequestID string   `json:"requestId"`
			ThreadID  string   `json:"threadId"`
			Errors    []string `json:"errors"`
		} `json:"aiAction"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode aiAction: %w", err)
	}
	if len(payload.AiAction.Errors) > 0 {
		return nil, &ProtocolError{Messages: payload.AiAction.Errors}
	}
	if payload.AiAction.RequestID == "" {
		return nil, ErrMissingRequestID
	}

	result := &DispatchResult{
		RequestID: payload.AiAction.RequestID,
		ThreadID:  payload.AiAction.ThreadID,
	}

	c.session.RecordRequestID(result.RequestID)
	if result.ThreadID != "" {
		if !c.session.AdoptThreadID(result.ThreadID) && result.ThreadID != c.session.ThreadID() {
			// The server answered with a different thread than the session's
			// established one. Reconciliation is undefined; keep ours.
			slog.WarnContext(ctx, "dispatch returned mismatched thread id",
				"session_thread_id", c.session.ThreadID(),
				"returned_thread_id", result.ThreadID,
			)
		}
	}

	slog.DebugContext(ctx, "dispatched chat message",
		"request_id", result.RequestID,
		"thread_id", result.ThreadID,
		"correlation_id", sub.CorrelationID,
	)
	return result, nil
}

// Ask runs the full pipeline for one user message: negotiate, build the
// tier-appropriate submission, dispatch, and resolve. Dispatch failures are
// returned as errors; a response that never arrives within the retry budget
// is a [Resolution] in [StateTimedOut], not an error.
func (c *Client) Ask(ctx context.Context, message string) (*Resolution, error) {
	caps := c.Capabilities(ctx)
	convType := c.ConversationType(ctx)

	sub := BuildSubmission(caps, convType, c.origin, c.session, message)
	dispatched, err := c.Dispatch(ctx, sub)
	if err != nil {
		return nil, err
	}

	return c.resolve(ctx, dispatched.RequestID)
}

// Reset ends the current conversation. With no thread established it is a
// no-op success: nothing is dispatched. Otherwise the reserved control
// message goes through the normal submit/resolve path, and any outcome short
// of a dispatch failure (resolved or timed out) clears the session's thread
// id and request history.
func (c *Client) Reset(ctx context.Context) error {
	if c.session.ThreadID() == "" {
		return nil
	}

	if _, err := c.Ask(ctx, ResetMessage); err != nil {
		return fmt.Errorf("reset dispatch: %w", err)
	}

	c.session.Reset()
	slog.DebugContext(ctx, "conversation reset")
	return nil
}
