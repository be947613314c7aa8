// Copyright (c) The duochat authors. All rights reserved.

package duochat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// ResolutionState is the terminal state of resolving one request.
type ResolutionState string

const (
	// StatePending means dispatched with no answer observed yet.
	StatePending ResolutionState = "pending"

	// StateResolved means assistant content was obtained.
	StateResolved ResolutionState = "resolved"

	// StateTimedOut means the retry budget was exhausted with no content.
	// This is a defined outcome ("no answer"), not an error.
	StateTimedOut ResolutionState = "timed_out"
)

// Resolution is the outcome of resolving a dispatched request. Message is
// set only in [StateResolved].
type Resolution struct {
	State   ResolutionState
	Message *Message
}

// fallbackStrategy is one alternate read path for recovering a response.
// Strategies return (nil, nil) when they find nothing; their own errors are
// swallowed by the caller so a failing path never aborts the sequence.
type fallbackStrategy struct {
	name string
	run  func(ctx context.Context, requestID, threadID string) (*Message, error)
}

// resolve polls the primary read path for the assistant response, running
// the fallback sequence once at half the attempt budget. The first assistant
// message with non-empty content wins, in attempt order. Per-attempt errors
// are non-terminal; only ctx cancellation and budget exhaustion end the loop
// early.
func (c *Client) resolve(ctx context.Context, requestID string) (*Resolution, error) {
	fallbackAfter := c.maxAttempts / 2

	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		msg, err := c.pollPrimary(ctx, requestID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Treated as an empty result; keep polling.
			slog.DebugContext(ctx, "poll attempt failed",
				"request_id", requestID,
				"attempt", attempt,
				"error", err,
			)
		}
		if msg != nil {
			return &Resolution{State: StateResolved, Message: msg}, nil
		}

		if attempt+1 == fallbackAfter {
			if msg := c.runFallbacks(ctx, requestID); msg != nil {
				return &Resolution{State: StateResolved, Message: msg}, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}

		if attempt+1 == c.maxAttempts {
			break
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(c.pollInterval)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	slog.DebugContext(ctx, "resolution budget exhausted",
		"request_id", requestID,
		"attempts", c.maxAttempts,
	)
	return &Resolution{State: StateTimedOut}, nil
}

// pollPrimary performs one attempt against the primary read path: the
// aiMessages lookup by request id, filtered to the assistant role.
func (c *Client) pollPrimary(ctx context.Context, requestID string) (*Message, error) {
	data, err := c.tp.Send(ctx, queryMessagesByRequestID, map[string]any{
		"requestIds": []string{requestID},
		"roles":      []string{"ASSISTANT"},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		AiMessages struct {
			Nodes []messageNode `json:"nodes"`
		} `json:"aiMessages"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode aiMessages: %w", err)
	}

	for i := range payload.AiMessages.Nodes {
		node := &payload.AiMessages.Nodes[i]
		msg := node.toMessage()
		if msg.Role == RoleAssistant && msg.Content != "" {
			if msg.RequestID != "" && msg.RequestID != requestID {
				continue
			}
			return msg, nil
		}
	}
	return nil, nil
}

// runFallbacks walks the ordered fallback sequence. The first strategy
// returning non-empty assistant content short-circuits the rest; a strategy
// that errors is logged and skipped.
func (c *Client) runFallbacks(ctx context.Context, requestID string) *Message {
	threadID := c.session.ThreadID()
	for _, strategy := range c.fallbackSequence() {
		msg, err := strategy.run(ctx, requestID, threadID)
		if err != nil {
			slog.WarnContext(ctx, "fallback strategy failed",
				"strategy", strategy.name,
				"request_id", requestID,
				"error", err,
			)
			continue
		}
		if msg != nil && msg.Role == RoleAssistant && msg.Content != "" {
			slog.DebugContext(ctx, "fallback strategy recovered response",
				"strategy", strategy.name,
				"request_id", requestID,
			)
			return msg
		}
	}
	return nil
}

// fallbackSequence returns the alternate read paths in their fixed order:
// direct message lookup, newest assistant message in the thread, then the
// thread's last-message projection.
func (c *Client) fallbackSequence() []fallbackStrategy {
	return []fallbackStrategy{
		{name: "message_by_id", run: c.lookupMessageByID},
		{name: "newest_thread_message", run: c.newestThreadMessage},
		{name: "thread_last_message", run: c.threadLastMessage},
	}
}

// lookupMessageByID reads the message directly by its id (the request id
// doubles as the message id on this read path).
func (c *Client) lookupMessageByID(ctx context.Context, requestID, _ string) (*Message, error) {
	data, err := c.tp.Send(ctx, queryMessageByID, map[string]any{
		"messageId": requestID,
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		AiMessage *messageNode `json:"aiMessage"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode aiMessage: %w", err)
	}
	if payload.AiMessage == nil {
		return nil, nil
	}
	return payload.AiMessage.toMessage(), nil
}

// newestThreadMessage lists the thread's messages, keeps the
// assistant-authored ones, and returns the newest by timestamp.
func (c *Client) newestThreadMessage(ctx context.Context, _, threadID string) (*Message, error) {
	if threadID == "" {
		return nil, nil
	}
	data, err := c.tp.Send(ctx, queryThreadMessages, map[string]any{
		"threadId": threadID,
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		AiConversationThread struct {
			Messages struct {
				Nodes []messageNode `json:"nodes"`
			} `json:"messages"`
		} `json:"aiConversationThread"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode thread messages: %w", err)
	}

	var newest *Message
	for i := range payload.AiConversationThread.Messages.Nodes {
		msg := payload.AiConversationThread.Messages.Nodes[i].toMessage()
		if msg.Role != RoleAssistant || msg.Content == "" {
			continue
		}
		if newest == nil || msg.newerThan(newest) {
			newest = msg
		}
	}
	return newest, nil
}

// threadLastMessage reads the conversation's last-message projection,
// accepted only when assistant-authored.
func (c *Client) threadLastMessage(ctx context.Context, _, threadID string) (*Message, error) {
	if threadID == "" {
		return nil, nil
	}
	data, err := c.tp.Send(ctx, queryThreadLastMessage, map[string]any{
		"threadId": threadID,
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		AiConversationThread struct {
			LastMessage *messageNode `json:"lastMessage"`
		} `json:"aiConversationThread"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode last message: %w", err)
	}
	if payload.AiConversationThread.LastMessage == nil {
		return nil, nil
	}
	msg := payload.AiConversationThread.LastMessage.toMessage()
	if msg.Role != RoleAssistant {
		return nil, nil
	}
	return msg, nil
}

// messageNode is the wire shape of a message across the read paths.
type messageNode struct {
	RequestID string   `json:"requestId"`
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	Timestamp string   `json:"timestamp"`
	Errors    []string `json:"errors,omitempty"`
}

func (n *messageNode) toMessage() *Message {
	raw := map[string]any{
		"requestId": n.RequestID,
		"role":      n.Role,
		"content":   n.Content,
		"timestamp": n.Timestamp,
	}
	if len(n.Errors) > 0 {
		raw["errors"] = n.Errors
	}
	return &Message{
		RequestID: n.RequestID,
		Role:      NormalizeRole(n.Role),
		Content:   n.Content,
		Timestamp: n.Timestamp,
		Raw:       raw,
	}
}
