// Copyright (c) The duochat authors. All rights reserved.

package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// The OpenAI-compatible surface: a stateless request/response handler with
// a scripted streaming simulator. It shares nothing with the GraphQL side
// beyond the reply function.

const mockModelID = "mock-gpt-model"

// chatCompletionRequest is the accepted request body. Content may arrive as
// a string or as a list of content parts; parts are flattened to text.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// text flattens the message content: a plain string passes through, a list
// of {"text": ...} parts is concatenated, anything else renders as-is.
func (m *chatMessage) text() string {
	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		return s
	}
	var parts []map[string]any
	if err := json.Unmarshal(m.Content, &parts); err == nil {
		var b strings.Builder
		for _, p := range parts {
			if t, ok := p["text"].(string); ok {
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.WriteString(t)
			}
		}
		return b.String()
	}
	return string(m.Content)
}

var validCompletionRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
	"tool":      true,
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": []map[string]any{{
			"id":         mockModelID,
			"object":     "model",
			"created":    0,
			"owned_by":   "mock",
			"permission": []any{},
		}},
	})
}

func (s *Server) handleCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCompletionError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeCompletionError(w, http.StatusUnprocessableEntity, "messages must not be empty")
		return
	}
	for i, m := range req.Messages {
		if !validCompletionRoles[m.Role] {
			writeCompletionError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("invalid role %q at message %d", m.Role, i))
			return
		}
	}

	last := req.Messages[len(req.Messages)-1]
	if last.Role != "user" {
		writeCompletionError(w, http.StatusBadRequest, "the last message must be from the 'user' role")
		return
	}

	content := s.reply(last.text())
	if req.Stream {
		s.streamCompletion(w, r, content)
		return
	}

	model := req.Model
	if model == "" {
		model = mockModelID
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      "12345",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{{
			"message": map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 12,
			"total_tokens":      22,
		},
	})
}

// streamCompletion plays the response back token by token as server-sent
// events, ending with the [DONE] marker.
func (s *Server) streamCompletion(w http.ResponseWriter, r *http.Request, content string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeCompletionError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	tokens := strings.Split(content, " ")
	for i, token := range tokens {
		chunk := map[string]any{
			"id":      fmt.Sprintf("token-%d", i),
			"object":  "chat.completion.chunk",
			"created": time.Now().Unix(),
			"model":   mockModelID,
			"choices": []map[string]any{{
				"delta": map[string]any{"content": token + " "},
			}},
		}
		b, _ := json.Marshal(chunk)
		fmt.Fprintf(w, "data: %s\n\n", b)
		flusher.Flush()

		select {
		case <-r.Context().Done():
			return
		case <-time.After(s.streamInterval):
		}
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeCompletionError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}
