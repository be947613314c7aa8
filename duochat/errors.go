// Copyright (c) The duochat authors. All rights reserved.

package duochat

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrTransport indicates a connection, timeout, or non-success HTTP
	// status while talking to the server.
	ErrTransport = errors.New("transport error")

	// ErrProtocol indicates the server answered but returned a GraphQL
	// errors list instead of usable data.
	ErrProtocol = errors.New("protocol error")

	// ErrMissingRequestID indicates a dispatch that the server accepted
	// without returning a correlation id. The response can never be
	// resolved, so the dispatch is treated as failed.
	ErrMissingRequestID = errors.New("dispatch returned no request id")
)

// TransportError provides context for HTTP-level failures.
// Use errors.As to extract it from a wrapped error chain.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrTransport
}

// ProtocolError carries the messages of a GraphQL errors list.
type ProtocolError struct {
	Messages []string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + strings.Join(e.Messages, "; ")
}

func (e *ProtocolError) Unwrap() error { return ErrProtocol }
