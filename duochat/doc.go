// Copyright (c) The duochat authors. All rights reserved.

// Package duochat implements a client for GitLab Duo Chat over the GitLab
// GraphQL API. It covers protocol-version negotiation, capability gating,
// conversation-type negotiation, and the submit/poll/resolve lifecycle of a
// single chat request.
//
// # Quick Start
//
// Create a Transport (e.g., from the graphql package) and build a Client:
//
//	tp := graphql.New("https://gitlab.example.com", os.Getenv("GITLAB_TOKEN"))
//	client := duochat.NewClient(tp)
//
//	res, err := client.Ask(ctx, "How do I create a merge request?")
//	if err != nil {
//	    // dispatch failed
//	}
//	if res.State == duochat.StateResolved {
//	    fmt.Println(res.Message.Content)
//	}
//
// # Architecture
//
// The package is organized around these key abstractions:
//
//   - [Transport]: the generic query/mutation submission primitive
//     (implemented by the graphql package).
//   - [Version] and [Capabilities]: the server's semantic version and the
//     protocol features it enables, discovered once per session.
//   - [Session]: cross-request state, holding the conversation thread id,
//     the audit trail of issued request ids, and the cached negotiation
//     results.
//   - [Client]: composes the above; [Client.Ask] runs the full
//     build/dispatch/resolve pipeline for one message.
//   - [Resolution]: the terminal outcome of resolving a request, either the
//     assistant's answer or a timeout after the retry budget is spent.
//
// # Resolution
//
// Duo Chat answers asynchronously: the aiAction mutation returns a request
// id, and the answer appears later under one of several read paths. The
// client polls the primary read path (aiMessages by request id) at a fixed
// interval, and partway through the retry budget tries an ordered list of
// fallback lookups for deployments where the primary path is stale or
// unsupported. Exhausting the budget yields [StateTimedOut], not an error.
package duochat
