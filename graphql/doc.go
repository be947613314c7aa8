// Copyright (c) The duochat authors. All rights reserved.

// Package graphql provides the HTTP implementation of [duochat.Transport]
// against a GitLab GraphQL endpoint.
//
// Create a client with [New] and pass it to [duochat.NewClient]:
//
//	tp := graphql.New("https://gitlab.example.com", token)
//	client := duochat.NewClient(tp)
package graphql
