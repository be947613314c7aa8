// Copyright (c) The duochat authors. All rights reserved.

package graphql

import (
	"crypto/tls"
	"net/http"
	"time"
)

// clientConfig holds resolved configuration for the GraphQL client.
type clientConfig struct {
	httpClient  *http.Client
	timeout     time.Duration
	headers     map[string]string
	insecureTLS bool
}

// Option configures a GraphQL [Client].
type Option func(*clientConfig)

// WithHTTPClient provides a custom http.Client for requests. When set,
// [WithTimeout] and [WithInsecureTLS] are ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithTimeout sets the per-request timeout. Defaults to 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithHeaders adds custom headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *clientConfig) { c.headers = headers }
}

// WithInsecureTLS disables TLS certificate verification, for instances with
// self-signed certificates. Verification is on by default.
func WithInsecureTLS() Option {
	return func(c *clientConfig) { c.insecureTLS = true }
}

func insecureTransport() *http.Transport {
	tp := http.DefaultTransport.(*http.Transport).Clone()
	tp.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in via WithInsecureTLS
	return tp
}
