// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"net/http"
	"time"

	"github.com/marovi/papertrans/pkg/types"
)

// DefaultTimeout bounds requests when the config leaves Timeout zero.
// The translation call is the pipeline's only network suspension point,
// so every request gets a deadline.
const DefaultTimeout = 30 * time.Second

// NewClient builds an http.Client from shared HTTP settings: request
// timeout and, when configured, a fixed User-Agent header on every
// request.
func NewClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{Timeout: timeout}
	if cfg.UserAgent != "" {
		client.Transport = &userAgentTransport{
			agent: cfg.UserAgent,
			next:  http.DefaultTransport,
		}
	}
	return client
}

// userAgentTransport stamps the configured User-Agent on requests that
// do not already carry one.
type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.agent)
	}
	return t.next.RoundTrip(req)
}
