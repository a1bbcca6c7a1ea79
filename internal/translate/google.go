// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/marovi/papertrans/internal/httputil"
	"github.com/marovi/papertrans/pkg/types"
)

// googleEndpoint is the unauthenticated Google translate web endpoint.
// Declared as a var so tests can substitute an httptest server.
var googleEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleProvider translates through the Google translate web endpoint.
// No API key is required; quotas and throttling are Google's side of the
// contract.
type GoogleProvider struct {
	Client     *http.Client
	SourceLang string
}

// NewGoogleProvider builds a provider from shared HTTP settings. An empty
// source language defaults to "en".
func NewGoogleProvider(cfg types.TranslationConfig) *GoogleProvider {
	src := cfg.SourceLang
	if src == "" {
		src = "en"
	}
	return &GoogleProvider{
		Client:     httputil.NewClient(cfg.HTTPConfig),
		SourceLang: src,
	}
}

// Name returns "google".
func (g *GoogleProvider) Name() string { return "google" }

// Translate sends one segment to the translate endpoint and concatenates
// the translated sentence fragments of the response.
func (g *GoogleProvider) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if text == "" {
		return "", nil
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", g.SourceLang)
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate endpoint returned HTTP %d", resp.StatusCode)
	}

	// The response is a nested JSON array; element [0] lists sentence
	// fragments, each fragment's element [0] is the translated text.
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("parsing translate response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	var fragments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &fragments); err != nil {
		return "", fmt.Errorf("parsing translate fragments: %w", err)
	}

	var out string
	for _, frag := range fragments {
		if len(frag) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(frag[0], &s); err != nil {
			continue
		}
		out += s
	}
	if out == "" {
		return "", fmt.Errorf("translate response carried no text")
	}
	return out, nil
}
