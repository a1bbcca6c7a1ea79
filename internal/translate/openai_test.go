// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marovi/papertrans/pkg/types"
)

func newOpenAITest(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewOpenAIProvider(types.TranslationConfig{
		HTTPConfig:    types.HTTPConfig{Timeout: 2 * time.Second},
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: ts.URL,
		OpenAIModel:   "test-model",
	})
}

func TestOpenAITranslate(t *testing.T) {
	p := newOpenAITest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[0].Content, "es")
		assert.Equal(t, "Hello world", req.Messages[1].Content)

		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Hola mundo"}}]}`)
	})

	got, err := p.Translate(context.Background(), "Hello world", "es")
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", got)
}

func TestOpenAITranslate_APIError(t *testing.T) {
	p := newOpenAITest(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limit exceeded"}}`)
	})

	_, err := p.Translate(context.Background(), "Hello", "es")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestOpenAITranslate_MissingKey(t *testing.T) {
	p := NewOpenAIProvider(types.TranslationConfig{})
	_, err := p.Translate(context.Background(), "Hello", "es")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestOpenAITranslate_NoChoices(t *testing.T) {
	p := newOpenAITest(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	_, err := p.Translate(context.Background(), "Hello", "es")
	require.Error(t, err)
}

func TestNewOpenAIProvider_Defaults(t *testing.T) {
	p := NewOpenAIProvider(types.TranslationConfig{OpenAIAPIKey: "k"})
	assert.Equal(t, defaultOpenAIBaseURL, p.BaseURL)
	assert.Equal(t, defaultOpenAIModel, p.Model)
}
