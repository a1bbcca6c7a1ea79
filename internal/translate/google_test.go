// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marovi/papertrans/pkg/types"
)

func newGoogleTest(t *testing.T, handler http.HandlerFunc) *GoogleProvider {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := googleEndpoint
	googleEndpoint = ts.URL
	t.Cleanup(func() { googleEndpoint = old })

	return NewGoogleProvider(types.TranslationConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 2 * time.Second, UserAgent: "papertrans-test"},
	})
}

func TestGoogleTranslate(t *testing.T) {
	p := newGoogleTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gtx", r.URL.Query().Get("client"))
		assert.Equal(t, "en", r.URL.Query().Get("sl"))
		assert.Equal(t, "es", r.URL.Query().Get("tl"))
		assert.Equal(t, "Hello world. How are you?", r.URL.Query().Get("q"))
		// Two sentence fragments, the way the endpoint splits sentences.
		fmt.Fprint(w, `[[["Hola mundo. ","Hello world. ",null,null],["¿Cómo estás?","How are you?",null,null]],null,"en"]`)
	})

	got, err := p.Translate(context.Background(), "Hello world. How are you?", "es")
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo. ¿Cómo estás?", got)
}

func TestGoogleTranslate_HTTPError(t *testing.T) {
	p := newGoogleTest(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := p.Translate(context.Background(), "Hello", "es")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestGoogleTranslate_MalformedResponse(t *testing.T) {
	p := newGoogleTest(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"unexpected": true}`)
	})

	_, err := p.Translate(context.Background(), "Hello", "es")
	require.Error(t, err)
}

func TestGoogleTranslate_EmptyText(t *testing.T) {
	p := newGoogleTest(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for empty text")
	})

	got, err := p.Translate(context.Background(), "", "es")
	require.NoError(t, err)
	assert.Empty(t, got)
}
