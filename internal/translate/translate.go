// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package translate populates the translated text of parsed blocks through
// a pluggable Provider. Providers cover a networked Google endpoint, an
// OpenAI-compatible chat endpoint, and a deterministic echo backend for
// offline tests; a SQLite-backed cache can wrap any of them.
package translate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/marovi/papertrans/pkg/types"
)

// Provider is the translation capability: one method, one segment at a
// time. Network, auth, and rate limits are the implementation's concern.
type Provider interface {
	// Translate returns text translated into the target language.
	Translate(ctx context.Context, text, targetLang string) (string, error)

	// Name identifies the provider for logs and cache keys.
	Name() string
}

// TranslationError reports a provider failure. Translation is
// all-or-nothing: the first failing segment aborts the run, because the
// renderer assumes every block carries translated text.
type TranslationError struct {
	Provider string
	Err      error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation via %s failed: %v", e.Provider, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// ValidateTarget checks that code is a well-formed BCP 47 language tag.
func ValidateTarget(code string) error {
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("invalid target language %q: %w", code, err)
	}
	return nil
}

// Blocks returns a copy of blocks with Translated populated on every
// block. Count, ordinals, and all non-text attributes are preserved
// exactly; only the translated-text attribute changes. Each provider call
// is bounded by timeout (zero means no per-call deadline). Any provider
// error aborts the whole run with a TranslationError.
func Blocks(ctx context.Context, p Provider, blocks []types.TextBlock, targetLang string, timeout time.Duration) ([]types.TextBlock, error) {
	if err := ValidateTarget(targetLang); err != nil {
		return nil, &TranslationError{Provider: p.Name(), Err: err}
	}

	out := make([]types.TextBlock, len(blocks))
	copy(out, blocks)

	for i := range out {
		translated, err := translateOne(ctx, p, out[i].Text, targetLang, timeout)
		if err != nil {
			return nil, &TranslationError{Provider: p.Name(), Err: err}
		}
		// A provider returning empty text keeps the source text, the way
		// untranslatable section titles are handled.
		if translated == "" {
			translated = out[i].Text
		}
		out[i].Translated = translated
	}
	return out, nil
}

func translateOne(ctx context.Context, p Provider, text, targetLang string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return p.Translate(ctx, text, targetLang)
}
