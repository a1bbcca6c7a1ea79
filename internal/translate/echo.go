// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import "context"

// Echo is a deterministic pass-through provider: it returns the source
// text unchanged. It exists so the pipeline can run end to end without
// network access.
type Echo struct{}

// Translate returns text as-is.
func (Echo) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

// Name returns "echo".
func (Echo) Name() string { return "echo" }
