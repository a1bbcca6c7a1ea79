// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marovi/papertrans/pkg/types"
)

// fakeProvider returns a fixed mapping or an error, and records calls.
type fakeProvider struct {
	prefix string
	err    error
	calls  int
}

func (f *fakeProvider) Translate(_ context.Context, text, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.prefix + text, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func sampleBlocks() []types.TextBlock {
	return []types.TextBlock{
		{Page: 1, Ordinal: 0, Kind: types.BlockHeading, Level: 2, FontSize: 12, Text: "1 Introduction"},
		{Page: 1, Ordinal: 1, Kind: types.BlockParagraph, FontSize: 10, Text: "We study examples."},
		{Page: 2, Ordinal: 2, Kind: types.BlockCaption, FontSize: 9, Text: "Figure 1: Example"},
	}
}

func TestBlocks_PreservesEverythingButTranslation(t *testing.T) {
	in := sampleBlocks()
	p := &fakeProvider{prefix: "es:"}

	out, err := Blocks(context.Background(), p, in, "es", time.Second)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, in[i].Ordinal, out[i].Ordinal)
		assert.Equal(t, in[i].Page, out[i].Page)
		assert.Equal(t, in[i].Kind, out[i].Kind)
		assert.Equal(t, in[i].Level, out[i].Level)
		assert.Equal(t, in[i].FontSize, out[i].FontSize)
		assert.Equal(t, in[i].Text, out[i].Text)
		assert.Equal(t, "es:"+in[i].Text, out[i].Translated)
	}

	// The input slice is untouched.
	for _, b := range in {
		assert.Empty(t, b.Translated)
	}
}

func TestBlocks_ProviderErrorAbortsRun(t *testing.T) {
	p := &fakeProvider{err: errors.New("quota exceeded")}

	out, err := Blocks(context.Background(), p, sampleBlocks(), "es", time.Second)
	require.Error(t, err)
	assert.Nil(t, out)

	var terr *TranslationError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "fake", terr.Provider)
	// Fail-fast: the first failing segment stops the run.
	assert.Equal(t, 1, p.calls)
}

func TestBlocks_EmptyTranslationKeepsSource(t *testing.T) {
	p := &fakeProvider{prefix: ""}
	out, err := Blocks(context.Background(), p, sampleBlocks(), "es", 0)
	require.NoError(t, err)
	for i, b := range out {
		assert.Equal(t, sampleBlocks()[i].Text, b.Translated)
	}
}

func TestBlocks_InvalidTargetLanguage(t *testing.T) {
	p := &fakeProvider{}
	_, err := Blocks(context.Background(), p, sampleBlocks(), "not a lang!", time.Second)
	require.Error(t, err)
	assert.Zero(t, p.calls)
}

func TestBlocks_EmptyInput(t *testing.T) {
	out, err := Blocks(context.Background(), &fakeProvider{}, nil, "es", time.Second)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestValidateTarget(t *testing.T) {
	assert.NoError(t, ValidateTarget("es"))
	assert.NoError(t, ValidateTarget("pt-BR"))
	assert.Error(t, ValidateTarget(""))
	assert.Error(t, ValidateTarget("!!"))
}

func TestEcho(t *testing.T) {
	got, err := Echo{}.Translate(context.Background(), "hello", "es")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, "echo", Echo{}.Name())
}
