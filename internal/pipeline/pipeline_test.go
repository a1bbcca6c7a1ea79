// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marovi/papertrans/internal/parse"
	"github.com/marovi/papertrans/internal/translate"
	"github.com/marovi/papertrans/pkg/types"
)

// fakeExtractor returns a canned document or an error.
type fakeExtractor struct {
	doc *types.Document
	err error
}

func (f *fakeExtractor) Extract(pdfPath string) (*types.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

// failingProvider rejects every segment.
type failingProvider struct{}

func (failingProvider) Translate(context.Context, string, string) (string, error) {
	return "", errors.New("provider unreachable")
}

func (failingProvider) Name() string { return "failing" }

// twoPagePaper is the end-to-end fixture: a heading, a paragraph, and a
// captioned figure on the second page.
func twoPagePaper() *types.Document {
	return &types.Document{
		SourcePath: "paper.pdf",
		PageCount:  2,
		Title:      "A Study of Examples",
		Blocks: []types.TextBlock{
			{Page: 1, Ordinal: 0, Kind: types.BlockHeading, Level: 2, FontSize: 12, Text: "1 Introduction"},
			{Page: 1, Ordinal: 1, Kind: types.BlockParagraph, FontSize: 10, Text: "We study examples."},
			{Page: 2, Ordinal: 2, Kind: types.BlockCaption, FontSize: 9, Text: "Figure 1: Example",
				Box: types.BoundingBox{X: 72, Y: 380, Width: 400, Height: 10}},
		},
		Images: []types.ImageAsset{
			{Page: 2, Index: 0, Format: "png", Data: []byte("fake image bytes"),
				Box: types.BoundingBox{X: 72, Y: 410, Width: 300, Height: 150}},
		},
	}
}

func testConfig(outDir string) types.PipelineConfig {
	return types.PipelineConfig{
		Translation: types.TranslationConfig{
			HTTPConfig: types.HTTPConfig{Timeout: time.Second},
			Provider:   types.ProviderEcho,
			TargetLang: "es",
			SourceLang: "en",
		},
		Output: types.OutputConfig{Dir: outDir, KeepSource: true},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	var log bytes.Buffer
	conv := New(&fakeExtractor{doc: twoPagePaper()}, translate.Echo{}, testConfig(outDir),
		parse.DefaultRules().CaptionWindow, &log)

	result, err := conv.Run(context.Background(), "paper.pdf")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Blocks)
	assert.Equal(t, 1, result.Images)

	data, err := os.ReadFile(filepath.Join(outDir, "paper_es.md"))
	require.NoError(t, err)
	md := string(data)

	assert.Contains(t, md, "## 1 Introduction")
	assert.Contains(t, md, "We study examples.")
	assert.Contains(t, md, "![Figure 1: Example](paper_images/image_2_0.png)")

	// The embed follows the paragraph in reading order.
	assert.Less(t, strings.Index(md, "We study examples."), strings.Index(md, "![Figure 1"))

	// Companion file and image binary are in place.
	_, err = os.Stat(filepath.Join(outDir, "paper_en.md"))
	require.NoError(t, err)
	img, err := os.ReadFile(filepath.Join(outDir, "paper_images", "image_2_0.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake image bytes"), img)

	assert.Contains(t, log.String(), "translating: 3 block(s) to es via echo")
}

func TestRun_UncaptionedImageKept(t *testing.T) {
	doc := twoPagePaper()
	// Push the caption out of the window so the figure goes uncaptioned.
	doc.Blocks[2].Box.Y = 50
	doc.Blocks[2].Kind = types.BlockParagraph

	outDir := filepath.Join(t.TempDir(), "out")
	conv := New(&fakeExtractor{doc: doc}, translate.Echo{}, testConfig(outDir),
		parse.DefaultRules().CaptionWindow, nil)

	_, err := conv.Run(context.Background(), "paper.pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "paper_es.md"))
	require.NoError(t, err)
	// Uncaptioned images are still embedded, anchored after the last
	// block of their page.
	assert.Contains(t, string(data), "![](paper_images/image_2_0.png)")
}

func TestRun_TranslationFailureLeavesNoOutput(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	conv := New(&fakeExtractor{doc: twoPagePaper()}, failingProvider{}, testConfig(outDir),
		parse.DefaultRules().CaptionWindow, nil)

	_, err := conv.Run(context.Background(), "paper.pdf")
	require.Error(t, err)

	var serr *StageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StageTranslate, serr.Stage)

	var terr *translate.TranslationError
	assert.ErrorAs(t, err, &terr)

	// Fail-fast means zero output files.
	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_ParseFailure(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	conv := New(&fakeExtractor{err: errors.New("bad pdf")}, translate.Echo{}, testConfig(outDir),
		parse.DefaultRules().CaptionWindow, nil)

	_, err := conv.Run(context.Background(), "paper.pdf")
	require.Error(t, err)

	var serr *StageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StageParse, serr.Stage)
}

func TestRun_SequentialReuse(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	conv := New(&fakeExtractor{doc: twoPagePaper()}, translate.Echo{}, testConfig(outDir),
		parse.DefaultRules().CaptionWindow, nil)

	_, err := conv.Run(context.Background(), "paper.pdf")
	require.NoError(t, err)

	// A second run replaces the previous output cleanly, including the
	// image directory.
	result, err := conv.Run(context.Background(), "paper.pdf")
	require.NoError(t, err)
	_, err = os.Stat(result.MarkdownPath)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "paper_images", "image_2_0.png"))
	require.NoError(t, err)
}

func TestRun_NoCompanionWhenDisabled(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	cfg := testConfig(outDir)
	cfg.Output.KeepSource = false

	conv := New(&fakeExtractor{doc: twoPagePaper()}, translate.Echo{}, cfg,
		parse.DefaultRules().CaptionWindow, nil)

	result, err := conv.Run(context.Background(), "paper.pdf")
	require.NoError(t, err)
	assert.Empty(t, result.SourceMarkdownPath)

	_, err = os.Stat(filepath.Join(outDir, "paper_en.md"))
	assert.True(t, os.IsNotExist(err))
}
