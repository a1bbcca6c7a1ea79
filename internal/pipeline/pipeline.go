// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the conversion stages: parse, image
// mapping, translation, and Markdown rendering. The Converter runs the
// stages in that fixed order, fails fast on the first stage error, and
// leaves the output directory untouched unless every stage succeeded.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/marovi/papertrans/internal/imagemap"
	"github.com/marovi/papertrans/internal/render"
	"github.com/marovi/papertrans/internal/translate"
	"github.com/marovi/papertrans/pkg/types"
)

// Stage identifies one step of the linear conversion lifecycle
// (Initialized → Parsed → ImagesMapped → Translated → Rendered). There
// are no back-transitions and no retries.
type Stage string

const (
	StageParse     Stage = "parse"
	StageMapImages Stage = "map-images"
	StageTranslate Stage = "translate"
	StageRender    Stage = "render"
)

// StageError is the single terminal failure of a run, naming the stage
// that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Extractor abstracts the parse stage so tests can supply a fake
// instead of a real PDF.
type Extractor interface {
	Extract(pdfPath string) (*types.Document, error)
}

// Result describes a completed conversion.
type Result struct {
	// MarkdownPath is the translated Markdown file.
	MarkdownPath string

	// SourceMarkdownPath is the untranslated companion file, empty when
	// the companion is disabled.
	SourceMarkdownPath string

	// ImageDir is the directory of extracted image files, empty when the
	// document had no images.
	ImageDir string

	// Blocks and Images count what the pipeline processed.
	Blocks int
	Images int
}

// Converter runs the conversion pipeline. All per-document state lives
// inside Run, so one Converter may process documents sequentially.
type Converter struct {
	extractor     Extractor
	provider      translate.Provider
	cfg           types.PipelineConfig
	captionWindow float64
	log           io.Writer
}

// New assembles a Converter. A nil log discards progress output.
func New(extractor Extractor, provider translate.Provider, cfg types.PipelineConfig, captionWindow float64, log io.Writer) *Converter {
	if log == nil {
		log = io.Discard
	}
	return &Converter{
		extractor:     extractor,
		provider:      provider,
		cfg:           cfg,
		captionWindow: captionWindow,
		log:           log,
	}
}

// Run converts one PDF. Each stage's output is the next stage's sole
// input. Any stage failure aborts the run with a StageError and no
// output files; on success the output directory holds the translated
// Markdown, the companion file, and the image subdirectory.
func (c *Converter) Run(ctx context.Context, pdfPath string) (*Result, error) {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))

	fmt.Fprintf(c.log, "parsing:     %s\n", pdfPath)
	doc, err := c.extractor.Extract(pdfPath)
	if err != nil {
		return nil, &StageError{Stage: StageParse, Err: err}
	}

	fmt.Fprintf(c.log, "mapping:     %d image(s) against %d block(s)\n", len(doc.Images), len(doc.Blocks))
	m := imagemap.Build(doc.Blocks, doc.Images, c.captionWindow)

	target := c.cfg.Translation.TargetLang
	fmt.Fprintf(c.log, "translating: %d block(s) to %s via %s\n", len(doc.Blocks), target, c.provider.Name())
	blocks, err := translate.Blocks(ctx, c.provider, doc.Blocks, target, c.cfg.Translation.Timeout)
	if err != nil {
		return nil, &StageError{Stage: StageTranslate, Err: err}
	}

	translated := *doc
	translated.Blocks = blocks

	fmt.Fprintf(c.log, "rendering:   %s\n", c.cfg.Output.Dir)
	result, err := c.renderOutput(&translated, m, base)
	if err != nil {
		return nil, &StageError{Stage: StageRender, Err: err}
	}

	result.Blocks = len(blocks)
	result.Images = len(doc.Images)
	fmt.Fprintf(c.log, "done:        %s\n", result.MarkdownPath)
	return result, nil
}

// renderOutput writes all output into a staging directory next to the
// output directory and moves it into place only when complete, so a
// failed run leaves nothing behind.
func (c *Converter) renderOutput(doc *types.Document, m types.ImageMap, base string) (*Result, error) {
	outDir := filepath.Clean(c.cfg.Output.Dir)
	parent := filepath.Dir(outDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, &render.RenderError{Path: parent, Err: err}
	}

	staging, err := os.MkdirTemp(parent, ".papertrans-")
	if err != nil {
		return nil, &render.RenderError{Path: parent, Err: err}
	}
	defer os.RemoveAll(staging)

	imageDirName := base + "_images"
	if err := render.WriteImages(filepath.Join(staging, imageDirName), doc.Images); err != nil {
		return nil, err
	}

	target := c.cfg.Translation.TargetLang
	source := c.cfg.Translation.SourceLang
	if source == "" {
		source = "en"
	}
	fm := render.Frontmatter{
		SourcePDF:  doc.SourcePath,
		TargetLang: target,
		Provider:   c.provider.Name(),
	}

	translatedName := fmt.Sprintf("%s_%s.md", base, target)
	translatedMD := render.Render(render.BuildNodes(doc, m, imageDirName, true), fm)
	if err := writeFile(filepath.Join(staging, translatedName), translatedMD); err != nil {
		return nil, err
	}

	sourceName := ""
	if c.cfg.Output.KeepSource {
		sourceName = fmt.Sprintf("%s_%s.md", base, source)
		sourceFM := fm
		sourceFM.TargetLang = source
		sourceMD := render.Render(render.BuildNodes(doc, m, imageDirName, false), sourceFM)
		if err := writeFile(filepath.Join(staging, sourceName), sourceMD); err != nil {
			return nil, err
		}
	}

	if err := promote(staging, outDir); err != nil {
		return nil, err
	}

	result := &Result{MarkdownPath: filepath.Join(outDir, translatedName)}
	if sourceName != "" {
		result.SourceMarkdownPath = filepath.Join(outDir, sourceName)
	}
	if len(doc.Images) > 0 {
		result.ImageDir = filepath.Join(outDir, imageDirName)
	}
	return result, nil
}

// promote moves every staged entry into the output directory, replacing
// leftovers from earlier runs. Staging lives on the same filesystem, so
// each move is a rename.
func promote(staging, outDir string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return &render.RenderError{Path: staging, Err: err}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return &render.RenderError{Path: outDir, Err: err}
	}

	var moved []string
	for _, e := range entries {
		dst := filepath.Join(outDir, e.Name())
		if err := os.RemoveAll(dst); err != nil {
			return &render.RenderError{Path: dst, Err: err}
		}
		if err := os.Rename(filepath.Join(staging, e.Name()), dst); err != nil {
			// Roll back so a failed promotion leaves no partial output.
			for _, m := range moved {
				os.RemoveAll(m)
			}
			return &render.RenderError{Path: dst, Err: err}
		}
		moved = append(moved, dst)
	}
	return nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &render.RenderError{Path: path, Err: err}
	}
	return nil
}
