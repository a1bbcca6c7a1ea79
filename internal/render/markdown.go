// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render assembles translated blocks and mapped images into
// Markdown output: one node per block in reading order, image embeds
// adjacent to their captions, image binaries written as sibling files.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marovi/papertrans/pkg/types"
)

// NodeKind discriminates rendered nodes.
type NodeKind string

const (
	NodeHeading   NodeKind = "heading"
	NodeParagraph NodeKind = "paragraph"
	NodeImage     NodeKind = "image"
)

// Node is one rendered element of the output document.
type Node struct {
	Kind NodeKind

	// Level is the heading depth for NodeHeading.
	Level int

	// Text is the heading or paragraph text, or the alt text for images.
	Text string

	// Path is the relative image link target for NodeImage.
	Path string
}

// RenderError reports a failure writing output files.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Frontmatter is the YAML header prepended to rendered Markdown files.
type Frontmatter struct {
	SourcePDF  string
	TargetLang string
	Provider   string
}

// BuildNodes walks the document in reading order and produces the node
// sequence. When translated is true, block output text is the translated
// text (falling back to source for blocks the provider left empty);
// otherwise the source text is used, which yields the untranslated
// companion document.
//
// A caption block that maps an image collapses into that image's embed
// node, with the caption as alt text. Uncaptioned images are emitted
// right after their anchor block. The node order is a total order
// consistent with block ordinals: translation never reorders content.
func BuildNodes(doc *types.Document, m types.ImageMap, imageDirRel string, translated bool) []Node {
	text := func(b types.TextBlock) string {
		if translated {
			return b.Output()
		}
		return b.Text
	}

	var nodes []Node
	emitImage := func(p types.Placement, alt string) {
		img := doc.Images[p.Image]
		nodes = append(nodes, Node{
			Kind: NodeImage,
			Text: alt,
			Path: filepath.ToSlash(filepath.Join(imageDirRel, img.FileName())),
		})
	}

	// Images on pages without any text anchor before the first block.
	for _, p := range m.AnchoredAt(-1) {
		emitImage(p, "")
	}

	for _, b := range doc.Blocks {
		switch b.Kind {
		case types.BlockTitle:
			nodes = append(nodes, Node{Kind: NodeHeading, Level: 1, Text: text(b)})
		case types.BlockHeading:
			level := b.Level
			if level < 2 {
				level = 2
			}
			nodes = append(nodes, Node{Kind: NodeHeading, Level: level, Text: text(b)})
		case types.BlockCaption:
			if p, ok := m.ForCaption(b.Ordinal); ok {
				emitImage(p, text(b))
			} else {
				nodes = append(nodes, Node{Kind: NodeParagraph, Text: text(b)})
			}
		default:
			nodes = append(nodes, Node{Kind: NodeParagraph, Text: text(b)})
		}

		for _, p := range m.AnchoredAt(b.Ordinal) {
			emitImage(p, "")
		}
	}
	return nodes
}

// Render serializes nodes to Markdown text with a YAML frontmatter header.
func Render(nodes []Node, fm Frontmatter) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "source_pdf: %q\n", fm.SourcePDF)
	fmt.Fprintf(&b, "target_lang: %q\n", fm.TargetLang)
	fmt.Fprintf(&b, "provider: %q\n", fm.Provider)
	fmt.Fprintf(&b, "rendered_at: %q\n", time.Now().UTC().Format(time.RFC3339))
	b.WriteString("---\n\n")

	for _, n := range nodes {
		switch n.Kind {
		case NodeHeading:
			fmt.Fprintf(&b, "%s %s\n\n", strings.Repeat("#", n.Level), n.Text)
		case NodeImage:
			fmt.Fprintf(&b, "![%s](%s)\n\n", n.Text, n.Path)
		default:
			fmt.Fprintf(&b, "%s\n\n", n.Text)
		}
	}
	return b.String()
}

// WriteImages writes every embedded image's binary data into dir, named
// deterministically by page and extraction order so Markdown links
// resolve across runs.
func WriteImages(dir string, images []types.ImageAsset) error {
	if len(images) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &RenderError{Path: dir, Err: err}
	}
	for _, img := range images {
		path := filepath.Join(dir, img.FileName())
		if err := os.WriteFile(path, img.Data, 0o644); err != nil {
			return &RenderError{Path: path, Err: err}
		}
	}
	return nil
}
