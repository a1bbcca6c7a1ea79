// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared across pipeline stages:
// parsed documents, text blocks, image assets, and stage configuration.
package types

import "fmt"

// BoundingBox is an axis-aligned rectangle in PDF user-space points.
// The PDF coordinate system has its origin at the bottom-left of the
// page, so larger Y means higher on the page.
type BoundingBox struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// IsZero reports whether the box carries no geometry. Extraction backends
// that cannot report positions (pdfcpu file extraction) leave the box zero.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// Top returns the Y coordinate of the upper edge.
func (b BoundingBox) Top() float64 { return b.Y + b.Height }

// Bottom returns the Y coordinate of the lower edge.
func (b BoundingBox) Bottom() float64 { return b.Y }

// BlockKind classifies a text block within the template's layout.
type BlockKind string

const (
	BlockTitle     BlockKind = "title"
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockCaption   BlockKind = "caption"
)

// TextBlock is a contiguous span of text extracted from one page.
type TextBlock struct {
	// Page is the 1-based page number the block was extracted from.
	Page int `json:"page" yaml:"page"`

	// Ordinal is the block's position in reading order. Ordinals are
	// assigned sequentially after sorting, so across a parsed document
	// they form a strictly increasing sequence with no gaps.
	Ordinal int `json:"ordinal" yaml:"ordinal"`

	// Box is the block's bounding rectangle on the page.
	Box BoundingBox `json:"box" yaml:"box"`

	// Kind is the block classification (title, heading, paragraph, caption).
	Kind BlockKind `json:"kind" yaml:"kind"`

	// Level is the heading depth for BlockHeading blocks, derived from the
	// section number: "1 Introduction" is level 2, "2.1 Setup" is level 3.
	// Zero for non-heading blocks.
	Level int `json:"level,omitempty" yaml:"level,omitempty"`

	// FontSize is the average font size of the block's text in points.
	FontSize float64 `json:"font_size" yaml:"font_size"`

	// Bold reports whether the dominant font is a bold face.
	Bold bool `json:"bold,omitempty" yaml:"bold,omitempty"`

	// Text is the extracted source text.
	Text string `json:"text" yaml:"text"`

	// Translated holds the translated text. Empty until the translation
	// stage has run.
	Translated string `json:"translated,omitempty" yaml:"translated,omitempty"`
}

// Output returns the translated text when present, falling back to the
// source text for blocks the provider returned empty.
func (b TextBlock) Output() string {
	if b.Translated != "" {
		return b.Translated
	}
	return b.Text
}

// ImageAsset is a figure extracted from the PDF.
type ImageAsset struct {
	// Page is the 1-based page number the image appears on.
	Page int `json:"page" yaml:"page"`

	// Index is the extraction order of the image within its page.
	Index int `json:"index" yaml:"index"`

	// Box is the image's placement rectangle. Zero when the extraction
	// backend does not report geometry.
	Box BoundingBox `json:"box" yaml:"box"`

	// Format is the image file format ("png", "jpg", ...).
	Format string `json:"format" yaml:"format"`

	// Data is the raw image bytes.
	Data []byte `json:"-" yaml:"-"`
}

// FileName returns the deterministic output file name for the asset,
// derived from page and extraction order so Markdown links stay stable
// across runs.
func (a ImageAsset) FileName() string {
	return fmt.Sprintf("image_%d_%d.%s", a.Page, a.Index, a.Format)
}

// Document is a parsed PDF: ordered text blocks plus extracted images.
// It is read-only after parsing; later stages derive new values from it.
type Document struct {
	// SourcePath is the path of the input PDF.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// PageCount is the number of pages in the PDF.
	PageCount int `json:"page_count" yaml:"page_count"`

	// Title is the detected paper title, empty when the title block could
	// not be identified (the parser degrades rather than aborts).
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Blocks lists the text blocks in reading order.
	Blocks []TextBlock `json:"blocks" yaml:"blocks"`

	// Images lists extracted images ordered by page, then extraction order.
	Images []ImageAsset `json:"images" yaml:"images"`
}

// Placement records where one image is emitted in the rendered output.
type Placement struct {
	// Image indexes into Document.Images.
	Image int `json:"image" yaml:"image"`

	// Caption is the ordinal of the caption block the image was matched
	// to, or -1 for an uncaptioned image.
	Caption int `json:"caption" yaml:"caption"`

	// Anchor is the ordinal of the block after which the image embed is
	// emitted. For captioned images this equals Caption. -1 means the
	// image is emitted before any text (page with no blocks).
	Anchor int `json:"anchor" yaml:"anchor"`
}

// Captioned reports whether the placement carries a caption reference.
func (p Placement) Captioned() bool { return p.Caption >= 0 }

// ImageMap associates every image of a document with its rendering
// position. It is a derived, non-owning index: built once after parsing,
// read-only afterward, and always covers each image exactly once.
type ImageMap []Placement

// ForCaption returns the placement mapped to the caption block with the
// given ordinal, if any.
func (m ImageMap) ForCaption(ordinal int) (Placement, bool) {
	for _, p := range m {
		if p.Caption == ordinal {
			return p, true
		}
	}
	return Placement{}, false
}

// AnchoredAt returns the uncaptioned placements emitted after the block
// with the given ordinal, in image order.
func (m ImageMap) AnchoredAt(ordinal int) []Placement {
	var out []Placement
	for _, p := range m {
		if !p.Captioned() && p.Anchor == ordinal {
			out = append(out, p)
		}
	}
	return out
}
