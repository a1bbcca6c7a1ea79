// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

// TemplateRules describes the layout conventions of one paper template as
// data rather than control flow, so a new template is a YAML file instead
// of a code change. The zero value is not usable; start from DefaultRules
// or LoadRules.
type TemplateRules struct {
	// Name identifies the template (e.g. "neurips").
	Name string `yaml:"name"`

	// Columns is the number of body text columns (1 or 2).
	Columns int `yaml:"columns"`

	// ColumnSplit is the column boundary as a fraction of the page width.
	ColumnSplit float64 `yaml:"column_split"`

	// HeadingPattern matches section headings. The first capture group must
	// be the section number ("2.1"), from which the heading level derives.
	HeadingPattern string `yaml:"heading_pattern"`

	// CaptionPattern matches figure and table captions.
	CaptionPattern string `yaml:"caption_pattern"`

	// TitleFontScale is the minimum font size of the title block relative
	// to the body font size.
	TitleFontScale float64 `yaml:"title_font_scale"`

	// CaptionWindow is the maximum vertical distance in points between an
	// image's lower edge and a caption below it.
	CaptionWindow float64 `yaml:"caption_window"`

	// LineGapScale is the maximum vertical gap between lines of one block,
	// as a multiple of the font size.
	LineGapScale float64 `yaml:"line_gap_scale"`

	heading *regexp.Regexp
	caption *regexp.Regexp
}

// DefaultRules returns the built-in rules for the NeurIPS template:
// two-column body, numbered section headings, "Figure N" / "Table N"
// captions.
func DefaultRules() *TemplateRules {
	r := &TemplateRules{
		Name:           "neurips",
		Columns:        2,
		ColumnSplit:    0.5,
		HeadingPattern: `^(\d+(?:\.\d+)*)\.?\s+\S`,
		CaptionPattern: `^(?:Figure|Table)\s+\d+`,
		TitleFontScale: 1.35,
		CaptionWindow:  150,
		LineGapScale:   1.6,
	}
	if err := r.Compile(); err != nil {
		panic(err) // built-in patterns are tested
	}
	return r
}

// LoadRules reads a template rules YAML file. Fields absent from the file
// keep their DefaultRules values.
func LoadRules(path string) (*TemplateRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template rules %s: %w", path, err)
	}
	r := DefaultRules()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing template rules %s: %w", path, err)
	}
	if err := r.Compile(); err != nil {
		return nil, fmt.Errorf("template rules %s: %w", path, err)
	}
	return r, nil
}

// Compile validates the rule patterns and prepares them for matching.
func (r *TemplateRules) Compile() error {
	h, err := regexp.Compile(r.HeadingPattern)
	if err != nil {
		return fmt.Errorf("heading pattern: %w", err)
	}
	c, err := regexp.Compile(r.CaptionPattern)
	if err != nil {
		return fmt.Errorf("caption pattern: %w", err)
	}
	if r.Columns < 1 || r.Columns > 2 {
		return fmt.Errorf("columns must be 1 or 2, got %d", r.Columns)
	}
	if r.ColumnSplit <= 0 || r.ColumnSplit >= 1 {
		return fmt.Errorf("column_split must be in (0, 1), got %g", r.ColumnSplit)
	}
	r.heading = h
	r.caption = c
	return nil
}

// HeadingLevel reports whether text opens a section heading and, if so, the
// Markdown heading level it maps to: "1 Introduction" is level 2, "2.1 Setup"
// level 3, one level deeper per subsection component.
func (r *TemplateRules) HeadingLevel(text string) (int, bool) {
	m := r.heading.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return strings.Count(m[1], ".") + 2, true
}

// IsCaption reports whether text looks like a figure or table caption.
func (r *TemplateRules) IsCaption(text string) bool {
	return r.caption.MatchString(text)
}
