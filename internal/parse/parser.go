// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse extracts ordered text blocks and images from a PDF tuned
// to one paper template. Text extraction and positions come from
// ledongthuc/pdf; images and file validation from pdfcpu. Layout
// heuristics (columns, headings, captions) are data-driven TemplateRules.
package parse

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/marovi/papertrans/pkg/types"
)

// letterPageWidth is the fallback page width in points when the content
// itself does not reveal one (US letter, the NeurIPS page size).
const letterPageWidth = 612.0

// ParseError reports an unreadable, invalid, or text-free PDF.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("parsing %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extractor parses PDFs according to one set of template rules. An
// Extractor holds no per-document state and is reusable sequentially.
type Extractor struct {
	rules *TemplateRules
}

// NewExtractor creates an Extractor. A nil rules argument selects the
// built-in NeurIPS rules.
func NewExtractor(rules *TemplateRules) *Extractor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Rules returns the template rules the extractor was built with.
func (x *Extractor) Rules() *TemplateRules { return x.rules }

// Extract parses the PDF at pdfPath into a Document: text blocks in
// reading order with gapless sequential ordinals, plus extracted images.
// Template mismatch degrades to plain paragraph blocks; only an
// unreadable or invalid file, or one with no extractable text at all,
// returns a ParseError.
func (x *Extractor) Extract(pdfPath string) (*types.Document, error) {
	info, err := os.Stat(pdfPath)
	if err != nil {
		return nil, &ParseError{Path: pdfPath, Reason: "cannot access file", Err: err}
	}
	if info.IsDir() {
		return nil, &ParseError{Path: pdfPath, Reason: "path is a directory", Err: nil}
	}

	if err := api.ValidateFile(pdfPath, nil); err != nil {
		return nil, &ParseError{Path: pdfPath, Reason: "not a valid PDF", Err: err}
	}

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, &ParseError{Path: pdfPath, Reason: "cannot open PDF", Err: err}
	}
	defer f.Close()

	pageCount := r.NumPage()
	blocks := x.extractBlocks(r)
	if len(blocks) == 0 {
		return nil, &ParseError{Path: pdfPath, Reason: "no extractable text (image-only PDF?)", Err: errors.New("empty text layer")}
	}

	title := classifyBlocks(blocks, x.rules)
	for i := range blocks {
		blocks[i].Ordinal = i
	}

	// Image extraction is best-effort: a page pdfcpu cannot decode loses
	// its figures, not the whole document.
	images := extractImages(pdfPath, pageCount)

	return &types.Document{
		SourcePath: pdfPath,
		PageCount:  pageCount,
		Title:      title,
		Blocks:     blocks,
		Images:     images,
	}, nil
}

// line is one visual text line on a page, assigned to a column.
type line struct {
	page     int
	col      int
	x, y     float64
	maxX     float64
	fontSize float64
	font     string
	text     string
}

// extractBlocks walks all pages and assembles text blocks in reading
// order: page by page, left column before right, top to bottom.
func (x *Extractor) extractBlocks(r *pdf.Reader) []types.TextBlock {
	var blocks []types.TextBlock
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		if page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue // degrade: skip unreadable pages
		}

		lines := x.collectLines(pageNum, rows)
		blocks = append(blocks, mergeLines(lines, x.rules)...)
	}
	return blocks
}

// collectLines converts extracted rows into per-column lines. A row that
// spans both columns of a two-column page is split at the column boundary.
func (x *Extractor) collectLines(pageNum int, rows pdf.Rows) []line {
	// The split point scales with the widest content seen, so narrow
	// scans and odd media boxes do not shift columns.
	pageWidth := letterPageWidth
	for _, row := range rows {
		for _, t := range row.Content {
			if t.X > pageWidth {
				pageWidth = t.X
			}
		}
	}
	splitX := pageWidth * x.rules.ColumnSplit

	var lines []line
	for _, row := range rows {
		if len(row.Content) == 0 {
			continue
		}

		// One builder per column; a fragment belongs to the right column
		// only when it starts past the boundary, so full-width lines
		// (title, abstract) stay in the left column.
		parts := make([]line, 2)
		started := [2]bool{}
		var sizeSum [2]float64
		var sizeN [2]int

		for _, t := range row.Content {
			if t.S == "" || nonPrintable(t.S) {
				continue
			}
			col := 0
			if x.rules.Columns == 2 && t.X >= splitX {
				col = 1
			}
			p := &parts[col]
			if !started[col] {
				p.page = pageNum
				p.col = col
				p.x = t.X
				p.maxX = t.X
				p.y = t.Y
				p.font = t.Font
				started[col] = true
			}
			if t.X < p.x {
				p.x = t.X
			}
			if t.X > p.maxX {
				p.maxX = t.X
			}
			p.text += t.S
			sizeSum[col] += t.FontSize
			sizeN[col]++
		}

		for col := 0; col < 2; col++ {
			if !started[col] {
				continue
			}
			p := parts[col]
			p.text = strings.TrimSpace(p.text)
			if p.text == "" || nonPrintable(p.text) {
				continue
			}
			p.fontSize = sizeSum[col] / float64(sizeN[col])
			if p.fontSize <= 0 {
				p.fontSize = 10
			}
			lines = append(lines, p)
		}
	}

	sortLines(lines)
	return lines
}

// sortLines orders lines column-major within a page: left column top to
// bottom, then right column. PDF origin is bottom-left, so top to bottom
// is descending Y.
func sortLines(lines []line) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].col != lines[j].col {
			return lines[i].col < lines[j].col
		}
		return lines[i].y > lines[j].y
	})
}

// mergeLines groups consecutive lines of one column into blocks. A new
// block starts at a column change, a vertical gap larger than
// LineGapScale font sizes, a font size jump, or a line that opens a
// heading or caption.
func mergeLines(lines []line, rules *TemplateRules) []types.TextBlock {
	var blocks []types.TextBlock
	var cur *types.TextBlock
	var prev line

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(cur.Text)
		if cur.Text != "" && !looksLikeTableDebris(cur.Text) {
			blocks = append(blocks, *cur)
		}
		cur = nil
	}

	for _, ln := range lines {
		_, isHeading := rules.HeadingLevel(ln.text)
		startsNew := cur == nil ||
			ln.col != prev.col ||
			prev.y-ln.y > rules.LineGapScale*ln.fontSize ||
			abs(ln.fontSize-prev.fontSize) > 1.5 ||
			isHeading ||
			rules.IsCaption(ln.text)

		if startsNew {
			flush()
			cur = &types.TextBlock{
				Page:     ln.page,
				Box:      types.BoundingBox{X: ln.x, Y: ln.y, Width: ln.maxX - ln.x, Height: ln.fontSize},
				FontSize: ln.fontSize,
				Bold:     isBoldFont(ln.font),
				Text:     ln.text,
			}
		} else {
			// De-hyphenate wrapped lines the way the source text reads.
			if strings.HasSuffix(cur.Text, "-") {
				cur.Text = strings.TrimSuffix(cur.Text, "-") + ln.text
			} else {
				cur.Text += " " + ln.text
			}
			cur.Box.Height = cur.Box.Y + cur.Box.Height - ln.y
			cur.Box.Y = ln.y
			if ln.x < cur.Box.X {
				cur.Box.X = ln.x
			}
			if ln.maxX-cur.Box.X > cur.Box.Width {
				cur.Box.Width = ln.maxX - cur.Box.X
			}
		}
		prev = ln
	}
	flush()
	return blocks
}

// classifyBlocks assigns a Kind to every block and returns the detected
// title, or "" when no block stands out enough (best-effort policy:
// degrade, do not abort).
func classifyBlocks(blocks []types.TextBlock, rules *TemplateRules) string {
	body := medianFontSize(blocks)
	title := ""

	for i := range blocks {
		b := &blocks[i]
		switch {
		case title == "" && b.Page == 1 && b.FontSize >= rules.TitleFontScale*body:
			b.Kind = types.BlockTitle
			title = b.Text
		case rules.IsCaption(b.Text):
			b.Kind = types.BlockCaption
		default:
			if level, ok := rules.HeadingLevel(b.Text); ok && (b.Bold || b.FontSize > body) {
				b.Kind = types.BlockHeading
				b.Level = level
			} else {
				b.Kind = types.BlockParagraph
			}
		}
	}
	return title
}

func medianFontSize(blocks []types.TextBlock) float64 {
	if len(blocks) == 0 {
		return 10
	}
	sizes := make([]float64, len(blocks))
	for i, b := range blocks {
		sizes[i] = b.FontSize
	}
	sort.Float64s(sizes)
	return sizes[len(sizes)/2]
}

// nonPrintable reports whether more than a quarter of the text is control
// or replacement characters, which marks decoded operator garbage.
func nonPrintable(s string) bool {
	if s == "" {
		return false
	}
	bad, total := 0, 0
	for _, r := range s {
		total++
		if r == unicode.ReplacementChar || (!unicode.IsPrint(r) && !unicode.IsSpace(r)) {
			bad++
		}
	}
	return bad*4 > total
}

// looksLikeTableDebris flags blocks that are mostly digits, the residue of
// tables and axis labels that should not be translated or rendered.
func looksLikeTableDebris(s string) bool {
	digits, total := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '%' {
			digits++
		}
	}
	if total == 0 {
		return true
	}
	// Short all-numeric blocks are page numbers or stray cells.
	if total <= 4 && digits == total {
		return true
	}
	return total > 10 && float64(digits)/float64(total) > 0.6
}

func isBoldFont(font string) bool {
	return strings.Contains(strings.ToLower(font), "bold")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
