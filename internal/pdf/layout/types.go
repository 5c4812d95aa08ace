// Package layout models a page's native text as blocks of lines of spans,
// each span carrying per-glyph geometry so that substrings can be located on
// the page.
package layout

import (
	"strings"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
)

// Glyph is one positioned piece of text, usually a single character
type Glyph struct {
	Text string        `json:"text"`
	Rect geometry.Rect `json:"rect"`
	Font string        `json:"font,omitempty"`
	Size float64       `json:"size,omitempty"`
}

// Span is a run of glyphs sharing font and size on one line
type Span struct {
	Glyphs []Glyph       `json:"glyphs"`
	BBox   geometry.Rect `json:"bbox"`
	Font   string        `json:"font,omitempty"`
	Size   float64       `json:"size,omitempty"`
}

// Line is an ordered sequence of spans sharing a baseline
type Line struct {
	Spans []Span        `json:"spans"`
	BBox  geometry.Rect `json:"bbox"`
}

// Block groups vertically adjacent lines
type Block struct {
	Lines []Line        `json:"lines"`
	BBox  geometry.Rect `json:"bbox"`
}

// PageTextLayout is a page's native text in reading order
type PageTextLayout struct {
	Blocks []Block `json:"blocks"`
}

// Text returns the span's glyph texts concatenated
func (s Span) Text() string {
	var b strings.Builder
	for _, g := range s.Glyphs {
		b.WriteString(g.Text)
	}
	return b.String()
}

// Text returns the line's span texts concatenated in order
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text())
	}
	return b.String()
}

// Lines returns every line of the layout in reading order
func (p *PageTextLayout) Lines() []Line {
	if p == nil {
		return nil
	}
	var lines []Line
	for _, b := range p.Blocks {
		lines = append(lines, b.Lines...)
	}
	return lines
}

// BlockCount returns the number of text blocks, zero for a nil layout
func (p *PageTextLayout) BlockCount() int {
	if p == nil {
		return 0
	}
	return len(p.Blocks)
}

// Text returns the page text with one line per layout line
func (p *PageTextLayout) Text() string {
	lines := p.Lines()
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text())
	}
	return strings.Join(out, "\n")
}
