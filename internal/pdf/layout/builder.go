package layout

import (
	"math"
	"strings"
	"unicode"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
)

// Grouping tolerances, expressed as multiples of the glyph font size
const (
	baselineTolerance = 0.3 // baseline drift still counted as the same line
	spaceGapFactor    = 0.2 // horizontal gap that reads as a word break
	lineGapFactor     = 3.0 // horizontal gap that starts a new line
	backtrackFactor   = 1.0 // leftward jump that starts a new line
	blockGapFactor    = 1.0 // vertical gap between lines that starts a new block

	defaultGlyphSize = 10.0
)

// Builder accumulates positioned glyphs in content-stream order and groups
// them into spans, lines and blocks
type Builder struct {
	blocks []Block
	line   *Line
	span   *Span
}

// NewBuilder creates an empty layout builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build groups glyphs into a layout in a single pass
func Build(glyphs []Glyph) *PageTextLayout {
	b := NewBuilder()
	for _, g := range glyphs {
		b.Add(g)
	}
	return b.Layout()
}

// Add appends one glyph. Glyphs with no text or an empty rectangle are ignored.
func (b *Builder) Add(g Glyph) {
	if g.Text == "" || g.Rect.Empty() {
		return
	}
	size := glyphSize(g)

	if b.span == nil || !b.continuesLine(g, size) {
		b.closeLine()
		b.line = &Line{BBox: g.Rect}
		b.span = &Span{Font: g.Font, Size: size, BBox: g.Rect}
		b.appendGlyph(g)
		return
	}

	gap := g.Rect.X0 - b.line.BBox.X1
	needSpace := gap > size*spaceGapFactor && !b.endsWithSpace() && !isSpace(g.Text)

	if g.Font != b.span.Font || math.Abs(size-b.span.Size) > 0.01 {
		b.closeSpan()
		b.span = &Span{Font: g.Font, Size: size, BBox: g.Rect}
	}
	if needSpace {
		b.appendGlyph(Glyph{
			Text: " ",
			Rect: geometry.NewRect(b.line.BBox.X1, g.Rect.Y0, g.Rect.X0, g.Rect.Y1),
			Font: g.Font,
			Size: size,
		})
	}
	b.appendGlyph(g)
}

// Layout finalizes pending spans and lines and returns the result.
// The builder can keep accepting glyphs afterwards.
func (b *Builder) Layout() *PageTextLayout {
	b.closeLine()
	out := &PageTextLayout{Blocks: make([]Block, len(b.blocks))}
	copy(out.Blocks, b.blocks)
	return out
}

func (b *Builder) continuesLine(g Glyph, size float64) bool {
	if b.line == nil {
		return false
	}
	last := b.lastGlyph()
	if math.Abs(g.Rect.Y1-last.Rect.Y1) > size*baselineTolerance {
		return false
	}
	gap := g.Rect.X0 - b.line.BBox.X1
	return gap <= size*lineGapFactor && gap >= -size*backtrackFactor
}

func (b *Builder) appendGlyph(g Glyph) {
	b.span.Glyphs = append(b.span.Glyphs, g)
	b.span.BBox = b.span.BBox.Union(g.Rect)
	b.line.BBox = b.line.BBox.Union(g.Rect)
}

func (b *Builder) closeSpan() {
	if b.span == nil || b.line == nil {
		return
	}
	if len(b.span.Glyphs) > 0 {
		b.line.Spans = append(b.line.Spans, *b.span)
	}
	b.span = nil
}

func (b *Builder) closeLine() {
	b.closeSpan()
	if b.line == nil {
		return
	}
	line := *b.line
	b.line = nil
	if len(line.Spans) == 0 || strings.TrimSpace(line.Text()) == "" {
		return
	}

	if n := len(b.blocks); n > 0 && belongsToBlock(b.blocks[n-1], line) {
		blk := &b.blocks[n-1]
		blk.Lines = append(blk.Lines, line)
		blk.BBox = blk.BBox.Union(line.BBox)
		return
	}
	b.blocks = append(b.blocks, Block{Lines: []Line{line}, BBox: line.BBox})
}

func (b *Builder) lastGlyph() Glyph {
	return b.span.Glyphs[len(b.span.Glyphs)-1]
}

func (b *Builder) endsWithSpace() bool {
	return isSpace(b.lastGlyph().Text)
}

func belongsToBlock(blk Block, line Line) bool {
	last := blk.Lines[len(blk.Lines)-1]
	size := last.BBox.Height()
	gap := line.BBox.Y0 - last.BBox.Y1
	if gap > size*blockGapFactor || gap < -size {
		return false
	}
	// require horizontal overlap with the block
	return line.BBox.X0 < blk.BBox.X1 && blk.BBox.X0 < line.BBox.X1
}

func glyphSize(g Glyph) float64 {
	if g.Size > 0 {
		return g.Size
	}
	if h := g.Rect.Height(); h > 0 {
		return h
	}
	return defaultGlyphSize
}

func isSpace(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
