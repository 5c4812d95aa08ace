package fields

import (
	"context"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
	"github.com/a3tai/pdf-acroform/internal/pdf/layout"
)

const (
	letterWidth  = 612.0
	letterHeight = 792.0
	glyphW       = 5.0
	glyphH       = 10.0
)

// fakePage is a letter-sized page whose text is laid out one 5x10 glyph per
// rune, a line per entry
type fakePage struct {
	index  int
	layout *layout.PageTextLayout
}

type textLine struct {
	text string
	x    float64
	top  float64
}

func newFakePage(index int, lines ...textLine) *fakePage {
	var glyphs []layout.Glyph
	for _, l := range lines {
		x := l.x
		for _, r := range l.text {
			glyphs = append(glyphs, layout.Glyph{
				Text: string(r),
				Rect: geometry.NewRect(x, l.top, x+glyphW, l.top+glyphH),
				Font: "Helv",
				Size: glyphH,
			})
			x += glyphW
		}
	}
	return &fakePage{index: index, layout: layout.Build(glyphs)}
}

func (p *fakePage) Index() int                         { return p.index }
func (p *fakePage) Size() geometry.Size                { return geometry.Size{Width: letterWidth, Height: letterHeight} }
func (p *fakePage) TextLayout() *layout.PageTextLayout { return p.layout }
func (p *fakePage) SearchFor(needle string) []geometry.Rect {
	return p.layout.Search(needle)
}

// fakePositions serves fixed OCR positions and counts calls
type fakePositions struct {
	positions []TextPosition
	err       error
	calls     int
}

func (f *fakePositions) Positions(_ context.Context, _ int) ([]TextPosition, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.positions, nil
}

func pos(text string, x0, y0, x1, y1 float64) TextPosition {
	return TextPosition{Text: text, Rect: geometry.NewRect(x0, y0, x1, y1), Confidence: 0.9}
}

func checkbox(x0, y0, x1, y1 float64) Descriptor {
	return Descriptor{Kind: KindCheckbox, Rect: geometry.NewRect(x0, y0, x1, y1)}
}

func textField(x0, y0, x1, y1 float64) Descriptor {
	return Descriptor{Kind: KindText, Rect: geometry.NewRect(x0, y0, x1, y1)}
}
