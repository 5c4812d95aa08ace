package convert

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-acroform/internal/ocr"
	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
	"github.com/a3tai/pdf-acroform/internal/pdf/layout"
	"github.com/a3tai/pdf-acroform/internal/pdf/wrapper"
)

var letter = geometry.Size{Width: 612, Height: 792}

// renderW x renderH is a half-scale render of a letter page
const (
	renderW = 306
	renderH = 396
)

type textLine struct {
	text string
	x    float64
	top  float64
}

// nativePage lays text out one 5x10 glyph per rune
func nativePage(index int, lines ...textLine) *wrapper.Page {
	var glyphs []layout.Glyph
	for _, l := range lines {
		x := l.x
		for _, r := range l.text {
			glyphs = append(glyphs, layout.Glyph{
				Text: string(r),
				Rect: geometry.NewRect(x, l.top, x+5, l.top+10),
				Font: "Helv",
				Size: 10,
			})
			x += 5
		}
	}
	return wrapper.NewPage(index, letter, layout.Build(glyphs))
}

func scannedPage(index int) *wrapper.Page {
	return wrapper.NewPage(index, letter, layout.Build(nil))
}

func blankPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// fakeDoc is an in-memory wrapper.Document
type fakeDoc struct {
	pages        []*wrapper.Page
	png          []byte
	renderErr    error
	saveErr      error
	textWarnings []error

	widgets map[int][]wrapper.Widget
	renders int
	closed  bool
}

func newFakeDoc(pages ...*wrapper.Page) *fakeDoc {
	return &fakeDoc{pages: pages, widgets: make(map[int][]wrapper.Widget)}
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) Page(index int) (*wrapper.Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, wrapper.ErrInvalidPage
	}
	return d.pages[index], nil
}

func (d *fakeDoc) Render(_ context.Context, _, _ int) ([]byte, error) {
	d.renders++
	if d.renderErr != nil {
		return nil, d.renderErr
	}
	return d.png, nil
}

func (d *fakeDoc) AddWidget(index int, w wrapper.Widget) error {
	d.widgets[index] = append(d.widgets[index], w)
	return nil
}

// Save leaves a partial file behind when it fails
func (d *fakeDoc) Save(path string) error {
	if d.saveErr != nil {
		_ = os.WriteFile(path, []byte("%PDF-partial"), 0o600)
		return d.saveErr
	}
	return os.WriteFile(path, []byte("%PDF-1.7 fake"), 0o600)
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

func (d *fakeDoc) TextWarnings() []error { return d.textWarnings }

func (d *fakeDoc) opener() Opener {
	return func(string) (wrapper.Document, error) { return d, nil }
}

// fakeRemote serves fixed markup and counts calls
type fakeRemote struct {
	pages []ocr.PageMarkup
	err   error
	calls int
}

func (r *fakeRemote) ProcessDocument(_ context.Context, _ string) ([]ocr.PageMarkup, error) {
	r.calls++
	return r.pages, r.err
}

// fakeRecognizer returns fixed phrases in render pixels
type fakeRecognizer struct {
	recs   []ocr.Recognition
	err    error
	calls  int
	closed bool
}

func (r *fakeRecognizer) Recognize(_ context.Context, _ []byte) ([]ocr.Recognition, error) {
	r.calls++
	return r.recs, r.err
}

func (r *fakeRecognizer) Close() error {
	r.closed = true
	return nil
}

// engineFactory hands out rec and counts how often an engine was started
type engineFactory struct {
	rec     *fakeRecognizer
	started int
}

func (f *engineFactory) new() (ocr.Recognizer, error) {
	f.started++
	return f.rec, nil
}

func phrase(text string, x0, y0, x1, y1 float64) ocr.Recognition {
	return ocr.Recognition{
		Quad:       [4][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}},
		Text:       text,
		Confidence: 0.9,
	}
}

var errBoom = errors.New("boom")
