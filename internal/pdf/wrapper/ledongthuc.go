package wrapper

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
	"github.com/a3tai/pdf-acroform/internal/pdf/layout"
)

// Glyph boxes are derived from the baseline, which is all ledongthuc/pdf
// reports: the box extends this fraction of the font size above and below it.
const (
	glyphAscent  = 0.8
	glyphDescent = 0.2
)

// LedongthucText reads positioned glyphs with ledongthuc/pdf
type LedongthucText struct {
	reader *pdf.Reader
	file   *os.File
	closed bool
}

// OpenLedongthucText opens the file for text extraction
func OpenLedongthucText(path string) (*LedongthucText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}
	return &LedongthucText{reader: reader, file: f}, nil
}

// PageCount returns the number of pages in the document
func (l *LedongthucText) PageCount() int {
	if l.closed {
		return 0
	}
	return l.reader.NumPage()
}

// Glyphs returns the glyphs of the 1-based page in page space. box is the
// visible page box in PDF user space, used to flip and shift coordinates.
// Fonts ledongthuc/pdf cannot decode surface as an error, not a panic.
func (l *LedongthucText) Glyphs(pageNum int, box PageBox) (glyphs []layout.Glyph, err error) {
	if l.closed {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "extract_text", Err: ErrDocumentClosed.Err}
	}
	if pageNum < 1 || pageNum > l.reader.NumPage() {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "extract_text",
			Err:     fmt.Errorf("invalid page number %d (document has %d pages)", pageNum, l.reader.NumPage()),
		}
	}

	page := l.reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = &WrapperError{
				Library: LibraryLedongthuc,
				Op:      "extract_text",
				Err:     fmt.Errorf("page %d content could not be decoded: %v", pageNum, r),
			}
		}
	}()

	content := page.Content()
	glyphs = make([]layout.Glyph, 0, len(content.Text))
	for _, text := range content.Text {
		if g, ok := glyphFromText(text, box); ok {
			glyphs = append(glyphs, g)
		}
	}
	return glyphs, nil
}

// Close closes the underlying file
func (l *LedongthucText) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// glyphFromText converts one ledongthuc text run from PDF user space
// (baseline origin, y up) to a page-space glyph box
func glyphFromText(text pdf.Text, box PageBox) (layout.Glyph, bool) {
	if text.S == "" {
		return layout.Glyph{}, false
	}
	size := text.FontSize
	if size <= 0 {
		size = 12.0 // Default height
	}
	width := text.W
	if width <= 0 {
		width = size * 0.5
	}

	x0 := text.X - box.LLX
	top := box.URY - (text.Y + size*glyphAscent)
	bottom := box.URY - (text.Y - size*glyphDescent)

	return layout.Glyph{
		Text: text.S,
		Rect: geometry.NewRect(x0, top, x0+width, bottom),
		Font: text.Font,
		Size: size,
	}, true
}
