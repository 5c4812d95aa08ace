package wrapper

import (
	"context"
	"fmt"
	"os"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
	"github.com/a3tai/pdf-acroform/internal/pdf/layout"
)

// PDFDocument implements Document on top of pdfcpu, ledongthuc/pdf and
// pdftoppm
type PDFDocument struct {
	path     string
	form     *PDFCPUForm
	text     *LedongthucText
	renderer *PdftoppmRenderer
	pages    map[int]*Page
	warnings []error
	existing int // fields the input already had
	widgets  int
	closed   bool
}

var _ Document = (*PDFDocument)(nil)

// Path returns the file the document was opened from
func (d *PDFDocument) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document
func (d *PDFDocument) PageCount() int {
	if d.closed {
		return 0
	}
	return d.form.PageCount()
}

// Page returns the zero-based page. Text that cannot be decoded leaves the
// page without native text and is reported through TextWarnings.
func (d *PDFDocument) Page(index int) (*Page, error) {
	if d.closed {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "get_page", Err: ErrDocumentClosed.Err}
	}
	if err := d.checkIndex("get_page", index); err != nil {
		return nil, err
	}
	if p, ok := d.pages[index]; ok {
		return p, nil
	}

	box, err := d.form.PageBox(index + 1)
	if err != nil {
		return nil, err
	}

	var glyphs []layout.Glyph
	if d.text != nil && index < d.text.PageCount() {
		glyphs, err = d.text.Glyphs(index+1, box)
		if err != nil {
			d.warnings = append(d.warnings, err)
			glyphs = nil
		}
	}

	p := NewPage(index, geometry.Size{Width: box.Width(), Height: box.Height()}, layout.Build(glyphs))
	d.pages[index] = p
	return p, nil
}

// Render rasterizes the zero-based page to PNG
func (d *PDFDocument) Render(ctx context.Context, index, dpi int) ([]byte, error) {
	if d.closed {
		return nil, &WrapperError{Library: LibraryPdftoppm, Op: "render", Err: ErrDocumentClosed.Err}
	}
	if err := d.checkIndex("render", index); err != nil {
		return nil, err
	}
	return d.renderer.Render(ctx, index+1, dpi)
}

// AddWidget attaches a field widget to the zero-based page
func (d *PDFDocument) AddWidget(index int, w Widget) error {
	if d.closed {
		return &WrapperError{Library: LibraryPDFCPU, Op: "add_widget", Err: ErrDocumentClosed.Err}
	}
	if err := d.checkIndex("add_widget", index); err != nil {
		return err
	}
	box, err := d.form.PageBox(index + 1)
	if err != nil {
		return err
	}
	if err := d.form.AddWidget(index+1, box, w); err != nil {
		return err
	}
	d.widgets++
	return nil
}

// TextWarnings returns the native text failures seen so far
func (d *PDFDocument) TextWarnings() []error {
	return d.warnings
}

// Save writes the compacted document to path and reads it back to check
// that every field made it
func (d *PDFDocument) Save(path string) error {
	if d.closed {
		return &WrapperError{Library: LibraryPDFCPU, Op: "save", Err: ErrDocumentClosed.Err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &WrapperError{Library: LibraryPDFCPU, Op: "save", Err: fmt.Errorf("failed to create output: %w", err)}
	}
	if err := d.form.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &WrapperError{Library: LibraryPDFCPU, Op: "save", Err: fmt.Errorf("failed to close output: %w", err)}
	}
	return d.verifySaved(path)
}

func (d *PDFDocument) verifySaved(path string) error {
	saved, err := OpenPDFCPUForm(path)
	if err != nil {
		return err
	}
	defer saved.Close()

	got, err := saved.FieldCount()
	if err != nil {
		return &WrapperError{Library: LibraryPDFCPU, Op: "save", Err: fmt.Errorf("failed to read saved fields: %w", err)}
	}
	if want := d.existing + d.widgets; got != want {
		return &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "save",
			Err:     fmt.Errorf("%w: %d of %d", ErrIncompleteSave.Err, got, want),
		}
	}
	return nil
}

// Close releases every backend
func (d *PDFDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	var firstErr error
	if d.text != nil {
		firstErr = d.text.Close()
	}
	if err := d.form.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (d *PDFDocument) checkIndex(op string, index int) error {
	if index < 0 || index >= d.form.PageCount() {
		return &WrapperError{
			Library: LibraryPDFCPU,
			Op:      op,
			Err:     fmt.Errorf("%w: index %d (document has %d pages)", ErrInvalidPage.Err, index, d.form.PageCount()),
		}
	}
	return nil
}
