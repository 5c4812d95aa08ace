package wrapper

import (
	"context"
	"fmt"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
)

// Document is an open PDF that fields are detected on and written into
type Document interface {
	PageCount() int
	// Page returns the zero-based page with its native text layout
	Page(index int) (*Page, error)
	// Render rasterizes the zero-based page to PNG at dpi
	Render(ctx context.Context, index, dpi int) ([]byte, error)
	// AddWidget attaches a form field widget to the zero-based page
	AddWidget(index int, w Widget) error
	// Save writes the document, with compaction, to path
	Save(path string) error
	Close() error
}

// WidgetKind is the AcroForm field type of a widget
type WidgetKind string

const (
	WidgetText     WidgetKind = "text"
	WidgetCheckbox WidgetKind = "checkbox"
)

// Widget is a form field to attach. Rect is in page space: origin at the
// top-left of the visible page box, y growing downward.
type Widget struct {
	Name  string
	Kind  WidgetKind
	Rect  geometry.Rect
	Flags int
}

// LibraryType names the backend behind a document operation
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
	LibraryPdftoppm   LibraryType = "pdftoppm"
)

// Error types for wrapper operations
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrDocumentClosed = &WrapperError{Op: "document", Err: fmt.Errorf("document is closed")}
	ErrInvalidPage    = &WrapperError{Op: "page", Err: fmt.Errorf("invalid page number")}
	ErrInvalidWidget  = &WrapperError{Op: "widget", Err: fmt.Errorf("invalid widget")}
	ErrIncompleteSave = &WrapperError{Op: "save", Err: fmt.Errorf("saved document is missing fields")}
)
