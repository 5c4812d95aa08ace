package fields

import (
	"context"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
	"github.com/a3tai/pdf-acroform/internal/pdf/layout"
)

// Kind is the widget type a detected field turns into
type Kind string

const (
	KindCheckbox Kind = "checkbox"
	KindText     Kind = "text"
)

// Candidate is a typed field hypothesis parsed from text, not yet placed
type Candidate struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
}

// Descriptor is a placed field ready to become a widget
type Descriptor struct {
	Kind Kind          `json:"kind"`
	Rect geometry.Rect `json:"rect"`
}

// TextPosition is a piece of text measured by the local OCR engine, in page
// space. Confidence is kept for logging only.
type TextPosition struct {
	Text       string        `json:"text"`
	Rect       geometry.Rect `json:"rect"`
	Confidence float64       `json:"confidence"`
}

// UsedPositions tracks indices into a page's position list that a match has
// already consumed
type UsedPositions map[int]struct{}

// Add marks the position index as consumed
func (u UsedPositions) Add(i int) {
	u[i] = struct{}{}
}

// Has reports whether the position index has been consumed
func (u UsedPositions) Has(i int) bool {
	_, ok := u[i]
	return ok
}

// Page is the read-only view of one document page the detector needs
type Page interface {
	// Index is the zero-based page number
	Index() int
	Size() geometry.Size
	TextLayout() *layout.PageTextLayout
	// SearchFor returns the bounding box of every occurrence of needle
	SearchFor(needle string) []geometry.Rect
}

// PositionSource measures text positions on a page through optical
// recognition
type PositionSource interface {
	Positions(ctx context.Context, pageIndex int) ([]TextPosition, error)
}
