package fields

import (
	"context"
	"fmt"
	"strings"

	"github.com/a3tai/pdf-acroform/internal/logging"
	"github.com/a3tai/pdf-acroform/internal/ocr"
)

// Detector infers form fields on one page at a time. Pages with native text
// are read directly; pages without it are matched against remote markup and
// locally measured text positions.
type Detector struct {
	positions PositionSource
	logger    *logging.Logger
}

// NewDetector creates a detector. positions may be nil when no page needs
// optical recognition; such pages then yield no fields.
func NewDetector(positions PositionSource, logger *logging.Logger) *Detector {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Detector{positions: positions, logger: logger}
}

// DetectFields returns the deduplicated fields of page. remote is the whole
// document's markup, or nil when the remote service was not consulted or
// failed. Only local recognition errors are returned.
func (d *Detector) DetectFields(ctx context.Context, page Page, remote []ocr.PageMarkup) ([]Descriptor, error) {
	if page.TextLayout().BlockCount() > 0 {
		fields := d.detectNative(page)
		d.logger.Debug("native page", "page", page.Index()+1, "fields", len(fields))
		return Deduplicate(fields), nil
	}

	if remote == nil {
		return nil, nil
	}
	markup, ok := ocr.FindPage(remote, page.Index())
	if !ok || strings.TrimSpace(markup.Markdown) == "" {
		d.logger.Debug("no markup for page", "page", page.Index()+1)
		return nil, nil
	}

	fields, err := d.detectOCR(ctx, page, markup.Markdown)
	if err != nil {
		return nil, err
	}
	return Deduplicate(fields), nil
}

func (d *Detector) detectNative(page Page) []Descriptor {
	fields := FindCheckboxes(page)
	if underscores := FindUnderscoreFields(page); len(underscores) > 0 {
		return append(fields, underscores...)
	}
	return append(fields, FindLabelFields(page)...)
}

func (d *Detector) detectOCR(ctx context.Context, page Page, markdown string) ([]Descriptor, error) {
	if d.positions == nil {
		return nil, nil
	}
	positions, err := d.positions.Positions(ctx, page.Index())
	if err != nil {
		return nil, fmt.Errorf("measuring text on page %d: %w", page.Index()+1, err)
	}

	candidates := ExtractCandidates(markdown)
	fields := MatchCandidates(candidates, positions, page.Size().Width)
	d.logger.Debug("ocr page",
		"page", page.Index()+1,
		"positions", len(positions),
		"candidates", len(candidates),
		"fields", len(fields))
	return fields, nil
}
