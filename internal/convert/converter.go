// Package convert turns flat PDF forms into AcroForm documents: it reads
// every page, detects fields and attaches one widget per field.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/pdf-acroform/internal/fields"
	"github.com/a3tai/pdf-acroform/internal/logging"
	"github.com/a3tai/pdf-acroform/internal/ocr"
	pdferrors "github.com/a3tai/pdf-acroform/internal/pdf/errors"
	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
	"github.com/a3tai/pdf-acroform/internal/pdf/wrapper"
)

// DefaultDPI is the resolution pages are rendered at for local OCR
const DefaultDPI = wrapper.DefaultDPI

// Opener opens the document to convert
type Opener func(path string) (wrapper.Document, error)

// Options configures a Converter
type Options struct {
	// Open opens documents; nil uses wrapper.Open with its defaults
	Open Opener
	// Remote reads scanned documents into markdown. When nil, or when it
	// fails, pages without native text get no fields.
	Remote ocr.MarkupService
	// NewRecognizer starts the local OCR engine the first time a page needs it
	NewRecognizer RecognizerFactory
	DPI           int
	Logger        *logging.Logger
}

// Converter runs field detection over whole documents
type Converter struct {
	open          Opener
	remote        ocr.MarkupService
	newRecognizer RecognizerFactory
	dpi           int
	logger        *logging.Logger
}

// New creates a converter
func New(opts Options) *Converter {
	c := &Converter{
		open:          opts.Open,
		remote:        opts.Remote,
		newRecognizer: opts.NewRecognizer,
		dpi:           opts.DPI,
		logger:        opts.Logger,
	}
	if c.open == nil {
		c.open = func(path string) (wrapper.Document, error) {
			doc, err := wrapper.Open(path, wrapper.DefaultConfig())
			if err != nil {
				return nil, err
			}
			return doc, nil
		}
	}
	if c.dpi <= 0 {
		c.dpi = DefaultDPI
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

// Convert detects the fields of every page of inputPath and writes the
// document with one widget per field to outputPath. The output appears only
// once it is complete.
func (c *Converter) Convert(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	if outputPath == "" {
		return nil, errors.New("output path is required")
	}
	return c.run(ctx, inputPath, outputPath, true)
}

// Detect reports the fields Convert would attach, without writing anything
func (c *Converter) Detect(ctx context.Context, inputPath string) (*Result, error) {
	return c.run(ctx, inputPath, "", false)
}

func (c *Converter) run(ctx context.Context, inputPath, outputPath string, write bool) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:      uuid.NewString(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Pages:      []PageResult{},
		Warnings:   pdferrors.NewErrorCollection(inputPath),
	}
	log := c.logger.With("run")
	log.Info("starting", "id", result.RunID, "input", inputPath, "write", write)

	doc, err := c.open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", inputPath, tagged(pdferrors.ErrorTypeDocument, "cannot open document", err))
	}
	defer doc.Close()

	pages := make([]*wrapper.Page, doc.PageCount())
	needsOCR := false
	for i := range pages {
		p, err := doc.Page(i)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", i+1, tagged(pdferrors.ErrorTypeDocument, "cannot read page", err))
		}
		pages[i] = p
		if p.TextLayout().BlockCount() == 0 {
			needsOCR = true
		}
	}
	collectTextWarnings(doc, result.Warnings)

	var markup []ocr.PageMarkup
	if needsOCR {
		markup = c.remoteMarkup(ctx, inputPath, result.Warnings, log)
		result.RemoteOCR = markup != nil
	}

	positions := newPagePositions(doc, c.dpi, c.newRecognizer)
	defer func() {
		if err := positions.Close(); err != nil {
			log.Warn("closing local OCR engine", "error", err)
		}
	}()
	detector := fields.NewDetector(positions, c.logger.With("detect"))

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := detector.DetectFields(ctx, page, markup)
		if err != nil {
			return nil, fmt.Errorf("detecting fields: %w", tagged(pdferrors.ErrorTypeInternal, "field detection failed", err))
		}
		found = onPage(found, page, i, result.Warnings)

		pr := PageResult{Page: i + 1, Strategy: strategyFor(page, markup), Fields: make([]Field, 0, len(found))}
		for j, d := range found {
			f := Field{Name: FieldName(i, j), Kind: d.Kind, Rect: d.Rect}
			if write {
				w := wrapper.Widget{Name: f.Name, Kind: widgetKind(d.Kind), Rect: d.Rect}
				if err := doc.AddWidget(i, w); err != nil {
					return nil, fmt.Errorf("attaching %s: %w", f.Name, tagged(pdferrors.ErrorTypeInternal, "cannot attach widget", err))
				}
			}
			pr.Fields = append(pr.Fields, f)
		}
		result.TotalFields += len(found)
		result.Pages = append(result.Pages, pr)
		log.Debug("page done", "page", i+1, "strategy", pr.Strategy, "fields", len(found))
	}

	if write {
		if err := saveAtomic(doc, outputPath, result.RunID); err != nil {
			return nil, tagged(pdferrors.ErrorTypeInternal, "cannot write output", err)
		}
	}

	result.Duration = time.Since(start)
	log.Info("finished",
		"id", result.RunID,
		"pages", len(pages),
		"fields", result.TotalFields,
		"warnings", len(result.Warnings.Warnings),
		"duration", result.Duration)
	return result, nil
}

// remoteMarkup asks the remote service once for the whole document. A
// failure is recorded and leaves scanned pages without markup.
func (c *Converter) remoteMarkup(ctx context.Context, path string, warnings *pdferrors.ErrorCollection, log *logging.Logger) []ocr.PageMarkup {
	if c.remote == nil {
		warnings.Add(pdferrors.NewPDFError(pdferrors.ErrorTypeRemoteService, "remote OCR is not configured"))
		log.Warn("document has pages without text and no remote OCR is configured")
		return nil
	}

	markup, err := c.remote.ProcessDocument(ctx, path)
	if err != nil {
		warnings.Add(asPDFError(pdferrors.ErrorTypeRemoteService, "remote OCR failed", err))
		log.Warn("remote OCR failed", "error", err)
		return nil
	}
	if markup == nil {
		markup = []ocr.PageMarkup{}
	}
	log.Info("remote OCR done", "pages", len(markup))
	return markup
}

func collectTextWarnings(doc wrapper.Document, warnings *pdferrors.ErrorCollection) {
	tw, ok := doc.(interface{ TextWarnings() []error })
	if !ok {
		return
	}
	for _, err := range tw.TextWarnings() {
		warnings.Add(pdferrors.WrapError(pdferrors.ErrorTypeParsingNoise, "native text could not be read", err))
	}
}

// asPDFError keeps err when it already carries a category
func asPDFError(t pdferrors.ErrorType, msg string, err error) *pdferrors.PDFError {
	var pe *pdferrors.PDFError
	if errors.As(err, &pe) {
		return pe
	}
	return pdferrors.WrapError(t, msg, err)
}

// tagged gives err a category unless its chain already carries one
func tagged(t pdferrors.ErrorType, msg string, err error) error {
	var pe *pdferrors.PDFError
	if errors.As(err, &pe) {
		return err
	}
	return pdferrors.WrapError(t, msg, err)
}

// onPage drops fields lying wholly off the page, recording each as a
// geometry warning
func onPage(found []fields.Descriptor, page *wrapper.Page, index int, warnings *pdferrors.ErrorCollection) []fields.Descriptor {
	size := page.Size()
	bounds := geometry.NewRect(0, 0, size.Width, size.Height)
	kept := found[:0]
	for _, d := range found {
		if !d.Rect.Intersects(bounds) {
			warnings.Add(pdferrors.NewPDFError(pdferrors.ErrorTypeGeometry, "field lies outside the page").
				WithPage(index + 1).
				WithContext(d.Rect.String()))
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

func strategyFor(page *wrapper.Page, markup []ocr.PageMarkup) Strategy {
	if page.TextLayout().BlockCount() > 0 {
		return StrategyNative
	}
	if m, ok := ocr.FindPage(markup, page.Index()); ok && strings.TrimSpace(m.Markdown) != "" {
		return StrategyOCR
	}
	return StrategyNone
}

func widgetKind(k fields.Kind) wrapper.WidgetKind {
	if k == fields.KindCheckbox {
		return wrapper.WidgetCheckbox
	}
	return wrapper.WidgetText
}

// saveAtomic writes the document next to outputPath and renames it into
// place; the temporary file never outlives a failure
func saveAtomic(doc wrapper.Document, outputPath, runID string) (err error) {
	tmp := filepath.Join(filepath.Dir(outputPath), fmt.Sprintf(".%s.%s.tmp", filepath.Base(outputPath), runID))
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = doc.Save(tmp); err != nil {
		return fmt.Errorf("saving %s: %w", outputPath, err)
	}
	if err = os.Rename(tmp, outputPath); err != nil {
		return fmt.Errorf("installing %s: %w", outputPath, err)
	}
	return nil
}
