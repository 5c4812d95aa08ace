package convert

import (
	"bytes"
	"context"
	"image"
	_ "image/png" // PNG decoder for DecodeConfig
	"io"

	"github.com/a3tai/pdf-acroform/internal/fields"
	"github.com/a3tai/pdf-acroform/internal/ocr"
	pdferrors "github.com/a3tai/pdf-acroform/internal/pdf/errors"
	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
	"github.com/a3tai/pdf-acroform/internal/pdf/wrapper"
)

// RecognizerFactory creates the local OCR engine on first use
type RecognizerFactory func() (ocr.Recognizer, error)

// pagePositions measures text on rendered pages with the local OCR engine.
// The engine is created on the first page that needs it and released by
// Close.
type pagePositions struct {
	doc        wrapper.Document
	dpi        int
	newEngine  RecognizerFactory
	recognizer ocr.Recognizer
}

var _ fields.PositionSource = (*pagePositions)(nil)

func newPagePositions(doc wrapper.Document, dpi int, newEngine RecognizerFactory) *pagePositions {
	return &pagePositions{doc: doc, dpi: dpi, newEngine: newEngine}
}

// Positions renders the zero-based page, runs the local engine over it and
// returns the recognized phrases in page space
func (p *pagePositions) Positions(ctx context.Context, pageIndex int) ([]fields.TextPosition, error) {
	page, err := p.doc.Page(pageIndex)
	if err != nil {
		return nil, err
	}

	img, err := p.doc.Render(ctx, pageIndex, p.dpi)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeRender, "failed to render page", err).WithPage(pageIndex + 1)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeRender, "rendered page is not a readable image", err).
			WithPage(pageIndex + 1)
	}

	engine, err := p.engine()
	if err != nil {
		return nil, err
	}
	recs, err := engine.Recognize(ctx, img)
	if err != nil {
		return nil, err
	}
	return ToPagePositions(recs, page.Size(), cfg.Width, cfg.Height), nil
}

func (p *pagePositions) engine() (ocr.Recognizer, error) {
	if p.recognizer != nil {
		return p.recognizer, nil
	}
	if p.newEngine == nil {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeLocalOCR, "no local OCR engine configured")
	}
	r, err := p.newEngine()
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLocalOCR, "failed to start local OCR engine", err)
	}
	p.recognizer = r
	return r, nil
}

// Close releases the engine if one was started
func (p *pagePositions) Close() error {
	if p.recognizer == nil {
		return nil
	}
	r := p.recognizer
	p.recognizer = nil
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ToPagePositions rescales pixel recognitions of an imgW x imgH render onto
// a page of the given size. The rectangle spans the quad's first and third
// corners.
func ToPagePositions(recs []ocr.Recognition, size geometry.Size, imgW, imgH int) []fields.TextPosition {
	if imgW <= 0 || imgH <= 0 {
		return nil
	}
	sx := size.Width / float64(imgW)
	sy := size.Height / float64(imgH)

	out := make([]fields.TextPosition, 0, len(recs))
	for _, r := range recs {
		out = append(out, fields.TextPosition{
			Text:       r.Text,
			Rect:       geometry.NewRect(r.Quad[0][0], r.Quad[0][1], r.Quad[2][0], r.Quad[2][1]).Scale(sx, sy),
			Confidence: r.Confidence,
		})
	}
	return out
}
