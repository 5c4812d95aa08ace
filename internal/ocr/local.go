package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/a3tai/pdf-acroform/internal/logging"
	pdferrors "github.com/a3tai/pdf-acroform/internal/pdf/errors"
)

// TesseractRecognizer measures phrases on page images with a local
// Tesseract engine. The engine is started on first use and kept until
// Close. Recognize calls are serialized.
type TesseractRecognizer struct {
	mu       sync.Mutex
	client   *gosseract.Client
	language string
	logger   *logging.Logger
}

// NewTesseractRecognizer creates a recognizer for the given Tesseract
// language (for example "eng" or "eng+deu")
func NewTesseractRecognizer(language string, logger *logging.Logger) *TesseractRecognizer {
	if language == "" {
		language = "eng"
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &TesseractRecognizer{language: language, logger: logger}
}

// Recognize returns the phrases found in a PNG page image, in pixels
func (t *TesseractRecognizer) Recognize(ctx context.Context, img []byte) ([]Recognition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	client, err := t.engine()
	if err != nil {
		return nil, err
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLocalOCR, "failed to set image", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLocalOCR, "tesseract OCR failed", err)
	}

	words := make([]word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, word{
			text:       b.Word,
			x0:         float64(b.Box.Min.X),
			y0:         float64(b.Box.Min.Y),
			x1:         float64(b.Box.Max.X),
			y1:         float64(b.Box.Max.Y),
			confidence: b.Confidence / 100,
			line:       lineKey{b.BlockNum, b.ParNum, b.LineNum},
		})
	}
	phrases := groupPhrases(words)
	t.logger.Debug("page recognized", "words", len(words), "phrases", len(phrases))
	return phrases, nil
}

// Close releases the Tesseract engine if it was started
func (t *TesseractRecognizer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

func (t *TesseractRecognizer) engine() (*gosseract.Client, error) {
	if t.client != nil {
		return t.client, nil
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(strings.Split(t.language, "+")...); err != nil {
		client.Close()
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLocalOCR,
			fmt.Sprintf("failed to set language %q", t.language), err)
	}
	t.logger.Info("tesseract engine started", "version", client.Version(), "language", t.language)
	t.client = client
	return client, nil
}

type lineKey struct {
	block, para, line int
}

type word struct {
	text           string
	x0, y0, x1, y1 float64
	confidence     float64
	line           lineKey
}

// phraseGapFactor is the horizontal gap, relative to word height, that
// splits one text line into separate phrases
const phraseGapFactor = 1.0

// groupPhrases joins consecutive words of the same text line into phrases,
// splitting where the gap between words exceeds their height. Labels and
// their option texts come out as separate phrases this way, the granularity
// field matching works at.
func groupPhrases(words []word) []Recognition {
	var out []Recognition
	var cur []word

	flush := func() {
		if len(cur) == 0 {
			return
		}
		texts := make([]string, 0, len(cur))
		x0, y0, x1, y1 := cur[0].x0, cur[0].y0, cur[0].x1, cur[0].y1
		conf := 0.0
		for _, w := range cur {
			texts = append(texts, w.text)
			x0, y0 = min(x0, w.x0), min(y0, w.y0)
			x1, y1 = max(x1, w.x1), max(y1, w.y1)
			conf += w.confidence
		}
		out = append(out, Recognition{
			Quad:       [4][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}},
			Text:       strings.Join(texts, " "),
			Confidence: conf / float64(len(cur)),
		})
		cur = cur[:0]
	}

	for _, w := range words {
		w.text = strings.TrimSpace(w.text)
		if w.text == "" || w.x1 <= w.x0 || w.y1 <= w.y0 {
			continue
		}
		if n := len(cur); n > 0 {
			last := cur[n-1]
			height := max(last.y1-last.y0, w.y1-w.y0)
			if w.line != last.line || w.x0-last.x1 > height*phraseGapFactor {
				flush()
			}
		}
		cur = append(cur, w)
	}
	flush()
	return out
}
