package ocr

import "context"

// PageMarkup is the remote service's reading of one page, as markdown.
// Index is zero-based.
type PageMarkup struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// Recognition is one phrase measured by the local engine, in image pixels.
// Quad holds the corners clockwise from top-left.
type Recognition struct {
	Quad       [4][2]float64 `json:"quad"`
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
}

// MarkupService turns a whole document into per-page markdown
type MarkupService interface {
	ProcessDocument(ctx context.Context, path string) ([]PageMarkup, error)
}

// Recognizer measures text phrases on a rendered page image
type Recognizer interface {
	Recognize(ctx context.Context, img []byte) ([]Recognition, error)
}

// FindPage returns the markup for the zero-based page index
func FindPage(pages []PageMarkup, index int) (PageMarkup, bool) {
	for _, p := range pages {
		if p.Index == index {
			return p, true
		}
	}
	return PageMarkup{}, false
}
