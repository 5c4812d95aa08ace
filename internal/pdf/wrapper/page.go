package wrapper

import (
	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
	"github.com/a3tai/pdf-acroform/internal/pdf/layout"
)

// Page is one page's size and native text, in page space
type Page struct {
	index  int
	size   geometry.Size
	layout *layout.PageTextLayout
}

// NewPage creates a page view
func NewPage(index int, size geometry.Size, l *layout.PageTextLayout) *Page {
	if l == nil {
		l = &layout.PageTextLayout{}
	}
	return &Page{index: index, size: size, layout: l}
}

func (p *Page) Index() int                         { return p.index }
func (p *Page) Size() geometry.Size                { return p.size }
func (p *Page) TextLayout() *layout.PageTextLayout { return p.layout }

// SearchFor returns every case-insensitive, non-overlapping occurrence of
// needle
func (p *Page) SearchFor(needle string) []geometry.Rect {
	return p.layout.Search(needle)
}
