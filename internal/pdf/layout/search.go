package layout

import (
	"unicode"
	"unicode/utf8"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
)

// Search finds every occurrence of needle on the page and returns the
// bounding box of each hit, in reading order. Matching is case-insensitive,
// confined to a single line, and non-overlapping: a run of nine underscores
// yields three hits for "___".
func (p *PageTextLayout) Search(needle string) []geometry.Rect {
	if p == nil || needle == "" {
		return nil
	}
	pattern := foldRunes(needle)

	var hits []geometry.Rect
	for _, line := range p.Lines() {
		runes, rects := lineRunes(line)
		for i := 0; i+len(pattern) <= len(runes); {
			if !matchAt(runes, pattern, i) {
				i++
				continue
			}
			hits = append(hits, geometry.BoundingRect(rects[i:i+len(pattern)]...))
			i += len(pattern)
		}
	}
	return hits
}

// lineRunes flattens a line into case-folded runes with one rectangle each.
// Multi-rune glyphs split their rectangle evenly across the runes.
func lineRunes(line Line) ([]rune, []geometry.Rect) {
	var runes []rune
	var rects []geometry.Rect
	for _, span := range line.Spans {
		for _, g := range span.Glyphs {
			n := utf8.RuneCountInString(g.Text)
			if n == 0 {
				continue
			}
			step := g.Rect.Width() / float64(n)
			i := 0
			for _, r := range g.Text {
				x0 := g.Rect.X0 + step*float64(i)
				runes = append(runes, unicode.ToLower(r))
				rects = append(rects, geometry.NewRect(x0, g.Rect.Y0, x0+step, g.Rect.Y1))
				i++
			}
		}
	}
	return runes, rects
}

func foldRunes(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func matchAt(runes, pattern []rune, at int) bool {
	for j, r := range pattern {
		if runes[at+j] != r {
			return false
		}
	}
	return true
}
