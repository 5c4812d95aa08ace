package fields

import (
	"math"
	"sort"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
)

const (
	underscoreRun = "___"

	// runs closer than these are pieces of one drawn blank
	underscoreMaxDY  = 3.0
	underscoreMaxGap = 5.0

	// extra room below the underscores for the text box
	underscoreBottomPad = 2.0
)

// FindUnderscoreFields turns runs of underscores into text fields. Adjacent
// runs on the same line are merged first, since one long blank is often
// drawn as several short underscore glyphs. A nil result means the page has
// no underscore blanks at all.
func FindUnderscoreFields(page Page) []Descriptor {
	merged := MergeUnderscoreRuns(page.SearchFor(underscoreRun))
	if len(merged) == 0 {
		return nil
	}

	out := make([]Descriptor, 0, len(merged))
	for _, m := range merged {
		m.Y1 += underscoreBottomPad
		out = append(out, Descriptor{Kind: KindText, Rect: m})
	}
	return out
}

// MergeUnderscoreRuns sorts run rectangles top-to-bottom, left-to-right and
// coalesces each run into the previous merged rectangle when it sits on the
// same line and starts within a few points of its right edge
func MergeUnderscoreRuns(runs []geometry.Rect) []geometry.Rect {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]geometry.Rect, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y0 != sorted[j].Y0 {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	merged := []geometry.Rect{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if math.Abs(r.Y0-last.Y0) < underscoreMaxDY && r.X0 < last.X1+underscoreMaxGap {
			*last = last.Union(r)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
