package fields

import (
	"math"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
)

const (
	checkboxOffset = 12.0 // checkbox left edge, measured back from the option text
	checkboxGap    = 1.0  // space between checkbox and option text

	textFieldGap       = 2.0   // space after the label
	sameLineTolerance  = 5.0   // vertical slack for neighbours on the label's line
	neighbourClearance = 5.0   // neighbours must start this far past the label
	textFieldMinWidth  = 20.0  // fields are widened to at least this
	textFieldMaxWidth  = 200.0 // and clamped to at most this
	textFieldDiscard   = 15.0  // fields this narrow or less are dropped
)

// SynthesizeCheckbox places a checkbox just left of the option text, spanning
// the same height
func SynthesizeCheckbox(pos TextPosition) Descriptor {
	r := pos.Rect
	return Descriptor{
		Kind: KindCheckbox,
		Rect: geometry.NewRect(r.X0-checkboxOffset, r.Y0, r.X0-checkboxGap, r.Y1),
	}
}

// SynthesizeText places a text field right of the label at positions[idx].
// The field stops short of the nearest other text on the same line, or at
// the page margin, and its width is clamped to [20, 200].
func SynthesizeText(idx int, positions []TextPosition, pageWidth float64) (Descriptor, bool) {
	label := positions[idx].Rect
	x0 := label.X1 + textFieldGap

	x1 := pageWidth - pageRightMargin
	for j, other := range positions {
		if j == idx {
			continue
		}
		if math.Abs(other.Rect.Y0-label.Y0) < sameLineTolerance && other.Rect.X0 > label.X1+neighbourClearance {
			x1 = min(x1, other.Rect.X0-textFieldGap)
		}
	}
	x1 = max(x0+textFieldMinWidth, min(x1, x0+textFieldMaxWidth))

	if x1-x0 <= textFieldDiscard {
		return Descriptor{}, false
	}
	return Descriptor{Kind: KindText, Rect: geometry.NewRect(x0, label.Y0, x1, label.Y1)}, true
}

// MatchCandidates resolves candidates against measured positions: every
// checkbox candidate first, then every text candidate, each in extraction
// order. A position satisfies at most one candidate.
func MatchCandidates(candidates []Candidate, positions []TextPosition, pageWidth float64) []Descriptor {
	used := make(UsedPositions)
	var out []Descriptor

	for _, c := range candidates {
		if c.Kind != KindCheckbox {
			continue
		}
		idx, pos, ok := FindPosition(c.Label, positions, used)
		if !ok {
			continue
		}
		used.Add(idx)
		out = append(out, SynthesizeCheckbox(pos))
	}

	for _, c := range candidates {
		if c.Kind != KindText {
			continue
		}
		idx, _, ok := FindPosition(c.Label, positions, used)
		if !ok {
			continue
		}
		used.Add(idx)
		if d, ok := SynthesizeText(idx, positions, pageWidth); ok {
			out = append(out, d)
		}
	}
	return out
}
