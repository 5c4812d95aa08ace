package fields

import (
	"math"
	"regexp"
	"strings"

	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
)

// spaceClass goes inside a character class and matches Unicode whitespace,
// not only the ASCII set \s covers
const spaceClass = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`

// nativeLabelPattern matches label-like text followed by a colon in native
// page text. Group 1 is the label without the colon.
var nativeLabelPattern = regexp.MustCompile(`([A-Za-z` + spaceClass + `/'()#*]+)[` + spaceClass + `]*:[` + spaceClass + `]*`)

const (
	labelLineTolerance = 5.0   // max distance between a located label and its line
	labelFieldGap      = 2.0   // space between the colon and the field
	labelFieldMaxWidth = 150.0 // widest field projected from a label
	labelFieldMinWidth = 20.0  // narrower projections are dropped
	pageRightMargin    = 20.0
)

// FindLabelFields projects a text field to the right of every "Label:" found
// in the page's native text lines. Each label is located again by glyph
// search so the field lines up with the colon even when line text lost its
// spacing; only the hit on the originating line is used.
func FindLabelFields(page Page) []Descriptor {
	pageWidth := page.Size().Width

	var out []Descriptor
	for _, line := range page.TextLayout().Lines() {
		text := strings.TrimSpace(line.Text())
		for _, m := range nativeLabelPattern.FindAllStringSubmatch(text, -1) {
			label := strings.TrimSpace(m[1]) + ":"
			for _, hit := range page.SearchFor(label) {
				if math.Abs(hit.Y0-line.BBox.Y0) >= labelLineTolerance {
					continue
				}
				x0 := hit.X1 + labelFieldGap
				x1 := min(x0+labelFieldMaxWidth, pageWidth-pageRightMargin)
				if x1-x0 > labelFieldMinWidth {
					out = append(out, Descriptor{
						Kind: KindText,
						Rect: geometry.NewRect(x0, hit.Y0, x1, hit.Y1),
					})
				}
				break
			}
		}
	}
	return out
}
