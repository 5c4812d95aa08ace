package fields

// CheckboxGlyphs are the box and check symbols treated as checkboxes, in
// search order
var CheckboxGlyphs = []string{"□", "☐", "☑", "☒", "▢", "◻", "◯", "■"}

// EncodedCheckboxGlyphs are checkbox symbols whose UTF-8 bytes were decoded
// as code page 437 somewhere upstream. Documents carrying them are common
// enough that they are searched for alongside the clean glyphs.
var EncodedCheckboxGlyphs = []string{"Γÿé", "Γÿí", "Γûí", "Γûá", "ΓÿÉ"}

// checkboxAlphabet is every glyph sequence that marks a checkbox
var checkboxAlphabet = append(append([]string{}, CheckboxGlyphs...), EncodedCheckboxGlyphs...)

// FindCheckboxes emits one checkbox per occurrence of any checkbox glyph on
// the page, sized to the glyph itself
func FindCheckboxes(page Page) []Descriptor {
	var out []Descriptor
	for _, glyph := range checkboxAlphabet {
		for _, r := range page.SearchFor(glyph) {
			out = append(out, Descriptor{Kind: KindCheckbox, Rect: r})
		}
	}
	return out
}
