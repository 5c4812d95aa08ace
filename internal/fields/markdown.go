package fields

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// markupLabelPattern matches a colon-terminated label in OCR markup. It
// accepts a wider punctuation set than the native pattern because the markup
// keeps brackets, digits and periods from numbered form sections.
var markupLabelPattern = regexp.MustCompile(`([A-Za-z` + spaceClass + `/'()\[\]#*\p{Nd}.]+?)\*?[` + spaceClass + `]*:`)

// labelNoise lists fragments of instructional prose that match the label
// pattern but never introduce a fillable field
var labelNoise = []string{
	"NOTE:", "---", "http", "sfhp.org", "1(",
	"Methods:", "Services:", "values.", "below:", "service.",
}

const (
	minOptionLen   = 1  // exclusive
	maxOptionLen   = 60 // exclusive
	optionLabelCap = 30
	maxMarkupLabel = 40 // exclusive
)

var whitespaceRun = regexp.MustCompile(`[` + spaceClass + `]+`)

// ExtractCandidates parses one page of OCR markup into field candidates.
// Table cells and lines are treated alike; for each line, checkbox options
// come first, then colon-terminated labels.
func ExtractCandidates(markdown string) []Candidate {
	var out []Candidate
	for _, line := range strings.Split(strings.ReplaceAll(markdown, "|", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}
		out = append(out, checkboxOptions(line)...)
		out = append(out, textLabels(line)...)
	}
	return out
}

// checkboxOptions splits "☐ Option A ☐ Option B" into one candidate per
// option text
func checkboxOptions(line string) []Candidate {
	var out []Candidate
	for _, glyph := range checkboxAlphabet {
		if !strings.Contains(line, glyph) {
			continue
		}
		parts := strings.Split(line, glyph)
		for _, part := range parts[1:] {
			option := strings.TrimSpace(part)
			for _, other := range checkboxAlphabet {
				if i := strings.Index(option, other); i >= 0 {
					option = strings.TrimSpace(option[:i])
				}
			}
			option = strings.TrimSpace(whitespaceRun.ReplaceAllString(option, " "))

			n := utf8.RuneCountInString(option)
			if n > minOptionLen && n < maxOptionLen {
				out = append(out, Candidate{Kind: KindCheckbox, Label: truncateRunes(option, optionLabelCap)})
			}
		}
	}
	return out
}

func textLabels(line string) []Candidate {
	var out []Candidate
	for _, m := range markupLabelPattern.FindAllString(line, -1) {
		label := strings.TrimSpace(m)
		if utf8.RuneCountInString(label) >= maxMarkupLabel || isLabelNoise(label) {
			continue
		}
		out = append(out, Candidate{Kind: KindText, Label: label})
	}
	return out
}

func isLabelNoise(label string) bool {
	for _, kw := range labelNoise {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
