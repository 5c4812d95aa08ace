package fields

// Deduplicate drops empty rectangles and any descriptor overlapping an
// earlier kept descriptor of the same kind. A checkbox and a text field may
// overlap; they are different affordances.
func Deduplicate(in []Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(in))
	for _, d := range in {
		if d.Rect.Empty() || overlapsKept(out, d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func overlapsKept(kept []Descriptor, d Descriptor) bool {
	for _, k := range kept {
		if k.Kind == d.Kind && k.Rect.Intersects(d.Rect) {
			return true
		}
	}
	return false
}
