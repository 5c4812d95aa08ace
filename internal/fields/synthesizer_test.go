package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeCheckbox(t *testing.T) {
	got := SynthesizeCheckbox(pos("Yes", 100, 50, 130, 60))
	assert.Equal(t, checkbox(88, 50, 99, 60), got)
	assert.InDelta(t, 11, got.Rect.Width(), 1e-9)
}

func TestSynthesizeText(t *testing.T) {
	label := pos("Name:", 50, 100, 100, 110)

	tests := []struct {
		name      string
		positions []TextPosition
		want      Descriptor
	}{
		{
			name:      "capped at 200 wide",
			positions: []TextPosition{label},
			want:      textField(102, 100, 302, 110),
		},
		{
			name:      "stops before the next text on the line",
			positions: []TextPosition{label, pos("Date:", 250, 101, 280, 111)},
			want:      textField(102, 100, 248, 110),
		},
		{
			name:      "text on another line does not bound the field",
			positions: []TextPosition{label, pos("Date:", 150, 106, 180, 116)},
			want:      textField(102, 100, 302, 110),
		},
		{
			name:      "text hugging the label is ignored",
			positions: []TextPosition{label, pos(":", 104, 100, 106, 110)},
			want:      textField(102, 100, 302, 110),
		},
		{
			name:      "crowded line still gets the minimum width",
			positions: []TextPosition{label, pos("x", 106, 100, 110, 110)},
			want:      textField(102, 100, 122, 110),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SynthesizeText(0, tt.positions, letterWidth)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("bounded by the page margin", func(t *testing.T) {
		got, ok := SynthesizeText(0, []TextPosition{pos("Zip:", 450, 100, 480, 110)}, letterWidth)
		require.True(t, ok)
		assert.Equal(t, textField(482, 100, 592, 110), got)
	})
}

func TestMatchCandidates_CheckboxesBeforeText(t *testing.T) {
	candidates := []Candidate{
		{Kind: KindText, Label: "Yes:"},
		{Kind: KindCheckbox, Label: "Yes"},
	}
	positions := []TextPosition{pos("Yes", 100, 100, 115, 110)}

	got := MatchCandidates(candidates, positions, letterWidth)
	assert.Equal(t, []Descriptor{checkbox(88, 100, 99, 110)}, got)
}

func TestMatchCandidates_PositionsUsedOnce(t *testing.T) {
	candidates := []Candidate{
		{Kind: KindCheckbox, Label: "Yes"},
		{Kind: KindCheckbox, Label: "No"},
		{Kind: KindCheckbox, Label: "Yes"},
	}
	positions := []TextPosition{
		pos("Yes", 100, 100, 115, 110),
		pos("No", 200, 100, 210, 110),
	}

	got := MatchCandidates(candidates, positions, letterWidth)
	assert.Equal(t, []Descriptor{
		checkbox(88, 100, 99, 110),
		checkbox(188, 100, 199, 110),
	}, got)
}
