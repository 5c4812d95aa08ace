package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Empty(t *testing.T) {
	tests := []struct {
		name  string
		rect  Rect
		empty bool
	}{
		{name: "regular", rect: NewRect(0, 0, 10, 10), empty: false},
		{name: "zero width", rect: NewRect(5, 0, 5, 10), empty: true},
		{name: "zero height", rect: NewRect(0, 5, 10, 5), empty: true},
		{name: "inverted", rect: NewRect(10, 10, 0, 0), empty: true},
		{name: "zero value", rect: Rect{}, empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.empty, tt.rect.Empty())
		})
	}
}

func TestRect_Intersects(t *testing.T) {
	base := NewRect(0, 0, 10, 10)

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{name: "overlap", other: NewRect(5, 5, 15, 15), want: true},
		{name: "contained", other: NewRect(2, 2, 3, 3), want: true},
		{name: "touching edge", other: NewRect(10, 0, 20, 10), want: false},
		{name: "disjoint", other: NewRect(20, 20, 30, 30), want: false},
		{name: "empty other", other: NewRect(5, 5, 5, 5), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Intersects(tt.other))
			assert.Equal(t, tt.want, tt.other.Intersects(base), "intersection must be symmetric")
		})
	}
}

func TestRect_Union(t *testing.T) {
	a := NewRect(0, 5, 10, 10)
	b := NewRect(8, 4, 20, 9)

	assert.Equal(t, NewRect(0, 4, 20, 10), a.Union(b))
	assert.Equal(t, a.Union(b), b.Union(a))
}

func TestBoundingRect(t *testing.T) {
	assert.Equal(t, Rect{}, BoundingRect())
	assert.Equal(t, NewRect(1, 1, 2, 2), BoundingRect(NewRect(1, 1, 2, 2)))
	assert.Equal(t,
		NewRect(0, 0, 30, 12),
		BoundingRect(NewRect(0, 2, 10, 12), NewRect(10, 0, 20, 10), NewRect(25, 1, 30, 5)),
	)
}

func TestRect_Scale(t *testing.T) {
	r := NewRect(10, 20, 30, 40)

	assert.Equal(t, NewRect(5, 5, 15, 10), r.Scale(0.5, 0.25))
	assert.InDelta(t, 20.0, r.Width(), 1e-9)
	assert.InDelta(t, 20.0, r.Height(), 1e-9)
	assert.Equal(t, "[10.0 20.0 30.0 40.0]", r.String())
}
