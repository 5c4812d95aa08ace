package convert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-acroform/internal/ocr"
	pdferrors "github.com/a3tai/pdf-acroform/internal/pdf/errors"
	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
)

func TestToPagePositions(t *testing.T) {
	recs := []ocr.Recognition{
		phrase("Name:", 100, 40, 160, 60),
		{
			// skewed quad: only the first and third corners count
			Quad:       [4][2]float64{{10, 10}, {50, 12}, {52, 30}, {8, 28}},
			Text:       "Tilted",
			Confidence: 0.4,
		},
	}

	got := ToPagePositions(recs, geometry.Size{Width: 612, Height: 792}, 1224, 1584)
	require.Len(t, got, 2)

	assert.Equal(t, "Name:", got[0].Text)
	assert.Equal(t, geometry.NewRect(50, 20, 80, 30), got[0].Rect)
	assert.InDelta(t, 0.9, got[0].Confidence, 1e-9)

	assert.Equal(t, geometry.NewRect(5, 5, 26, 15), got[1].Rect)

	assert.Nil(t, ToPagePositions(recs, geometry.Size{Width: 612, Height: 792}, 0, 100))
}

func TestPagePositions_LazyEngine(t *testing.T) {
	doc := newFakeDoc(scannedPage(0), scannedPage(1))
	doc.png = blankPNG(t, renderW, renderH)
	rec := &fakeRecognizer{recs: []ocr.Recognition{phrase("Email:", 20, 20, 50, 25)}}
	engines := &engineFactory{rec: rec}

	p := newPagePositions(doc, 72, engines.new)
	assert.Zero(t, engines.started)

	first, err := p.Positions(context.Background(), 0)
	require.NoError(t, err)
	_, err = p.Positions(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, engines.started)
	assert.Equal(t, 2, rec.calls)
	assert.Equal(t, 2, doc.renders)
	require.Len(t, first, 1)
	assert.Equal(t, geometry.NewRect(40, 40, 100, 50), first[0].Rect)

	require.NoError(t, p.Close())
	assert.True(t, rec.closed)
	require.NoError(t, p.Close())
}

func TestPagePositions_Errors(t *testing.T) {
	t.Run("not an image", func(t *testing.T) {
		doc := newFakeDoc(scannedPage(0))
		doc.png = []byte("not a png")
		p := newPagePositions(doc, 150, (&engineFactory{rec: &fakeRecognizer{}}).new)

		_, err := p.Positions(context.Background(), 0)
		var pe *pdferrors.PDFError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, pdferrors.ErrorTypeRender, pe.Type)
		assert.Equal(t, 1, pe.PageNumber)
	})

	t.Run("no engine", func(t *testing.T) {
		doc := newFakeDoc(scannedPage(0))
		doc.png = blankPNG(t, renderW, renderH)
		p := newPagePositions(doc, 150, nil)

		_, err := p.Positions(context.Background(), 0)
		var pe *pdferrors.PDFError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, pdferrors.ErrorTypeLocalOCR, pe.Type)
	})

	t.Run("bad page", func(t *testing.T) {
		p := newPagePositions(newFakeDoc(), 150, nil)
		_, err := p.Positions(context.Background(), 3)
		assert.Error(t, err)
	})
}
