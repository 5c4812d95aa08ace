package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Classification(t *testing.T) {
	tests := []struct {
		et          ErrorType
		name        string
		severity    ErrorSeverity
		recoverable bool
	}{
		{ErrorTypeGeometry, "GEOMETRY", SeverityInfo, true},
		{ErrorTypeParsingNoise, "PARSING_NOISE", SeverityInfo, true},
		{ErrorTypeRemoteService, "REMOTE_SERVICE", SeverityWarning, true},
		{ErrorTypeLocalOCR, "LOCAL_OCR", SeverityError, false},
		{ErrorTypeRender, "RENDER", SeverityError, false},
		{ErrorTypeDocument, "DOCUMENT", SeverityCritical, false},
		{ErrorTypeInternal, "INTERNAL", SeverityCritical, false},
		{ErrorTypeUnknown, "UNKNOWN", SeverityError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.et.String())
			assert.Equal(t, tt.severity, tt.et.GetSeverity())
			assert.Equal(t, tt.recoverable, tt.et.IsRecoverable())
		})
	}
}

func TestPDFError_FormatAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := WrapError(ErrorTypeRemoteService, "markup request failed", cause).
		WithPage(2).
		WithContext("mistral")

	assert.Equal(t, "[REMOTE_SERVICE] markup request failed (page 2): mistral: connection refused", err.Error())
	assert.True(t, err.Recoverable)
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("converting: %w", err)
	var pdfErr *PDFError
	require.ErrorAs(t, wrapped, &pdfErr)
	assert.Equal(t, ErrorTypeRemoteService, pdfErr.Type)
}

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection("form.pdf")
	assert.Equal(t, "No errors or warnings", ec.Summary())

	ec.Add(NewPDFError(ErrorTypeRemoteService, "timeout"))
	ec.Add(NewPDFError(ErrorTypeRender, "pdftoppm missing").WithPage(1))

	errs, warns := ec.Count()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warns)
	assert.Equal(t, "form.pdf", ec.Warnings[0].FilePath)
	assert.False(t, ec.HasCriticalErrors())
	assert.Equal(t, "Found 1 error(s) and 1 warning(s)", ec.Summary())
	assert.Equal(t, []string{
		"[RENDER] pdftoppm missing (page 1)",
		"[REMOTE_SERVICE] timeout",
	}, ec.Messages())

	ec.Add(NewPDFError(ErrorTypeDocument, "cannot open"))
	assert.True(t, ec.HasCriticalErrors())
	assert.Contains(t, ec.Summary(), "critical")
}
