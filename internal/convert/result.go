package convert

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/a3tai/pdf-acroform/internal/fields"
	pdferrors "github.com/a3tai/pdf-acroform/internal/pdf/errors"
	"github.com/a3tai/pdf-acroform/internal/pdf/geometry"
)

// Strategy names how a page's fields were found
type Strategy string

const (
	StrategyNative Strategy = "native" // native text layout
	StrategyOCR    Strategy = "ocr"    // remote markup matched to local OCR positions
	StrategyNone   Strategy = "none"   // no text and no usable markup
)

// Field is a detected field with the name its widget carries
type Field struct {
	Name string        `json:"name"`
	Kind fields.Kind   `json:"kind"`
	Rect geometry.Rect `json:"rect"`
}

// PageResult lists the fields of one page. Page is 1-based.
type PageResult struct {
	Page     int      `json:"page"`
	Strategy Strategy `json:"strategy"`
	Fields   []Field  `json:"fields"`
}

// Result summarizes a conversion or a detection run
type Result struct {
	RunID       string                     `json:"run_id"`
	InputPath   string                     `json:"input_path"`
	OutputPath  string                     `json:"output_path,omitempty"`
	TotalFields int                        `json:"total_fields"`
	RemoteOCR   bool                       `json:"remote_ocr"`
	Pages       []PageResult               `json:"pages"`
	Warnings    *pdferrors.ErrorCollection `json:"warnings"`
	Duration    time.Duration              `json:"duration"`
}

// FieldName is the widget name of the fieldIndex-th field on the zero-based
// page, both counted from 1 in the name
func FieldName(pageIndex, fieldIndex int) string {
	return fmt.Sprintf("page%d_field%d", pageIndex+1, fieldIndex+1)
}

// DefaultOutputPath derives the output file for input: "form.pdf" becomes
// "form_editable.pdf" with the default suffix
func DefaultOutputPath(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix + ".pdf"
}
