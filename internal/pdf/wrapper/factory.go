package wrapper

import (
	"fmt"
	"os"
)

// Config holds the options for opening documents
type Config struct {
	// PdftoppmPath is the rasterizer binary; empty means "pdftoppm" on PATH
	PdftoppmPath string `json:"pdftoppm_path"`

	// MaxFileSize limits the size of documents opened (in bytes), 0 for no limit
	MaxFileSize int64 `json:"max_file_size"`
}

// DefaultConfig returns the options used when none are given
func DefaultConfig() Config {
	return Config{
		PdftoppmPath: "pdftoppm",
		MaxFileSize:  100 * 1024 * 1024, // 100MB
	}
}

// Open opens the PDF at path with every backend a conversion needs: pdfcpu
// for the object model, ledongthuc/pdf for native text and pdftoppm for
// rasterization. pdfcpu is authoritative; if ledongthuc/pdf cannot read the
// file, every page reports no native text and the failure is kept in
// TextWarnings.
func Open(path string, cfg Config) (*PDFDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "open_file", Err: fmt.Errorf("failed to stat file: %w", err)}
	}
	if info.IsDir() {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "open_file", Err: fmt.Errorf("%s is a directory", path)}
	}
	if cfg.MaxFileSize > 0 && info.Size() > cfg.MaxFileSize {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "open_file",
			Err:     fmt.Errorf("file size %d exceeds maximum %d", info.Size(), cfg.MaxFileSize),
		}
	}

	form, err := OpenPDFCPUForm(path)
	if err != nil {
		return nil, err
	}

	existing, err := form.FieldCount()
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "open_file", Err: fmt.Errorf("failed to read form fields: %w", err)}
	}

	doc := &PDFDocument{
		path:     path,
		form:     form,
		existing: existing,
		renderer: NewPdftoppmRenderer(cfg.PdftoppmPath, path),
		pages:    make(map[int]*Page),
	}

	text, err := OpenLedongthucText(path)
	if err != nil {
		doc.warnings = append(doc.warnings, err)
	} else {
		doc.text = text
	}
	return doc, nil
}
