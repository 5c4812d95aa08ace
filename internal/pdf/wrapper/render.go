package wrapper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultDPI matches the resolution the local OCR engine is tuned for
const DefaultDPI = 150

// PdftoppmRenderer rasterizes pages with poppler's pdftoppm
type PdftoppmRenderer struct {
	binary string
	path   string
}

// NewPdftoppmRenderer renders pages of the PDF at path. An empty binary
// means "pdftoppm" on PATH.
func NewPdftoppmRenderer(binary, path string) *PdftoppmRenderer {
	if binary == "" {
		binary = "pdftoppm"
	}
	return &PdftoppmRenderer{binary: binary, path: path}
}

// Render returns the 1-based page as PNG bytes
func (r *PdftoppmRenderer) Render(ctx context.Context, pageNum, dpi int) ([]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	workDir, err := os.MkdirTemp("", "acroform-render-*")
	if err != nil {
		return nil, &WrapperError{Library: LibraryPdftoppm, Op: "render", Err: fmt.Errorf("failed to create work dir: %w", err)}
	}
	defer os.RemoveAll(workDir)

	prefix := filepath.Join(workDir, "page")
	args := []string{
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(pageNum),
		"-l", strconv.Itoa(pageNum),
		"-singlefile",
		r.path,
		prefix,
	}
	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &WrapperError{
			Library: LibraryPdftoppm,
			Op:      "render",
			Err:     fmt.Errorf("pdftoppm failed on page %d: %w: %s", pageNum, err, strings.TrimSpace(stderr.String())),
		}
	}

	img, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPdftoppm,
			Op:      "render",
			Err:     fmt.Errorf("rendered image not found for page %d: %w", pageNum, err),
		}
	}
	return img, nil
}
