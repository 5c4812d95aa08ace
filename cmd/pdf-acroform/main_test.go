package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-acroform/internal/config"
	"github.com/a3tai/pdf-acroform/internal/convert"
	pdferrors "github.com/a3tai/pdf-acroform/internal/pdf/errors"
	"github.com/a3tai/pdf-acroform/internal/pdf/pdftest"
)

const testVersion = "1.2.3"

type fakeConverter struct {
	result *convert.Result
	err    error
	out    string
}

func (f *fakeConverter) Detect(_ context.Context, _ string) (*convert.Result, error) {
	return f.result, f.err
}

func (f *fakeConverter) Convert(_ context.Context, _, out string) (*convert.Result, error) {
	f.out = out
	if f.result != nil {
		f.result.OutputPath = out
	}
	return f.result, f.err
}

func convertConfig(in string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.InputPath = in
	return cfg
}

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() { version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit }()

	version = testVersion
	buildTime = "2023-12-01_10:30:00"
	gitCommit = "abc123"

	var buf bytes.Buffer
	printVersion(&buf)

	out := buf.String()
	assert.Contains(t, out, "PDF AcroForm")
	assert.Contains(t, out, "Version: 1.2.3")
	assert.Contains(t, out, "Build Time: 2023-12-01_10:30:00")
	assert.Contains(t, out, "Git Commit: abc123")
	assert.Contains(t, out, runtime.Version())
}

func TestRunConvert_DefaultOutput(t *testing.T) {
	warnings := pdferrors.NewErrorCollection("scan.pdf")
	warnings.Add(pdferrors.NewPDFError(pdferrors.ErrorTypeRemoteService, "remote OCR failed"))
	conv := &fakeConverter{result: &convert.Result{TotalFields: 3, Warnings: warnings}}

	var stdout, stderr bytes.Buffer
	err := runConvert(context.Background(), convertConfig("/data/scan.pdf"), conv, &stdout, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "/data/scan_editable.pdf", conv.out)
	assert.Equal(t, "Created /data/scan_editable.pdf with 3 field(s)\n", stdout.String())
	assert.Equal(t, "Found 0 error(s) and 1 warning(s)\nwarning: [REMOTE_SERVICE] remote OCR failed\n", stderr.String())
}

func TestRunConvert_ExplicitOutput(t *testing.T) {
	conv := &fakeConverter{result: &convert.Result{Warnings: pdferrors.NewErrorCollection("")}}
	cfg := convertConfig("in.pdf")
	cfg.OutputPath = "custom.pdf"

	var stdout, stderr bytes.Buffer
	require.NoError(t, runConvert(context.Background(), cfg, conv, &stdout, &stderr))
	assert.Equal(t, "custom.pdf", conv.out)
	assert.Empty(t, stderr.String())
}

func TestRunConvert_DryRun(t *testing.T) {
	conv := &fakeConverter{result: &convert.Result{
		RunID:       "abc",
		TotalFields: 1,
		Pages: []convert.PageResult{{
			Page:     1,
			Strategy: convert.StrategyNative,
			Fields:   []convert.Field{{Name: "page1_field1", Kind: "checkbox"}},
		}},
		Warnings: pdferrors.NewErrorCollection(""),
	}}
	cfg := convertConfig("in.pdf")
	cfg.DryRun = true

	var stdout, stderr bytes.Buffer
	require.NoError(t, runConvert(context.Background(), cfg, conv, &stdout, &stderr))
	assert.Empty(t, conv.out, "a dry run never writes")

	var decoded convert.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.TotalFields)
	assert.Equal(t, "page1_field1", decoded.Pages[0].Fields[0].Name)
}

func TestRunConvert_ErrorChain(t *testing.T) {
	cause := errors.New("tesseract: no language data")
	conv := &fakeConverter{err: pdferrors.WrapError(pdferrors.ErrorTypeLocalOCR, "failed to start local OCR engine", cause)}

	var stdout, stderr bytes.Buffer
	err := runConvert(context.Background(), convertConfig("in.pdf"), conv, &stdout, &stderr)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "no language data")
	assert.Empty(t, stdout.String())
}

func TestRunConvert_RealDocument(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.Write(t, dir, "form.pdf", pdftest.Page{Lines: []pdftest.Line{
		{X: 50, Y: 700, Text: "Name: ______________"},
	}})
	cfg := convertConfig(in)
	conv := convert.New(convert.OptionsFromConfig(cfg, nil))

	var stdout, stderr bytes.Buffer
	require.NoError(t, runConvert(context.Background(), cfg, conv, &stdout, &stderr))
	assert.Contains(t, stdout.String(), filepath.Join(dir, "form_editable.pdf"))
	assert.Contains(t, stdout.String(), "with 1 field(s)")
	assert.FileExists(t, filepath.Join(dir, "form_editable.pdf"))
}

func TestRunServer_RejectsConvertMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PDFDirectory = t.TempDir()

	var logs bytes.Buffer
	err := runServer(context.Background(), cfg, &fakeConverter{}, newLogger(cfg, &logs))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported mode")
}

func TestNewLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger := newLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "page", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[pdf-acroform]")
	assert.Contains(t, out, "shown page=2")
}
