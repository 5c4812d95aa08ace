package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-acroform/internal/config"
	"github.com/a3tai/pdf-acroform/internal/convert"
	pdferrors "github.com/a3tai/pdf-acroform/internal/pdf/errors"
)

// fakeConverter records the paths it was asked to work on
type fakeConverter struct {
	result  *convert.Result
	err     error
	detects []string
	inputs  []string
	outputs []string
}

func (f *fakeConverter) Detect(_ context.Context, in string) (*convert.Result, error) {
	f.detects = append(f.detects, in)
	return f.result, f.err
}

func (f *fakeConverter) Convert(_ context.Context, in, out string) (*convert.Result, error) {
	f.inputs = append(f.inputs, in)
	f.outputs = append(f.outputs, out)
	return f.result, f.err
}

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeStdio
	cfg.PDFDirectory = dir
	cfg.ServerName = "test-server"
	return cfg
}

func newTestServer(t *testing.T, conv Converter) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "form.pdf"), []byte("%PDF-1.4"), 0o600))
	s, err := NewServer(testConfig(dir), conv, nil)
	require.NoError(t, err)
	return s, s.paths.Root()
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content type %T", res.Content[0])
	return ""
}

func sampleResult(in, out string) *convert.Result {
	warnings := pdferrors.NewErrorCollection(in)
	warnings.Add(pdferrors.NewPDFError(pdferrors.ErrorTypeRemoteService, "remote OCR is not configured"))
	return &convert.Result{
		RunID:       "run-1",
		InputPath:   in,
		OutputPath:  out,
		TotalFields: 1,
		Pages: []convert.PageResult{{
			Page:     1,
			Strategy: convert.StrategyNative,
			Fields:   []convert.Field{{Name: "page1_field1", Kind: "text"}},
		}},
		Warnings: warnings,
	}
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(testConfig(t.TempDir()), nil, nil)
	assert.Error(t, err)

	cfg := testConfig("")
	_, err = NewServer(cfg, &fakeConverter{}, nil)
	assert.Error(t, err)

	s, err := NewServer(testConfig(t.TempDir()), &fakeConverter{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, s.mcpServer)
}

func TestHandleDetectFields(t *testing.T) {
	conv := &fakeConverter{}
	s, root := newTestServer(t, conv)
	conv.result = sampleResult(filepath.Join(root, "form.pdf"), "")

	res, err := s.handleDetectFields(context.Background(), callRequest("pdf_detect_fields", map[string]interface{}{
		"path": "form.pdf",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, `"name": "page1_field1"`)
	assert.Contains(t, text, `"strategy": "native"`)
	assert.Equal(t, []string{filepath.Join(root, "form.pdf")}, conv.detects)
}

func TestHandleConvert(t *testing.T) {
	conv := &fakeConverter{}
	s, root := newTestServer(t, conv)
	in := filepath.Join(root, "form.pdf")

	t.Run("default output", func(t *testing.T) {
		conv.result = sampleResult(in, filepath.Join(root, "form_editable.pdf"))
		res, err := s.handleConvert(context.Background(), callRequest("pdf_convert_acroform", map[string]interface{}{
			"path": in,
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)

		text := resultText(t, res)
		assert.Contains(t, text, "Fields: 1")
		assert.Contains(t, text, "page 1: 1 field(s), native")
		assert.Contains(t, text, "Found 0 error(s) and 1 warning(s):")
		assert.Contains(t, text, "remote OCR is not configured")
		assert.Equal(t, filepath.Join(root, "form_editable.pdf"), conv.outputs[len(conv.outputs)-1])
	})

	t.Run("explicit output", func(t *testing.T) {
		res, err := s.handleConvert(context.Background(), callRequest("pdf_convert_acroform", map[string]interface{}{
			"path":   "form.pdf",
			"output": "filled.pdf",
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, filepath.Join(root, "filled.pdf"), conv.outputs[len(conv.outputs)-1])
	})
}

func TestHandlers_RejectBadPaths(t *testing.T) {
	conv := &fakeConverter{}
	s, _ := newTestServer(t, conv)

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]interface{}
	}{
		{name: "detect missing path", handler: s.handleDetectFields, args: map[string]interface{}{}},
		{name: "detect outside dir", handler: s.handleDetectFields, args: map[string]interface{}{"path": "../x.pdf"}},
		{name: "detect missing file", handler: s.handleDetectFields, args: map[string]interface{}{"path": "nope.pdf"}},
		{name: "convert missing path", handler: s.handleConvert, args: map[string]interface{}{}},
		{name: "convert output outside", handler: s.handleConvert, args: map[string]interface{}{
			"path": "form.pdf", "output": "/tmp/../etc/out.pdf",
		}},
		{name: "convert output not pdf", handler: s.handleConvert, args: map[string]interface{}{
			"path": "form.pdf", "output": "out.txt",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.handler(context.Background(), callRequest("tool", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
	assert.Empty(t, conv.detects)
	assert.Empty(t, conv.inputs)
}

func TestHandlers_ConverterFailure(t *testing.T) {
	conv := &fakeConverter{err: pdferrors.NewPDFError(pdferrors.ErrorTypeLocalOCR, "tesseract exploded")}
	s, _ := newTestServer(t, conv)

	res, err := s.handleConvert(context.Background(), callRequest("pdf_convert_acroform", map[string]interface{}{
		"path": "form.pdf",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "tesseract exploded")

	res, err = s.handleDetectFields(context.Background(), callRequest("pdf_detect_fields", map[string]interface{}{
		"path": "form.pdf",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "field detection failed")
}

func TestHandleServerInfo(t *testing.T) {
	s, root := newTestServer(t, &fakeConverter{})

	res, err := s.handleServerInfo(context.Background(), callRequest("pdf_server_info", nil))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "test-server v1.0.0")
	assert.Contains(t, text, root)
	assert.Contains(t, text, "Remote OCR: not configured")
	for _, tool := range tools {
		assert.Contains(t, text, tool.Name)
	}
}
