package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/pdf-acroform/internal/logging"
	pdferrors "github.com/a3tai/pdf-acroform/internal/pdf/errors"
)

const (
	DefaultMistralEndpoint = "https://api.mistral.ai/v1/ocr"
	DefaultMistralModel    = "mistral-ocr-latest"
	DefaultRemoteTimeout   = 120 * time.Second

	maxErrorBody = 512
)

// MistralConfig holds the remote OCR service settings
type MistralConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// MistralClient reads whole documents into per-page markdown through the
// Mistral OCR API
type MistralClient struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
	logger     *logging.Logger
}

type mistralDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type mistralRequest struct {
	Model    string          `json:"model"`
	Document mistralDocument `json:"document"`
}

type mistralResponse struct {
	Pages []PageMarkup `json:"pages"`
	Model string       `json:"model"`
}

// NewMistralClient creates a client; empty config fields take defaults
func NewMistralClient(cfg MistralConfig, logger *logging.Logger) *MistralClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultMistralEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultMistralModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRemoteTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &MistralClient{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// ProcessDocument uploads the PDF at path inline and returns the markdown of
// every page. Any failure is a recoverable remote-service error.
func (c *MistralClient) ProcessDocument(ctx context.Context, path string) ([]PageMarkup, error) {
	if c.apiKey == "" {
		return nil, remoteError("no API key configured", nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, remoteError("failed to read document", err).WithFile(path)
	}

	reqBody, err := json.Marshal(mistralRequest{
		Model: c.model,
		Document: mistralDocument{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data),
		},
	})
	if err != nil {
		return nil, remoteError("failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, remoteError("failed to create request", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Request-ID", requestID)

	c.logger.Info("requesting document markup",
		"path", path,
		"bytes", len(data),
		"model", c.model,
		"request_id", requestID)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, remoteError("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, remoteError("failed to read response body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil).
			WithContext(truncate(strings.TrimSpace(string(body)), maxErrorBody))
	}

	var out mistralResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, remoteError("failed to decode response", err)
	}

	c.logger.Info("document markup received",
		"pages", len(out.Pages),
		"duration", time.Since(start).Round(time.Millisecond),
		"request_id", requestID)
	return out.Pages, nil
}

func remoteError(msg string, cause error) *pdferrors.PDFError {
	return pdferrors.WrapError(pdferrors.ErrorTypeRemoteService, msg, cause).WithContext("mistral ocr")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
