package convert

import (
	"github.com/a3tai/pdf-acroform/internal/config"
	"github.com/a3tai/pdf-acroform/internal/logging"
	"github.com/a3tai/pdf-acroform/internal/ocr"
	"github.com/a3tai/pdf-acroform/internal/pdf/wrapper"
)

// OptionsFromConfig wires the production backends: pdfcpu, ledongthuc/pdf
// and pdftoppm for documents, Mistral for remote markup and Tesseract for
// local positions
func OptionsFromConfig(cfg *config.Config, logger *logging.Logger) Options {
	if logger == nil {
		logger = logging.Discard()
	}
	docCfg := wrapper.Config{
		PdftoppmPath: cfg.PdftoppmPath,
		MaxFileSize:  cfg.MaxFileSize,
	}

	return Options{
		Open: func(path string) (wrapper.Document, error) {
			doc, err := wrapper.Open(path, docCfg)
			if err != nil {
				return nil, err
			}
			return doc, nil
		},
		Remote: ocr.NewMistralClient(ocr.MistralConfig{
			APIKey:   cfg.MistralAPIKey,
			Endpoint: cfg.MistralEndpoint,
			Model:    cfg.MistralModel,
			Timeout:  cfg.RemoteTimeout,
		}, logger.With("mistral")),
		NewRecognizer: func() (ocr.Recognizer, error) {
			return ocr.NewTesseractRecognizer(cfg.OCRLanguage, logger.With("tesseract")), nil
		},
		DPI:    cfg.DPI,
		Logger: logger,
	}
}
