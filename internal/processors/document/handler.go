// internal/processors/document/handler.go
package document

import (
	"context"
	"fmt"
	"os"

	"docrouter/internal/common/errors"
	"docrouter/internal/common/logger"
	"docrouter/internal/models"
)

// Handler extracts text, metadata and intent-specific fields from binary
// documents. Payloads are spooled to an exclusively-owned scratch file that
// is removed on every exit path.
type Handler struct {
	config  Config
	logger  logger.Logger
	engines []TextEngine
}

// NewHandler creates a document handler for the configured engine. The
// pdfcpu engine carries the raw scanner as fallback; the raw engine stands
// alone; none disables text recovery entirely.
func NewHandler(cfg Config, log logger.Logger) (*Handler, error) {
	var engines []TextEngine
	switch cfg.Engine {
	case EnginePDFCPU:
		engines = []TextEngine{&pdfcpuEngine{}, &rawEngine{}}
	case EngineRaw:
		engines = []TextEngine{&rawEngine{}}
	case EngineNone:
	default:
		return nil, fmt.Errorf("unknown document engine: %q", cfg.Engine)
	}
	return &Handler{config: cfg, logger: log, engines: engines}, nil
}

// NewHandlerWithEngines injects explicit engines, bypassing name selection.
func NewHandlerWithEngines(cfg Config, log logger.Logger, engines ...TextEngine) *Handler {
	return &Handler{config: cfg, logger: log, engines: engines}
}

// Process runs the extraction and always returns a tagged result.
func (h *Handler) Process(ctx context.Context, content []byte, intent models.Intent) (result *models.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("document extraction panicked", map[string]interface{}{
				"intent": string(intent),
				"panic":  fmt.Sprint(r),
			})
			result = models.Failed("PROCESSING_ERROR", fmt.Sprint(r))
		}
	}()

	out, err := h.Execute(ctx, content, intent)
	if err != nil {
		return models.Failed("PROCESSING_ERROR", err.Error())
	}
	return models.Succeeded(out)
}

// Execute is the typed extraction entry point.
func (h *Handler) Execute(ctx context.Context, content []byte, intent models.Intent) (*Output, error) {
	h.logger.Info("processing document", map[string]interface{}{
		"intent": string(intent),
		"bytes":  len(content),
	})

	if h.config.MaxSizeBytes > 0 && int64(len(content)) > h.config.MaxSizeBytes {
		return nil, fmt.Errorf("document exceeds size limit of %d bytes", h.config.MaxSizeBytes)
	}

	path, cleanup, err := spool(content)
	if err != nil {
		return nil, fmt.Errorf("failed to write scratch file: %w", err)
	}
	defer cleanup()

	text, metadata, err := h.extract(path)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Metadata:         metadata,
		ProcessedContent: processByIntent(text, intent),
		ContentType:      "pdf",
	}

	h.logger.Info("document extraction completed", map[string]interface{}{
		"intent":     string(intent),
		"text_chars": len(text),
	})
	return out, nil
}

// spool writes the payload to a private temp file and returns its path with
// a cleanup func.
func spool(content []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "docrouter-*.pdf")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.Write(content); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// extract runs the engines in order and keeps the first successful text.
// Metadata comes from the same engine that produced the text. With no
// engines configured the capability is reported unavailable and processing
// continues on empty text.
func (h *Handler) extract(path string) (string, map[string]string, error) {
	if len(h.engines) == 0 {
		capErr := errors.NewCapabilityUnavailableError("document text extraction")
		h.logger.Warn(capErr.Message, map[string]interface{}{
			"code":    string(capErr.Code),
			"details": capErr.Details,
		})
		return "", map[string]string{}, nil
	}

	var lastErr error
	for i, engine := range h.engines {
		text, err := engine.ExtractText(path)
		if err != nil {
			lastErr = err
			if i < len(h.engines)-1 {
				h.logger.Warn("text engine failed, trying fallback", map[string]interface{}{
					"engine": engine.Name(),
					"error":  err.Error(),
				})
			}
			continue
		}

		metadata, err := engine.ExtractMetadata(path)
		if err != nil {
			h.logger.Warn("metadata extraction failed", map[string]interface{}{
				"engine": engine.Name(),
				"error":  err.Error(),
			})
			metadata = map[string]string{}
		}
		return text, metadata, nil
	}
	return "", nil, fmt.Errorf("text extraction failed: %w", lastErr)
}
