// internal/processors/document/handler_test.go
package document

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrouter/internal/common/logger"
	"docrouter/internal/models"
)

// ==========================
// Test Helpers
// ==========================

// stubEngine records the path it was handed and serves canned responses.
type stubEngine struct {
	name     string
	text     string
	metadata map[string]string
	textErr  error
	metaErr  error
	seenPath string
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) ExtractText(path string) (string, error) {
	s.seenPath = path
	return s.text, s.textErr
}

func (s *stubEngine) ExtractMetadata(path string) (map[string]string, error) {
	if s.metaErr != nil {
		return nil, s.metaErr
	}
	return s.metadata, nil
}

func createInput() []byte {
	return []byte("%PDF-1.4\nInvoice #INV-9 Total: $120.00\n%%EOF")
}

// ==========================
// Scratch file lifecycle
// ==========================

func TestProcess_ScratchFileRemovedAfterSuccess(t *testing.T) {
	stub := &stubEngine{name: "stub", text: "Invoice #INV-9 Total: 120.00"}
	h := NewHandlerWithEngines(DefaultConfig(), logger.NewTestLogger(t), stub)

	result := h.Process(context.Background(), createInput(), models.IntentInvoice)
	require.True(t, result.OK())

	require.NotEmpty(t, stub.seenPath)
	_, err := os.Stat(stub.seenPath)
	assert.True(t, os.IsNotExist(err))
}

func TestProcess_ScratchFileRemovedAfterEngineFailure(t *testing.T) {
	stub := &stubEngine{name: "stub", textErr: errors.New("corrupt xref")}
	h := NewHandlerWithEngines(DefaultConfig(), logger.NewTestLogger(t), stub)

	result := h.Process(context.Background(), createInput(), models.IntentInvoice)
	require.False(t, result.OK())

	require.NotEmpty(t, stub.seenPath)
	_, err := os.Stat(stub.seenPath)
	assert.True(t, os.IsNotExist(err))
}

// ==========================
// Engine selection and fallback
// ==========================

func TestNewHandler_EngineNames(t *testing.T) {
	for _, engine := range []string{EnginePDFCPU, EngineRaw, EngineNone} {
		_, err := NewHandler(Config{Engine: engine}, logger.NewNoOpLogger())
		assert.NoError(t, err, engine)
	}

	_, err := NewHandler(Config{Engine: "ghostscript"}, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestExecute_FallbackEngineServesText(t *testing.T) {
	broken := &stubEngine{name: "primary", textErr: errors.New("parse failed")}
	working := &stubEngine{name: "fallback", text: "Invoice #INV-3", metadata: map[string]string{}}
	h := NewHandlerWithEngines(DefaultConfig(), logger.NewTestLogger(t), broken, working)

	out, err := h.Execute(context.Background(), createInput(), models.IntentInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-3", out.ProcessedContent.ExtractedData["invoice_number"])
}

func TestProcess_AllEnginesFailing(t *testing.T) {
	a := &stubEngine{name: "a", textErr: errors.New("first failure")}
	b := &stubEngine{name: "b", textErr: errors.New("second failure")}
	h := NewHandlerWithEngines(DefaultConfig(), logger.NewTestLogger(t), a, b)

	result := h.Process(context.Background(), createInput(), models.IntentInvoice)
	require.False(t, result.OK())
	assert.Equal(t, "PROCESSING_ERROR", result.Error.Kind)
	assert.Contains(t, result.Error.Details, "second failure")
}

func TestExecute_NoEnginesDegradesToEmptyText(t *testing.T) {
	h, err := NewHandler(Config{Engine: EngineNone}, logger.NewTestLogger(t))
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), createInput(), models.IntentInvoice)
	require.NoError(t, err)

	assert.Empty(t, out.Metadata)
	assert.Empty(t, out.ProcessedContent.ExtractedData)
	assert.Equal(t, "pdf", out.ContentType)
}

func TestExecute_MetadataFailureIsNotFatal(t *testing.T) {
	stub := &stubEngine{name: "stub", text: "plain text", metaErr: errors.New("no info dict")}
	h := NewHandlerWithEngines(DefaultConfig(), logger.NewTestLogger(t), stub)

	out, err := h.Execute(context.Background(), createInput(), models.IntentDocument)
	require.NoError(t, err)
	assert.Empty(t, out.Metadata)
}

// ==========================
// Limits and envelope
// ==========================

func TestProcess_SizeLimit(t *testing.T) {
	stub := &stubEngine{name: "stub", text: "x"}
	h := NewHandlerWithEngines(Config{MaxSizeBytes: 8}, logger.NewTestLogger(t), stub)

	result := h.Process(context.Background(), createInput(), models.IntentDocument)
	require.False(t, result.OK())
	assert.Equal(t, "PROCESSING_ERROR", result.Error.Kind)
	assert.Contains(t, result.Error.Details, "size limit")
}

func TestProcess_SuccessEnvelope(t *testing.T) {
	stub := &stubEngine{
		name:     "stub",
		text:     "Invoice #INV-5 Date: 01/02/2025 Total: $9.99",
		metadata: map[string]string{"title": "Invoice INV-5", "author": "Acme"},
	}
	h := NewHandlerWithEngines(DefaultConfig(), logger.NewTestLogger(t), stub)

	result := h.Process(context.Background(), createInput(), models.IntentInvoice)
	require.True(t, result.OK())

	out, ok := result.Data.(*Output)
	require.True(t, ok)
	assert.Equal(t, "Invoice INV-5", out.Metadata["title"])
	assert.Equal(t, "INV-5", out.ProcessedContent.ExtractedData["invoice_number"])
	assert.Equal(t, "9.99", out.ProcessedContent.ExtractedData["total_amount"])
	assert.Equal(t, "pdf", out.ContentType)
}

// ==========================
// Raw scanner
// ==========================

func TestRawEngine_UncompressedStream(t *testing.T) {
	payload := []byte(`%PDF-1.4
1 0 obj
<< /Length 60 >>
stream
BT
(Invoice ) Tj
(number INV-77) Tj
ET
endstream
endobj
%%EOF`)

	dir := t.TempDir()
	path := dir + "/doc.pdf"
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	e := &rawEngine{}
	text, err := e.ExtractText(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Invoice number INV-77")

	metadata, err := e.ExtractMetadata(path)
	require.NoError(t, err)
	assert.Empty(t, metadata)
}
