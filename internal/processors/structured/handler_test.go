// internal/processors/structured/handler_test.go
package structured

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrouter/internal/common/logger"
	"docrouter/internal/models"
)

// ==========================
// Test Helpers
// ==========================

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(DefaultConfig(), logger.NewTestLogger(t))
}

// ==========================
// Parsing and error tagging
// ==========================

func TestProcess_MalformedPayload(t *testing.T) {
	h := createTestHandler(t)

	tests := []struct {
		name  string
		input string
	}{
		{"truncated object", `{"customer": "Acme"`},
		{"not json at all", "hello world"},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.Process(context.Background(), tt.input, models.IntentInvoice)
			require.False(t, result.OK())
			assert.Equal(t, "FORMAT_PARSE_ERROR", result.Error.Kind)
			assert.NotEmpty(t, result.Error.Details)
			assert.Nil(t, result.Data)
		})
	}
}

func TestExecute_MalformedPayloadSentinel(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), `{"broken`, models.IntentInvoice)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormatParse))
}

// ==========================
// Field extraction
// ==========================

func TestExecute_InvoiceFieldExtraction(t *testing.T) {
	h := createTestHandler(t)

	input := `{
		"customer": "Acme Corp",
		"invoice_number": "INV-42",
		"date": "2025-04-01",
		"due_date": "2025-05-01",
		"subtotal": 90.0,
		"tax": 10.0,
		"total": 100.0,
		"internal_note": "not extracted"
	}`

	out, err := h.Execute(context.Background(), input, models.IntentInvoice)
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", out.ExtractedData["customer"])
	assert.Equal(t, "INV-42", out.ExtractedData["invoice_number"])
	assert.Equal(t, 100.0, out.ExtractedData["total"])
	assert.Equal(t, 10.0, out.ExtractedData["tax"])
	assert.NotContains(t, out.ExtractedData, "internal_note")
	assert.NotContains(t, out.ExtractedData, "calculated_total")
}

func TestExecute_InvoiceCalculatedTotal(t *testing.T) {
	h := createTestHandler(t)

	input := `{
		"customer": "Acme Corp",
		"invoice_number": "INV-7",
		"items": [
			{"description": "widget", "price": 10.0, "quantity": 3},
			{"description": "gadget", "price": 5.0},
			{"description": "freebie"}
		]
	}`

	out, err := h.Execute(context.Background(), input, models.IntentInvoice)
	require.NoError(t, err)

	// 10*3 + 5*1 (missing quantity defaults to 1) + 0*1 (missing price
	// defaults to 0).
	assert.Equal(t, 35.0, out.ExtractedData["calculated_total"])
	assert.NotContains(t, out.ExtractedData, "total")
}

func TestExecute_RFQFieldExtraction(t *testing.T) {
	h := createTestHandler(t)

	input := `{
		"customer": "Beta LLC",
		"items": [{"description": "bolts", "quantity": 500}],
		"deadline": "2025-06-15",
		"contact_person": "J. Doe",
		"due_date": "ignored for rfq"
	}`

	out, err := h.Execute(context.Background(), input, models.IntentRFQ)
	require.NoError(t, err)

	assert.Equal(t, "Beta LLC", out.ExtractedData["customer"])
	assert.Equal(t, "2025-06-15", out.ExtractedData["deadline"])
	assert.Equal(t, "J. Doe", out.ExtractedData["contact_person"])
	assert.NotContains(t, out.ExtractedData, "due_date")
	assert.NotContains(t, out.ExtractedData, "calculated_total")
}

func TestExecute_UnknownIntentExtractsCommonFieldsOnly(t *testing.T) {
	h := createTestHandler(t)

	input := `{"id": "X1", "customer": "Acme", "invoice_number": "INV-9", "deadline": "soon"}`

	out, err := h.Execute(context.Background(), input, models.IntentDataExchange)
	require.NoError(t, err)

	assert.Equal(t, "X1", out.ExtractedData["id"])
	assert.Equal(t, "Acme", out.ExtractedData["customer"])
	assert.NotContains(t, out.ExtractedData, "invoice_number")
	assert.NotContains(t, out.ExtractedData, "deadline")
}

// ==========================
// Schema validation
// ==========================

func TestExecute_Validation(t *testing.T) {
	h := createTestHandler(t)

	tests := []struct {
		name            string
		input           string
		intent          models.Intent
		valid           bool
		missingRequired []string
		optionalPresent []string
	}{
		{
			"complete invoice",
			`{"customer": "Acme", "invoice_number": "INV-1", "total": 50, "date": "2025-01-01"}`,
			models.IntentInvoice,
			true, []string{}, []string{"date"},
		},
		{
			"invoice missing two required",
			`{"customer": "Acme", "items": []}`,
			models.IntentInvoice,
			false, []string{"invoice_number", "total"}, []string{"items"},
		},
		{
			"rfq missing items",
			`{"customer": "Acme", "deadline": "2025-06-01"}`,
			models.IntentRFQ,
			false, []string{"items"}, []string{"deadline"},
		},
		{
			"data exchange always valid",
			`{"anything": "goes"}`,
			models.IntentDataExchange,
			true, []string{}, []string{},
		},
		{
			"unmapped intent falls back to empty schema",
			`{"anything": "goes"}`,
			models.IntentComplaint,
			true, []string{}, []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), tt.input, tt.intent)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, out.Validation.Valid)
			assert.Equal(t, tt.missingRequired, out.Validation.MissingRequired)
			assert.Equal(t, tt.optionalPresent, out.Validation.OptionalPresent)
		})
	}
}

// ==========================
// Anomaly detection
// ==========================

func TestExecute_EmptyValueAnomaliesAreSorted(t *testing.T) {
	h := createTestHandler(t)

	input := `{"zeta": null, "alpha": "", "beta": "   ", "ok": "value"}`

	out, err := h.Execute(context.Background(), input, models.IntentDataExchange)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Empty value for field: alpha",
		"Empty value for field: beta",
		"Empty value for field: zeta",
	}, out.Anomalies)
}

func TestExecute_InvoiceTotalMismatch(t *testing.T) {
	h := createTestHandler(t)

	input := `{
		"customer": "Acme",
		"invoice_number": "INV-1",
		"total": 100,
		"items": [{"price": 40, "quantity": 2}]
	}`

	out, err := h.Execute(context.Background(), input, models.IntentInvoice)
	require.NoError(t, err)

	require.Len(t, out.Anomalies, 1)
	assert.Contains(t, out.Anomalies[0], "Total (100)")
	assert.Contains(t, out.Anomalies[0], "sum of items (80)")
}

func TestExecute_InvoiceTotalWithinTolerance(t *testing.T) {
	h := createTestHandler(t)

	input := `{
		"customer": "Acme",
		"invoice_number": "INV-1",
		"total": 80.005,
		"items": [{"price": 40, "quantity": 2}]
	}`

	out, err := h.Execute(context.Background(), input, models.IntentInvoice)
	require.NoError(t, err)
	assert.Empty(t, out.Anomalies)
}

func TestExecute_MismatchOnlyCheckedForInvoices(t *testing.T) {
	h := createTestHandler(t)

	input := `{"customer": "Acme", "total": 100, "items": [{"price": 1, "quantity": 1}]}`

	out, err := h.Execute(context.Background(), input, models.IntentDataExchange)
	require.NoError(t, err)
	assert.Empty(t, out.Anomalies)
}

// ==========================
// Result envelope
// ==========================

func TestProcess_SuccessEnvelope(t *testing.T) {
	h := createTestHandler(t)

	result := h.Process(context.Background(), `{"customer": "Acme", "invoice_number": "I1", "total": 5}`, models.IntentInvoice)
	require.True(t, result.OK())

	out, ok := result.Data.(*Output)
	require.True(t, ok)
	assert.True(t, out.Validation.Valid)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkProcess_Invoice(b *testing.B) {
	h := NewHandler(DefaultConfig(), logger.NewNoOpLogger())
	input := `{"customer": "Acme", "invoice_number": "INV-1", "total": 80, "items": [{"price": 40, "quantity": 2}]}`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Process(context.Background(), input, models.IntentInvoice)
	}
}
