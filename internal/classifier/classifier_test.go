// internal/classifier/classifier_test.go
package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docrouter/internal/common/logger"
	"docrouter/internal/models"
)

// ==========================
// Test Helpers
// ==========================

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	return New(DefaultConfig(), logger.NewTestLogger(t))
}

// ==========================
// Format detection
// ==========================

func TestClassify_FormatDetection(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name     string
		input    string
		expected models.Format
	}{
		{"json object", `{"invoice_number": "INV-1"}`, models.FormatStructuredData},
		{"json array", `[{"id": 1}, {"id": 2}]`, models.FormatStructuredData},
		{"json with leading whitespace", "  \n {\"a\": 1}", models.FormatStructuredData},
		{"malformed json", `{"a": }`, models.FormatUnknown},
		{
			"email with from and subject",
			"From: alice@example.com\nSubject: Hello\n\nHi there",
			models.FormatMessage,
		},
		{
			"email quote marker plus to header",
			"To: bob@example.com\n\nOn Monday, alice@example.com wrote:\n> hi",
			models.FormatMessage,
		},
		{
			"single header is not enough",
			"Subject: standalone line with no other evidence",
			models.FormatUnknown,
		},
		{"pdf magic prefix", "%PDF-1.4\n%binary", models.FormatDocument},
		{"pdf prefix not at start", " %PDF-1.4", models.FormatUnknown},
		{"plain text", "hello world", models.FormatUnknown},
		{"empty", "", models.FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.input).Format)
		})
	}
}

func TestClassify_StructuredDataWinsOverHeaders(t *testing.T) {
	c := newTestClassifier(t)

	// Parseable JSON is classified as structured data even when the values
	// look like correspondence headers.
	input := `{"body": "From: a@b.com Subject: hi", "note": "x@y.com wrote:"}`
	assert.Equal(t, models.FormatStructuredData, c.Classify(input).Format)
}

// ==========================
// Intent detection
// ==========================

func TestClassify_IntentKeywords(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name     string
		input    string
		expected models.Intent
	}{
		{"invoice terms", "Please find the invoice attached, payment is due", models.IntentInvoice},
		{"rfq terms", "We would like a quotation with pricing for 50 units", models.IntentRFQ},
		{"complaint terms", "I am dissatisfied, this is a problem and a complaint", models.IntentComplaint},
		{"regulation terms", "New compliance regulation and legal requirement", models.IntentRegulation},
		{"case insensitive", "INVOICE PAYMENT overdue", models.IntentInvoice},
		{"substring does not count", "the billboard was repainted", models.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.input).Intent)
		})
	}
}

func TestClassify_IntentTieBreakIsDeclarationOrder(t *testing.T) {
	c := newTestClassifier(t)

	// One invoice keyword and one complaint keyword tie at score 1;
	// invoice precedes complaint in the table and wins. Repeated runs
	// must agree.
	input := "there is a problem with the payment"
	first := c.Classify(input).Intent
	assert.Equal(t, models.IntentInvoice, first)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify(input).Intent)
	}
}

func TestClassify_HigherScoreBeatsTableOrder(t *testing.T) {
	c := newTestClassifier(t)

	// Two complaint keywords outrank one invoice keyword regardless of
	// table position.
	input := "the payment process is a problem and I am unhappy"
	assert.Equal(t, models.IntentComplaint, c.Classify(input).Intent)
}

func TestClassify_AddingKeywordNeverLowersScore(t *testing.T) {
	c := newTestClassifier(t)

	base := "we need a quote"
	assert.Equal(t, models.IntentRFQ, c.Classify(base).Intent)
	assert.Equal(t, models.IntentRFQ, c.Classify(base+" and updated pricing").Intent)
}

func TestClassify_FormatDefaults(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name     string
		input    string
		expected models.Classification
	}{
		{
			"neutral json",
			`{"temperature": 20.5, "unit": "celsius"}`,
			models.Classification{Format: models.FormatStructuredData, Intent: models.IntentDataExchange},
		},
		{
			"neutral email",
			"From: a@b.com\nTo: c@d.com\n\nSee you at the meeting.",
			models.Classification{Format: models.FormatMessage, Intent: models.IntentInquiry},
		},
		{
			"neutral pdf",
			"%PDF-1.7 plain narrative content",
			models.Classification{Format: models.FormatDocument, Intent: models.IntentDocument},
		},
		{
			"neutral unknown",
			"nothing recognizable here",
			models.Classification{Format: models.FormatUnknown, Intent: models.IntentUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.input))
		})
	}
}

func TestClassify_KeywordBeatsFormatDefault(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify(`{"type": "invoice", "total": 100}`)
	assert.Equal(t, models.FormatStructuredData, got.Format)
	assert.Equal(t, models.IntentInvoice, got.Intent)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkClassify(b *testing.B) {
	c := New(DefaultConfig(), logger.NewNoOpLogger())
	input := "From: buyer@example.com\nSubject: Request for quote\n\nPlease send a quotation with pricing for 100 units."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Classify(input)
	}
}
