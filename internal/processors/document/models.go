// internal/processors/document/models.go
package document

// InvoiceItem is one recognized line item of an invoice document.
type InvoiceItem struct {
	Quantity    string `json:"quantity"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// RFQItem is one requested item of a quote-request document.
type RFQItem struct {
	Quantity    string `json:"quantity"`
	Description string `json:"description"`
}

// ProcessedContent carries the intent-specific fields recovered from the
// document text. ExtractedData stays empty for intents without extraction
// rules.
type ProcessedContent struct {
	Intent        string                 `json:"intent"`
	ExtractedData map[string]interface{} `json:"extracted_data"`
}

// Output is the document extraction result payload.
type Output struct {
	Metadata         map[string]string `json:"metadata"`
	ProcessedContent ProcessedContent  `json:"processed_content"`
	ContentType      string            `json:"content_type"`
}
