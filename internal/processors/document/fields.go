// internal/processors/document/fields.go
package document

import (
	"regexp"
	"strings"

	"docrouter/internal/models"
)

var (
	invoiceNumberPattern = regexp.MustCompile(`(?i)Invoice\s*#?\s*([A-Z0-9-]+)`)
	invoiceDatePattern   = regexp.MustCompile(`Date:\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`)
	invoiceTotalPattern  = regexp.MustCompile(`Total:?\s*[\$€£]?\s*([\d,]+\.?\d*)`)
	invoiceItemPattern   = regexp.MustCompile(`(\d+)\s*x\s*([^\n]+?)\s*[\$€£]?\s*([\d,]+\.?\d*)`)

	regulationIDPattern  = regexp.MustCompile(`(?i)Regulation\s*(?:No\.?|Number|#)?\s*([A-Z0-9-]+)`)
	effectiveDatePattern = regexp.MustCompile(`(?i)Effective\s*Date:\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`)
	requirementPattern   = regexp.MustCompile(`(?:^|\n)(?:•|\*|\d+\.)\s*([^\n]+)`)

	rfqNumberPattern   = regexp.MustCompile(`(?i)RFQ\s*(?:No\.?|Number|#)?\s*([A-Z0-9-]+)`)
	rfqDeadlinePattern = regexp.MustCompile(`(?i)(?:Submission|Due)\s*(?:Date|Deadline):\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`)
	rfqItemPattern     = regexp.MustCompile(`(?:^|\n)(?:•|\*|\d+\.)\s*(\d+)\s*(?:units?|pcs?|pieces?)?\s*(?:of)?\s*([^\n]+)`)
)

// processByIntent recovers intent-specific fields from document text.
// Intents without extraction rules yield an empty field map.
func processByIntent(text string, intent models.Intent) ProcessedContent {
	extracted := make(map[string]interface{})

	switch intent {
	case models.IntentInvoice:
		extractInvoiceFields(text, extracted)
	case models.IntentRegulation:
		extractRegulationFields(text, extracted)
	case models.IntentRFQ:
		extractRFQFields(text, extracted)
	}

	return ProcessedContent{
		Intent:        string(intent),
		ExtractedData: extracted,
	}
}

func extractInvoiceFields(text string, extracted map[string]interface{}) {
	if m := invoiceNumberPattern.FindStringSubmatch(text); m != nil {
		extracted["invoice_number"] = m[1]
	}
	if m := invoiceDatePattern.FindStringSubmatch(text); m != nil {
		extracted["date"] = m[1]
	}
	if m := invoiceTotalPattern.FindStringSubmatch(text); m != nil {
		extracted["total_amount"] = m[1]
	}

	var items []InvoiceItem
	for _, m := range invoiceItemPattern.FindAllStringSubmatch(text, -1) {
		items = append(items, InvoiceItem{
			Quantity:    m[1],
			Description: strings.TrimSpace(m[2]),
			Amount:      m[3],
		})
	}
	if len(items) > 0 {
		extracted["items"] = items
	}
}

func extractRegulationFields(text string, extracted map[string]interface{}) {
	if m := regulationIDPattern.FindStringSubmatch(text); m != nil {
		extracted["regulation_id"] = m[1]
	}
	if m := effectiveDatePattern.FindStringSubmatch(text); m != nil {
		extracted["effective_date"] = m[1]
	}

	var requirements []string
	for _, m := range requirementPattern.FindAllStringSubmatch(text, -1) {
		requirements = append(requirements, strings.TrimSpace(m[1]))
	}
	if len(requirements) > 0 {
		extracted["requirements"] = requirements
	}
}

func extractRFQFields(text string, extracted map[string]interface{}) {
	if m := rfqNumberPattern.FindStringSubmatch(text); m != nil {
		extracted["rfq_number"] = m[1]
	}
	if m := rfqDeadlinePattern.FindStringSubmatch(text); m != nil {
		extracted["submission_deadline"] = m[1]
	}

	var items []RFQItem
	for _, m := range rfqItemPattern.FindAllStringSubmatch(text, -1) {
		items = append(items, RFQItem{
			Quantity:    m[1],
			Description: strings.TrimSpace(m[2]),
		})
	}
	if len(items) > 0 {
		extracted["requested_items"] = items
	}
}
