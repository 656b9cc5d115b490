// internal/processors/message/models.go
package message

// Urgency levels in decreasing priority. Low is the fallback when neither
// higher list scores.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// Contact is the sender profile of a CRM record. Absent values are the
// literal string "Unknown".
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

// Interaction describes one inbound message for CRM purposes.
type Interaction struct {
	Type      string `json:"type"`
	Direction string `json:"direction"`
	Date      string `json:"date"`
	Subject   string `json:"subject"`
	Intent    string `json:"intent"`
	Urgency   string `json:"urgency"`
}

// Product is a quantity/name pair pulled from request wording.
type Product struct {
	Quantity string `json:"quantity"`
	Name     string `json:"name"`
}

// RFQDetails carries quote-request specifics.
type RFQDetails struct {
	Products  []Product `json:"products"`
	Timeframe string    `json:"timeframe"`
}

// ComplaintDetails carries complaint specifics.
type ComplaintDetails struct {
	Issue          string `json:"issue"`
	OrderReference string `json:"order_reference"`
}

// CRMRecord is the normalized representation handed to downstream systems.
type CRMRecord struct {
	Contact          Contact           `json:"contact"`
	Interaction      Interaction       `json:"interaction"`
	ContentSummary   string            `json:"content_summary"`
	NextSteps        []string          `json:"next_steps"`
	RFQDetails       *RFQDetails       `json:"rfq_details,omitempty"`
	ComplaintDetails *ComplaintDetails `json:"complaint_details,omitempty"`
}

// Output is the message extraction result payload. Metadata and Entities
// carry only the keys that were actually found.
type Output struct {
	Metadata map[string]string      `json:"metadata"`
	Urgency  string                 `json:"urgency"`
	Entities map[string]interface{} `json:"entities"`
	CRM      CRMRecord              `json:"crm_format"`
}
