// internal/models/models.go
package models

import (
	"encoding/json"
	"time"
)

// Format is the top-level shape of an input payload.
type Format string

const (
	FormatStructuredData Format = "structured_data"
	FormatMessage        Format = "message"
	FormatDocument       Format = "document"
	FormatUnknown        Format = "unknown"
)

// Intent is the business purpose inferred from content.
type Intent string

const (
	IntentInvoice      Intent = "invoice"
	IntentRFQ          Intent = "rfq"
	IntentComplaint    Intent = "complaint"
	IntentRegulation   Intent = "regulation"
	IntentDataExchange Intent = "data_exchange"
	IntentInquiry      Intent = "inquiry"
	IntentDocument     Intent = "document"
	IntentUnknown      Intent = "unknown"
)

// Classification pairs the detected format with the inferred intent.
// Intent is always populated: either a keyword winner or the per-format default.
type Classification struct {
	Format Format `json:"format"`
	Intent Intent `json:"intent"`
}

// Entry is a single immutable record in a conversation. Step-specific data
// lives in Fields and is flattened into the JSON object alongside the fixed
// keys, matching the wire shape consumers expect.
type Entry struct {
	Step           string
	Timestamp      float64
	ConversationID string
	Fields         map[string]interface{}
}

// NewEntry builds an entry stamped with the current wall-clock time.
func NewEntry(step, conversationID string, fields map[string]interface{}) Entry {
	return Entry{
		Step:           step,
		Timestamp:      float64(time.Now().UnixNano()) / float64(time.Second),
		ConversationID: conversationID,
		Fields:         fields,
	}
}

// MarshalJSON flattens Fields into the top-level object.
func (e Entry) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(e.Fields)+3)
	for k, v := range e.Fields {
		flat[k] = v
	}
	flat["step"] = e.Step
	flat["timestamp"] = e.Timestamp
	flat["conversation_id"] = e.ConversationID
	return json.Marshal(flat)
}

// UnmarshalJSON restores the fixed keys and collects the rest into Fields.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var flat map[string]interface{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if v, ok := flat["step"].(string); ok {
		e.Step = v
	}
	if v, ok := flat["timestamp"].(float64); ok {
		e.Timestamp = v
	}
	if v, ok := flat["conversation_id"].(string); ok {
		e.ConversationID = v
	}
	delete(flat, "step")
	delete(flat, "timestamp")
	delete(flat, "conversation_id")
	if len(flat) > 0 {
		e.Fields = flat
	} else {
		e.Fields = nil
	}
	return nil
}

// ProcessingError is the result-shaped error every extractor returns instead
// of raising. Kind carries the standardized error code.
type ProcessingError struct {
	Kind    string `json:"error"`
	Details string `json:"details"`
}

// ExtractionResult is the tagged outcome of an extractor call. Error == nil
// means success and Data holds the format-specific payload.
type ExtractionResult struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *ProcessingError `json:"error,omitempty"`
}

// OK reports whether the extraction succeeded.
func (r *ExtractionResult) OK() bool {
	return r != nil && r.Error == nil
}

// Failed builds an error-tagged result.
func Failed(kind, details string) *ExtractionResult {
	return &ExtractionResult{Error: &ProcessingError{Kind: kind, Details: details}}
}

// Succeeded builds a success-tagged result.
func Succeeded(data interface{}) *ExtractionResult {
	return &ExtractionResult{Data: data}
}
