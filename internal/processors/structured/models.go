// internal/processors/structured/models.go
package structured

// Validation reports how the payload fared against the intent schema.
type Validation struct {
	Valid           bool     `json:"valid"`
	MissingRequired []string `json:"missing_required"`
	OptionalPresent []string `json:"optional_present"`
}

// Output is the structured-data extraction result payload.
type Output struct {
	ExtractedData map[string]interface{} `json:"extracted_data"`
	Validation    Validation             `json:"validation"`
	Anomalies     []string               `json:"anomalies"`
}
