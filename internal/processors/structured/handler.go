// internal/processors/structured/handler.go
package structured

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"docrouter/internal/common/logger"
	"docrouter/internal/models"
)

var (
	ErrFormatParse = errors.New("FORMAT_PARSE_ERROR")
	ErrProcessing  = errors.New("PROCESSING_ERROR")
)

// Handler extracts, validates and audits key-value payloads.
type Handler struct {
	config Config
	logger logger.Logger
}

// NewHandler creates a structured-data handler.
func NewHandler(cfg Config, log logger.Logger) *Handler {
	return &Handler{config: cfg, logger: log}
}

// Process runs the extraction and always returns a tagged result. Faults of
// any kind, including panics in field handling, become error results.
func (h *Handler) Process(ctx context.Context, text string, intent models.Intent) (result *models.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("structured extraction panicked", map[string]interface{}{
				"intent": string(intent),
				"panic":  fmt.Sprint(r),
			})
			result = models.Failed("PROCESSING_ERROR", fmt.Sprint(r))
		}
	}()

	out, err := h.Execute(ctx, text, intent)
	if err != nil {
		switch {
		case errors.Is(err, ErrFormatParse):
			return models.Failed("FORMAT_PARSE_ERROR", err.Error())
		default:
			return models.Failed("PROCESSING_ERROR", err.Error())
		}
	}
	return models.Succeeded(out)
}

// Execute is the typed extraction entry point.
func (h *Handler) Execute(ctx context.Context, text string, intent models.Intent) (*Output, error) {
	h.logger.Info("processing structured data", map[string]interface{}{
		"intent": string(intent),
	})

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		h.logger.Error("malformed structured payload", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", ErrFormatParse, err.Error())
	}

	extracted := h.extractFields(payload, intent)
	validation, err := h.validateSchema(payload, intent)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProcessing, err.Error())
	}
	anomalies := h.detectAnomalies(payload, intent)

	h.logger.Info("structured extraction completed", map[string]interface{}{
		"intent":    string(intent),
		"valid":     validation.Valid,
		"anomalies": len(anomalies),
	})

	return &Output{
		ExtractedData: extracted,
		Validation:    validation,
		Anomalies:     anomalies,
	}, nil
}

var commonFields = []string{"id", "customer", "date", "reference", "description", "total"}
var invoiceFields = []string{"invoice_number", "due_date", "items", "subtotal", "tax", "total"}
var rfqFields = []string{"items", "deadline", "delivery_address", "contact_person"}

func (h *Handler) extractFields(payload map[string]interface{}, intent models.Intent) map[string]interface{} {
	extracted := make(map[string]interface{})

	copyFields := func(names []string) {
		for _, name := range names {
			if v, ok := payload[name]; ok {
				extracted[name] = v
			}
		}
	}
	copyFields(commonFields)

	switch intent {
	case models.IntentInvoice:
		copyFields(invoiceFields)
		// Derive a total from line items when the payload carries none.
		if _, hasTotal := extracted["total"]; !hasTotal {
			if items, ok := extracted["items"]; ok {
				extracted["calculated_total"] = sumItems(items)
			}
		}
	case models.IntentRFQ:
		copyFields(rfqFields)
	}

	return extracted
}

// sumItems totals price*quantity over a line-item list. Missing prices count
// as 0 and missing quantities as 1.
func sumItems(items interface{}) float64 {
	list, ok := items.([]interface{})
	if !ok {
		return 0
	}
	var total float64
	for _, raw := range list {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		price, _ := toFloat(item["price"])
		qty := 1.0
		if q, ok := toFloat(item["quantity"]); ok {
			qty = q
		}
		total += price * qty
	}
	return total
}

func toFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func (h *Handler) validateSchema(payload map[string]interface{}, intent models.Intent) (Validation, error) {
	schema, ok := h.config.Schemas[intent]
	if !ok {
		schema = h.config.Schemas[models.IntentDataExchange]
	}

	validation := Validation{
		Valid:           true,
		MissingRequired: []string{},
		OptionalPresent: []string{},
	}

	if len(schema.Required) > 0 {
		schemaLoader := gojsonschema.NewGoLoader(map[string]interface{}{
			"type":     "object",
			"required": schema.Required,
		})
		documentLoader := gojsonschema.NewGoLoader(payload)

		result, err := gojsonschema.Validate(schemaLoader, documentLoader)
		if err != nil {
			return Validation{}, fmt.Errorf("schema validation error: %w", err)
		}
		validation.Valid = result.Valid()

		// Report missing fields in schema declaration order rather than the
		// validator's error order.
		for _, name := range schema.Required {
			if _, present := payload[name]; !present {
				validation.MissingRequired = append(validation.MissingRequired, name)
			}
		}
	}

	for _, name := range schema.Optional {
		if _, present := payload[name]; present {
			validation.OptionalPresent = append(validation.OptionalPresent, name)
		}
	}

	return validation, nil
}

func (h *Handler) detectAnomalies(payload map[string]interface{}, intent models.Intent) []string {
	anomalies := []string{}

	// Keys are visited in sorted order so repeated runs agree.
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := payload[k]
		if v == nil {
			anomalies = append(anomalies, fmt.Sprintf("Empty value for field: %s", k))
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			anomalies = append(anomalies, fmt.Sprintf("Empty value for field: %s", k))
		}
	}

	if intent == models.IntentInvoice {
		total, hasTotal := toFloat(payload["total"])
		items, hasItems := payload["items"]
		if hasTotal && hasItems {
			calculated := sumItems(items)
			if diff := total - calculated; diff > 0.01 || diff < -0.01 {
				anomalies = append(anomalies, fmt.Sprintf(
					"Total (%v) doesn't match sum of items (%v)", total, calculated))
			}
		}
	}

	return anomalies
}
