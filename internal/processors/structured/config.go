// internal/processors/structured/config.go
package structured

import "docrouter/internal/models"

// Schema lists the fields a payload must and may carry for one intent.
type Schema struct {
	Required []string
	Optional []string
}

// Config holds the extraction schemas keyed by intent. Intents without an
// entry fall back to the empty data_exchange schema.
type Config struct {
	Schemas map[models.Intent]Schema
}

// DefaultConfig returns the stock schema table.
func DefaultConfig() Config {
	return Config{
		Schemas: map[models.Intent]Schema{
			models.IntentInvoice: {
				Required: []string{"customer", "invoice_number", "total"},
				Optional: []string{"items", "date", "due_date", "payment_terms"},
			},
			models.IntentRFQ: {
				Required: []string{"customer", "items"},
				Optional: []string{"deadline", "delivery_address", "contact_person"},
			},
			models.IntentDataExchange: {},
		},
	}
}
