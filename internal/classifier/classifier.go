// internal/classifier/classifier.go
package classifier

import (
	"encoding/json"
	"regexp"
	"strings"

	"docrouter/internal/common/logger"
	"docrouter/internal/common/metrics"
	"docrouter/internal/models"
)

// intentKeywords binds one intent to its trigger terms. Declaration order of
// the table is the tie-break order, so it is a slice rather than a map.
type intentKeywords struct {
	Intent   models.Intent
	Keywords []string
}

// Config holds the classification heuristics. The zero value is unusable;
// start from DefaultConfig.
type Config struct {
	EmailPatterns  []string
	EmailThreshold int
	IntentTable    []intentKeywords
	FormatDefaults map[models.Format]models.Intent
}

// DefaultConfig returns the stock heuristics.
func DefaultConfig() Config {
	return Config{
		EmailPatterns: []string{
			`From:\s+.*@.*\..+`,
			`To:\s+.*@.*\..+`,
			`Subject:`,
			`.*@.*\..+\s+wrote:`,
		},
		EmailThreshold: 2,
		IntentTable: []intentKeywords{
			{models.IntentInvoice, []string{"invoice", "payment", "bill", "amount due", "paid", "charge"}},
			{models.IntentRFQ, []string{"quote", "quotation", "rfq", "request for quote", "pricing"}},
			{models.IntentComplaint, []string{"complaint", "issue", "problem", "dissatisfied", "unhappy", "disappointed"}},
			{models.IntentRegulation, []string{"regulation", "compliance", "law", "legal", "requirement", "standard"}},
		},
		FormatDefaults: map[models.Format]models.Intent{
			models.FormatStructuredData: models.IntentDataExchange,
			models.FormatMessage:        models.IntentInquiry,
			models.FormatDocument:       models.IntentDocument,
			models.FormatUnknown:        models.IntentUnknown,
		},
	}
}

// Classifier determines the format and intent of raw input text. It never
// fails: unrecognized input is classified as unknown/unknown.
type Classifier struct {
	emailPatterns  []*regexp.Regexp
	emailThreshold int
	intents        []compiledIntent
	defaults       map[models.Format]models.Intent
	logger         logger.Logger
}

type compiledIntent struct {
	intent   models.Intent
	keywords []*regexp.Regexp
}

// New compiles the configured heuristics.
func New(cfg Config, log logger.Logger) *Classifier {
	c := &Classifier{
		emailThreshold: cfg.EmailThreshold,
		defaults:       cfg.FormatDefaults,
		logger:         log,
	}
	for _, p := range cfg.EmailPatterns {
		c.emailPatterns = append(c.emailPatterns, regexp.MustCompile(`(?i)`+p))
	}
	for _, row := range cfg.IntentTable {
		ci := compiledIntent{intent: row.Intent}
		for _, kw := range row.Keywords {
			ci.keywords = append(ci.keywords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		c.intents = append(c.intents, ci)
	}
	return c
}

// Classify determines format then intent for one input.
func (c *Classifier) Classify(text string) models.Classification {
	format := c.detectFormat(text)
	intent := c.detectIntent(text, format)

	result := models.Classification{Format: format, Intent: intent}
	c.logger.Info("input classified", map[string]interface{}{
		"format": string(format),
		"intent": string(intent),
	})
	metrics.ClassificationsTotal.WithLabelValues(string(format), string(intent)).Inc()
	return result
}

func (c *Classifier) detectFormat(text string) models.Format {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var v interface{}
		if json.Unmarshal([]byte(trimmed), &v) == nil {
			return models.FormatStructuredData
		}
	}

	indicators := 0
	for _, p := range c.emailPatterns {
		if p.MatchString(text) {
			indicators++
		}
	}
	if indicators >= c.emailThreshold {
		return models.FormatMessage
	}

	if strings.HasPrefix(text, "%PDF-") {
		return models.FormatDocument
	}

	return models.FormatUnknown
}

// detectIntent counts whole-word keyword occurrences per intent. The first
// intent in table order holding the maximum positive score wins, so ties
// resolve deterministically. With no hits at all the format default applies.
func (c *Classifier) detectIntent(text string, format models.Format) models.Intent {
	best := models.IntentUnknown
	bestScore := 0
	for _, ci := range c.intents {
		score := 0
		for _, kw := range ci.keywords {
			score += len(kw.FindAllStringIndex(text, -1))
		}
		if score > bestScore {
			best = ci.intent
			bestScore = score
		}
	}
	if bestScore > 0 {
		return best
	}

	if def, ok := c.defaults[format]; ok {
		return def
	}
	return models.IntentUnknown
}
