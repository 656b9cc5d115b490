// internal/processors/message/handler.go
package message

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"docrouter/internal/common/logger"
	"docrouter/internal/models"
)

var (
	senderPattern    = regexp.MustCompile(`From:\s+([^<\n]+)(?:<([^>]+)>)?`)
	recipientPattern = regexp.MustCompile(`To:\s+([^<\n]+)(?:<([^>]+)>)?`)
	subjectPattern   = regexp.MustCompile(`Subject:\s+(.+)`)
	datePattern      = regexp.MustCompile(`Date:\s+(.+)`)

	bodyPattern     = regexp.MustCompile(`(?s)From:[^\n]*\n(?:To:[^\n]*\n)?Subject:[^\n]*\n(?:Date:[^\n]*\n)?(.*)`)
	greetingPattern = regexp.MustCompile(`(?im)^((?:Dear|Hello|Hi|Good morning|Good afternoon|Good evening)[^,\n]*,?)`)

	signaturePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)(?:Regards|Sincerely|Best regards|Thanks|Thank you|Cheers),?\s*\n+(.*?)$`),
		regexp.MustCompile(`(?s)--\s*\n+(.*?)$`),
	}

	personPattern  = regexp.MustCompile(`(?:(?:my|I am|name is|this is)\s+)([A-Z][a-z]+(?: [A-Z][a-z]+)*)`)
	companyPattern = regexp.MustCompile(`(?:(?:from|at|with|company)\s+)([A-Z][a-zA-Z0-9\s&]+(?:Inc|LLC|Ltd|Corp|Corporation|Company)?)`)
	phonePattern   = regexp.MustCompile(`\b(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)

	productPattern   = regexp.MustCompile(`(\d+)\s+(?:units of|pieces of|)?\s*([a-zA-Z0-9\s\-]+?)(?:\.|\n|,|\s+for|\s+at|\s+with)`)
	timeframePattern = regexp.MustCompile(`(?i)(?:within|by|before)\s+(?:the\s+)?(?:next|coming)?\s*(\d+\s+(?:days?|weeks?|months?)|[a-zA-Z]+day|[a-zA-Z]+\s+\d+(?:st|nd|rd|th)?)`)

	issuePattern = regexp.MustCompile(`(?i)(?:issue|problem|complaint|error|mistake|defective|broken|damaged|faulty)\s+(?:with|about|regarding)?\s+([^.!?\n]+)`)
	orderPattern = regexp.MustCompile(`(?i)(?:order|invoice|transaction|reference)\s+(?:number|#|id|code)?\s*[:#]?\s*([a-zA-Z0-9\-]+)`)
)

// Handler extracts metadata, urgency, entities and a CRM record from
// correspondence text.
type Handler struct {
	config      Config
	logger      logger.Logger
	highTerms   []*regexp.Regexp
	mediumTerms []*regexp.Regexp
	lowTerms    []*regexp.Regexp
}

// NewHandler creates a message handler with compiled urgency vocabulary.
func NewHandler(cfg Config, log logger.Logger) *Handler {
	return &Handler{
		config:      cfg,
		logger:      log,
		highTerms:   compileTerms(cfg.HighTerms),
		mediumTerms: compileTerms(cfg.MediumTerms),
		lowTerms:    compileTerms(cfg.LowTerms),
	}
}

func compileTerms(terms []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(terms))
	for _, t := range terms {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(t)+`\b`))
	}
	return out
}

// Process runs the extraction and always returns a tagged result.
func (h *Handler) Process(ctx context.Context, text string, intent models.Intent) (result *models.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("message extraction panicked", map[string]interface{}{
				"intent": string(intent),
				"panic":  fmt.Sprint(r),
			})
			result = models.Failed("PROCESSING_ERROR", fmt.Sprint(r))
		}
	}()

	out, err := h.Execute(ctx, text, intent)
	if err != nil {
		return models.Failed("PROCESSING_ERROR", err.Error())
	}
	return models.Succeeded(out)
}

// Execute is the typed extraction entry point.
func (h *Handler) Execute(ctx context.Context, text string, intent models.Intent) (*Output, error) {
	h.logger.Info("processing message", map[string]interface{}{
		"intent": string(intent),
	})

	metadata := extractMetadata(text)
	sections := extractSections(text)
	urgency := h.determineUrgency(text, intent)
	entities := extractEntities(text, intent)
	crm := buildCRMRecord(metadata, sections, urgency, entities, intent)

	h.logger.Info("message extraction completed", map[string]interface{}{
		"intent":  string(intent),
		"urgency": urgency,
	})

	return &Output{
		Metadata: metadata,
		Urgency:  urgency,
		Entities: entities,
		CRM:      crm,
	}, nil
}

func extractMetadata(text string) map[string]string {
	metadata := make(map[string]string)

	if m := senderPattern.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		metadata["sender_name"] = name
		if m[2] != "" {
			metadata["sender_email"] = m[2]
		} else {
			metadata["sender_email"] = name
		}
	}

	if m := recipientPattern.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		metadata["recipient_name"] = name
		if m[2] != "" {
			metadata["recipient_email"] = m[2]
		} else {
			metadata["recipient_email"] = name
		}
	}

	if m := subjectPattern.FindStringSubmatch(text); m != nil {
		metadata["subject"] = strings.TrimSpace(m[1])
	}
	if m := datePattern.FindStringSubmatch(text); m != nil {
		metadata["date"] = strings.TrimSpace(m[1])
	}

	return metadata
}

// extractSections strips the header block and splits the body into greeting,
// main content and signature. Keys are present only when found.
func extractSections(text string) map[string]string {
	body := text
	if m := bodyPattern.FindStringSubmatch(text); m != nil {
		body = strings.TrimSpace(m[1])
	}

	sections := make(map[string]string)

	if m := greetingPattern.FindStringSubmatch(body); m != nil {
		sections["greeting"] = strings.TrimSpace(m[1])
		body = strings.TrimSpace(body[len(m[0]):])
	}

	for _, p := range signaturePatterns {
		if m := p.FindStringSubmatch(body); m != nil {
			sections["signature"] = strings.TrimSpace(m[1])
			if idx := strings.LastIndex(body, m[0]); idx >= 0 {
				body = strings.TrimSpace(body[:idx])
			}
			break
		}
	}

	sections["body"] = strings.TrimSpace(body)
	return sections
}

// determineUrgency scores the three term lists and applies the intent
// modifier. The final level consults high and medium scores only; low is
// what remains when neither fires.
func (h *Handler) determineUrgency(text string, intent models.Intent) string {
	high := countMatches(h.highTerms, text)
	medium := countMatches(h.mediumTerms, text)
	_ = countMatches(h.lowTerms, text)

	switch intent {
	case models.IntentComplaint:
		high++
	case models.IntentRFQ:
		medium++
	}

	if high > 0 {
		return UrgencyHigh
	}
	if medium > 0 {
		return UrgencyMedium
	}
	return UrgencyLow
}

func countMatches(terms []*regexp.Regexp, text string) int {
	n := 0
	for _, t := range terms {
		n += len(t.FindAllStringIndex(text, -1))
	}
	return n
}

func extractEntities(text string, intent models.Intent) map[string]interface{} {
	entities := make(map[string]interface{})

	if m := personPattern.FindStringSubmatch(text); m != nil {
		entities["person_name"] = m[1]
	}
	if m := companyPattern.FindStringSubmatch(text); m != nil {
		entities["company"] = strings.TrimSpace(m[1])
	}
	if m := phonePattern.FindString(text); m != "" {
		entities["phone"] = m
	}

	switch intent {
	case models.IntentRFQ:
		if matches := productPattern.FindAllStringSubmatch(text, -1); len(matches) > 0 {
			products := make([]Product, 0, len(matches))
			for _, m := range matches {
				products = append(products, Product{Quantity: m[1], Name: strings.TrimSpace(m[2])})
			}
			entities["products"] = products
		}
		if m := timeframePattern.FindStringSubmatch(text); m != nil {
			entities["timeframe"] = m[1]
		}
	case models.IntentComplaint:
		if m := issuePattern.FindStringSubmatch(text); m != nil {
			entities["issue"] = strings.TrimSpace(m[1])
		}
		if m := orderPattern.FindStringSubmatch(text); m != nil {
			entities["order_reference"] = strings.TrimSpace(m[1])
		}
	}

	return entities
}

func buildCRMRecord(metadata, sections map[string]string, urgency string, entities map[string]interface{}, intent models.Intent) CRMRecord {
	record := CRMRecord{
		Contact: Contact{
			Name:    orUnknown(metadata["sender_name"]),
			Email:   orUnknown(metadata["sender_email"]),
			Company: orUnknownEntity(entities, "company"),
			Phone:   orUnknownEntity(entities, "phone"),
		},
		Interaction: Interaction{
			Type:      "email",
			Direction: "inbound",
			Date:      orUnknown(metadata["date"]),
			Subject:   orUnknown(metadata["subject"]),
			Intent:    string(intent),
			Urgency:   urgency,
		},
		ContentSummary: summarize(sections["body"]),
		NextSteps:      suggestNextSteps(intent, urgency),
	}

	switch intent {
	case models.IntentRFQ:
		details := &RFQDetails{Products: []Product{}, Timeframe: "Not specified"}
		if p, ok := entities["products"].([]Product); ok {
			details.Products = p
		}
		if tf, ok := entities["timeframe"].(string); ok {
			details.Timeframe = tf
		}
		record.RFQDetails = details
	case models.IntentComplaint:
		details := &ComplaintDetails{Issue: "Not specified", OrderReference: "Not specified"}
		if v, ok := entities["issue"].(string); ok {
			details.Issue = v
		}
		if v, ok := entities["order_reference"].(string); ok {
			details.OrderReference = v
		}
		record.ComplaintDetails = details
	}

	return record
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}

func orUnknownEntity(entities map[string]interface{}, key string) string {
	if v, ok := entities[key].(string); ok && v != "" {
		return v
	}
	return "Unknown"
}

// summarize truncates the body to 100 characters with an ellipsis marker.
func summarize(body string) string {
	runes := []rune(body)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return body
}

func suggestNextSteps(intent models.Intent, urgency string) []string {
	steps := []string{}

	switch intent {
	case models.IntentRFQ:
		steps = append(steps, "Prepare quotation for requested items")
		switch urgency {
		case UrgencyHigh:
			steps = append(steps, "Contact customer within 4 business hours")
		case UrgencyMedium:
			steps = append(steps, "Contact customer within 1 business day")
		default:
			steps = append(steps, "Contact customer within 2 business days")
		}
	case models.IntentComplaint:
		steps = append(steps, "Investigate the reported issue")
		switch urgency {
		case UrgencyHigh:
			steps = append(steps, "Contact customer within 2 business hours")
			steps = append(steps, "Escalate to support manager")
		case UrgencyMedium:
			steps = append(steps, "Contact customer within 8 business hours")
		default:
			steps = append(steps, "Contact customer within 1 business day")
		}
	case models.IntentInquiry:
		if urgency == UrgencyHigh {
			steps = append(steps, "Respond within 1 business day")
		} else {
			steps = append(steps, "Respond within 2 business days")
		}
	}

	return steps
}
