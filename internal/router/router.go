// internal/router/router.go
package router

import (
	"context"
	"fmt"
	"time"

	"docrouter/internal/classifier"
	"docrouter/internal/common/logger"
	"docrouter/internal/common/metrics"
	"docrouter/internal/conversation"
	"docrouter/internal/models"
	"docrouter/internal/processors/document"
	"docrouter/internal/processors/message"
	"docrouter/internal/processors/structured"
)

// Outcome is the full result of routing one input through the pipeline.
type Outcome struct {
	ConversationID string                   `json:"conversation_id"`
	Classification models.Classification    `json:"classification"`
	Result         *models.ExtractionResult `json:"result"`
	History        []models.Entry           `json:"history"`
}

// Router classifies inputs, dispatches them to the matching extractor and
// records each step in the conversation log. Inputs are processed one at a
// time; concurrency is the caller's concern.
type Router struct {
	classifier *classifier.Classifier
	structured *structured.Handler
	message    *message.Handler
	document   *document.Handler
	log        conversation.Log
	logger     logger.Logger
}

// New wires the pipeline together.
func New(
	c *classifier.Classifier,
	structuredH *structured.Handler,
	messageH *message.Handler,
	documentH *document.Handler,
	log conversation.Log,
	lg logger.Logger,
) *Router {
	return &Router{
		classifier: c,
		structured: structuredH,
		message:    messageH,
		document:   documentH,
		log:        log,
		logger:     lg,
	}
}

// Process runs one input through classify, extract and log. An empty
// conversationID starts a new conversation. Returned errors come from the
// log backend only; extraction faults surface inside the Outcome result.
func (r *Router) Process(ctx context.Context, input []byte, conversationID string) (*Outcome, error) {
	if conversationID == "" {
		conversationID = r.log.Create()
	}

	text := string(input)
	classification := r.classifier.Classify(text)

	r.logger.Info("routing input", map[string]interface{}{
		"conversation_id": conversationID,
		"format":          string(classification.Format),
		"intent":          string(classification.Intent),
	})

	err := r.log.Append(ctx, conversationID, models.NewEntry("classification", conversationID, map[string]interface{}{
		"format": string(classification.Format),
		"intent": string(classification.Intent),
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to record classification: %w", err)
	}

	result := r.dispatch(ctx, input, text, classification)

	outcome := "success"
	if !result.OK() {
		outcome = "error"
	}
	metrics.ExtractionsTotal.WithLabelValues(string(classification.Format), outcome).Inc()

	fields := map[string]interface{}{
		"format":  string(classification.Format),
		"outcome": outcome,
	}
	if !result.OK() {
		fields["error"] = result.Error.Kind
		fields["details"] = result.Error.Details
	}
	if err := r.log.Append(ctx, conversationID, models.NewEntry("processing", conversationID, fields)); err != nil {
		return nil, fmt.Errorf("failed to record processing step: %w", err)
	}

	history, err := r.log.Get(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	return &Outcome{
		ConversationID: conversationID,
		Classification: classification,
		Result:         result,
		History:        history,
	}, nil
}

// dispatch routes by format. The switch is exhaustive over the format enum;
// unknown input is rejected without invoking any extractor.
func (r *Router) dispatch(ctx context.Context, raw []byte, text string, c models.Classification) *models.ExtractionResult {
	start := time.Now()
	defer func() {
		metrics.ExtractionDuration.WithLabelValues(string(c.Format)).Observe(time.Since(start).Seconds())
	}()

	switch c.Format {
	case models.FormatStructuredData:
		return r.structured.Process(ctx, text, c.Intent)
	case models.FormatMessage:
		return r.message.Process(ctx, text, c.Intent)
	case models.FormatDocument:
		return r.document.Process(ctx, raw, c.Intent)
	case models.FormatUnknown:
		return models.Failed("PROCESSING_ERROR", "unsupported format")
	default:
		return models.Failed("PROCESSING_ERROR", fmt.Sprintf("unsupported format: %s", c.Format))
	}
}
