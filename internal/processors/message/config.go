// internal/processors/message/config.go
package message

// Config holds the urgency term lists. Scores are whole-word occurrence
// counts over the full message text.
type Config struct {
	HighTerms   []string
	MediumTerms []string
	LowTerms    []string
}

// DefaultConfig returns the stock urgency vocabulary.
func DefaultConfig() Config {
	return Config{
		HighTerms:   []string{"urgent", "asap", "immediately", "critical", "emergency", "deadline", "important", "priority"},
		MediumTerms: []string{"soon", "timely", "prompt", "attention", "please respond", "by tomorrow", "by next week"},
		LowTerms:    []string{"when you can", "at your convenience", "no rush", "fyi", "for your reference"},
	}
}
