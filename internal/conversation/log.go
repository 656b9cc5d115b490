// internal/conversation/log.go
package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"docrouter/internal/common/metrics"
	"docrouter/internal/models"
)

// Log is an append-only trail of pipeline steps keyed by conversation id.
// Entries are immutable once appended and Get returns them in append order.
type Log interface {
	// Create allocates a new conversation and returns its id.
	Create() string

	// Append adds one entry to a conversation, creating the conversation if
	// it does not exist yet. A zero Timestamp is filled with the current time.
	Append(ctx context.Context, id string, entry models.Entry) error

	// Get returns all entries of a conversation in append order. A missing
	// conversation yields an empty slice, not an error.
	Get(ctx context.Context, id string) ([]models.Entry, error)

	// Exists reports whether the conversation has been created.
	Exists(ctx context.Context, id string) bool

	// Last returns the most recently appended entry, if any.
	Last(ctx context.Context, id string) (models.Entry, bool)

	// Search returns the entries whose flattened fields exactly match every
	// key/value pair in query.
	Search(ctx context.Context, id string, query map[string]interface{}) ([]models.Entry, error)

	// Clear removes a conversation and reports whether it existed.
	Clear(ctx context.Context, id string) bool
}

// stamp fills a zero timestamp with the current wall-clock time.
func stamp(entry *models.Entry, id string) {
	if entry.Timestamp == 0 {
		entry.Timestamp = float64(time.Now().UnixNano()) / float64(time.Second)
	}
	entry.ConversationID = id
}

// matches reports whether every query pair appears in the entry, checking
// the fixed keys first and the flattened fields second.
func matches(entry models.Entry, query map[string]interface{}) bool {
	for k, want := range query {
		var got interface{}
		switch k {
		case "step":
			got = entry.Step
		case "conversation_id":
			got = entry.ConversationID
		case "timestamp":
			got = entry.Timestamp
		default:
			got = entry.Fields[k]
		}
		if got != want {
			return false
		}
	}
	return true
}

// MemoryLog keeps conversations in process memory. Appends to the same
// conversation are serialized by a single mutex.
type MemoryLog struct {
	mu            sync.RWMutex
	conversations map[string][]models.Entry
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{conversations: make(map[string][]models.Entry)}
}

func (l *MemoryLog) Create() string {
	id := uuid.New().String()
	l.mu.Lock()
	l.conversations[id] = nil
	l.mu.Unlock()
	return id
}

func (l *MemoryLog) Append(ctx context.Context, id string, entry models.Entry) error {
	stamp(&entry, id)
	l.mu.Lock()
	l.conversations[id] = append(l.conversations[id], entry)
	l.mu.Unlock()
	metrics.ConversationEntriesTotal.Inc()
	return nil
}

func (l *MemoryLog) Get(ctx context.Context, id string) ([]models.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := l.conversations[id]
	out := make([]models.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

func (l *MemoryLog) Exists(ctx context.Context, id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.conversations[id]
	return ok
}

func (l *MemoryLog) Last(ctx context.Context, id string) (models.Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := l.conversations[id]
	if len(entries) == 0 {
		return models.Entry{}, false
	}
	return entries[len(entries)-1], true
}

func (l *MemoryLog) Search(ctx context.Context, id string, query map[string]interface{}) ([]models.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []models.Entry
	for _, e := range l.conversations[id] {
		if matches(e, query) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *MemoryLog) Clear(ctx context.Context, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.conversations[id]
	delete(l.conversations, id)
	return ok
}
