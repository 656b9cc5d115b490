// internal/conversation/redis.go
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"docrouter/internal/common/logger"
	"docrouter/internal/common/metrics"
	"docrouter/internal/models"
)

const keyPrefix = "conv:"

// RedisLog persists conversations in redis. Each conversation is a list of
// flat-JSON entries plus a marker key so empty conversations still exist.
type RedisLog struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisLog wraps an existing client.
func NewRedisLog(client *redis.Client, log logger.Logger) *RedisLog {
	return &RedisLog{client: client, logger: log}
}

func entriesKey(id string) string { return keyPrefix + id + ":entries" }
func markerKey(id string) string  { return keyPrefix + id + ":meta" }

func (l *RedisLog) Create() string {
	id := uuid.New().String()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := l.client.Set(ctx, markerKey(id), time.Now().Unix(), 0).Err(); err != nil {
		l.logger.Warn("failed to persist conversation marker", map[string]interface{}{
			"conversation_id": id,
			"error":           err.Error(),
		})
	}
	return id
}

func (l *RedisLog) Append(ctx context.Context, id string, entry models.Entry) error {
	stamp(&entry, id)
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.Set(ctx, markerKey(id), time.Now().Unix(), 0)
	pipe.RPush(ctx, entriesKey(id), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}
	metrics.ConversationEntriesTotal.Inc()
	return nil
}

func (l *RedisLog) Get(ctx context.Context, id string) ([]models.Entry, error) {
	raw, err := l.client.LRange(ctx, entriesKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	entries := make([]models.Entry, 0, len(raw))
	for _, item := range raw {
		var e models.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("corrupt entry in conversation %s: %w", id, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (l *RedisLog) Exists(ctx context.Context, id string) bool {
	n, err := l.client.Exists(ctx, markerKey(id)).Result()
	if err != nil {
		l.logger.Warn("conversation existence check failed", map[string]interface{}{
			"conversation_id": id,
			"error":           err.Error(),
		})
		return false
	}
	return n > 0
}

func (l *RedisLog) Last(ctx context.Context, id string) (models.Entry, bool) {
	raw, err := l.client.LIndex(ctx, entriesKey(id), -1).Result()
	if err != nil {
		return models.Entry{}, false
	}
	var e models.Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return models.Entry{}, false
	}
	return e, true
}

func (l *RedisLog) Search(ctx context.Context, id string, query map[string]interface{}) ([]models.Entry, error) {
	entries, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []models.Entry
	for _, e := range entries {
		if matches(e, query) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *RedisLog) Clear(ctx context.Context, id string) bool {
	n, err := l.client.Del(ctx, markerKey(id), entriesKey(id)).Result()
	if err != nil {
		l.logger.Warn("failed to clear conversation", map[string]interface{}{
			"conversation_id": id,
			"error":           err.Error(),
		})
		return false
	}
	return n > 0
}
