package cache

import (
	"context"
	"time"

	"github.com/meetvoice/message-history-service/internal/domain"
)

// ConversationCache holds recently computed conversation summary lists.
// Entries expire on their TTL and are invalidated when a participant sends
// or reads messages.
type ConversationCache interface {
	Get(ctx context.Context, key string) ([]domain.ConversationSummary, error)
	Set(ctx context.Context, key string, summaries []domain.ConversationSummary, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	BuildKey(username string) string
	Close() error
}
