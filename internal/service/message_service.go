package service

import (
	"context"
	"fmt"
	"time"

	"github.com/meetvoice/message-history-service/internal/cache"
	"github.com/meetvoice/message-history-service/internal/domain"
	"github.com/meetvoice/message-history-service/internal/repository"
	"github.com/meetvoice/message-history-service/pkg/log"
)

type messageServiceImpl struct {
	repo      repository.MessageRepository
	convCache cache.ConversationCache
}

// NewMessageService creates the flat message read/write service. convCache
// may be nil when no cache is deployed; it is only used for invalidation.
func NewMessageService(repo repository.MessageRepository, convCache cache.ConversationCache) MessageService {
	return &messageServiceImpl{
		repo:      repo,
		convCache: convCache,
	}
}

// GetHistory returns the most recent messages involving username, in
// chronological order. The store is queried newest-first so the limit keeps
// the latest messages, then the page is reversed before returning.
func (s *messageServiceImpl) GetHistory(ctx context.Context, username string, limit int) ([]domain.Message, error) {
	limit = normalizeLimit(limit)

	messages, err := s.repo.ListRecentInvolving(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get message history: %w", err)
	}

	reverseMessages(messages)

	l := log.Ctx(ctx)
	l.Debug().
		Str(log.FieldUsername, username).
		Int(log.FieldCount, len(messages)).
		Msg("history retrieved")

	return messages, nil
}

// GetConversation returns the most recent messages exchanged between userA
// and userB, in chronological order. Same ordering discipline as GetHistory.
func (s *messageServiceImpl) GetConversation(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error) {
	limit = normalizeLimit(limit)

	messages, err := s.repo.ListBetween(ctx, userA, userB, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	reverseMessages(messages)

	return messages, nil
}

func (s *messageServiceImpl) Send(ctx context.Context, req *domain.SendMessageRequest) (*domain.Message, error) {
	msgType := req.MessageType
	if msgType == "" {
		msgType = domain.DefaultMessageType
	}

	msg := &domain.Message{
		Sender:      req.Sender,
		Recipient:   req.Recipient,
		Content:     req.Content,
		MessageType: msgType,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Read:        false,
	}

	if err := s.repo.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	// A new message changes both participants' conversation lists.
	s.invalidateSummaries(ctx, req.Sender, req.Recipient)

	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldSender, req.Sender).
		Str(log.FieldRecipient, req.Recipient).
		Msg("message saved")

	return msg, nil
}

func (s *messageServiceImpl) MarkRead(ctx context.Context, sender, recipient string) (int64, error) {
	readAt := time.Now().UTC().Format(time.RFC3339)

	count, err := s.repo.MarkRead(ctx, sender, recipient, readAt)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}

	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldSender, sender).
		Str(log.FieldRecipient, recipient).
		Int64(log.FieldCount, count).
		Msg("messages marked read")

	return count, nil
}

func (s *messageServiceImpl) DeleteConversation(ctx context.Context, userA, userB string) (int64, error) {
	count, err := s.repo.DeleteBetween(ctx, userA, userB)
	if err != nil {
		return 0, fmt.Errorf("failed to delete conversation: %w", err)
	}

	s.invalidateSummaries(ctx, userA, userB)

	return count, nil
}

func (s *messageServiceImpl) invalidateSummaries(ctx context.Context, users ...string) {
	if s.convCache == nil {
		return
	}
	keys := make([]string, 0, len(users))
	for _, u := range users {
		keys = append(keys, s.convCache.BuildKey(u))
	}
	if err := s.convCache.Del(ctx, keys...); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cache invalidation error")
	}
}

func reverseMessages(messages []domain.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
