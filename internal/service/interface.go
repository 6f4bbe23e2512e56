package service

import (
	"context"

	"github.com/meetvoice/message-history-service/internal/domain"
)

// MessageService covers the flat message operations: raw history, pairwise
// conversation reads, sending, read receipts, and conversation deletion.
type MessageService interface {
	GetHistory(ctx context.Context, username string, limit int) ([]domain.Message, error)
	GetConversation(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error)
	Send(ctx context.Context, req *domain.SendMessageRequest) (*domain.Message, error)
	MarkRead(ctx context.Context, sender, recipient string) (int64, error)
	DeleteConversation(ctx context.Context, userA, userB string) (int64, error)
}

// ConversationService builds the per-user conversation summary list: one
// entry per counterpart, enriched from the profile stores.
type ConversationService interface {
	ListConversations(ctx context.Context, username string) ([]domain.ConversationSummary, error)
}

// PresenceService tracks who is connected. It requires the relational store;
// without it every call returns ErrPresenceUnavailable.
type PresenceService interface {
	Connect(ctx context.Context, username string) error
	Disconnect(ctx context.Context, username string) error
	OnlineUsers(ctx context.Context) ([]string, error)
	Status(ctx context.Context, username string) (bool, error)
}
