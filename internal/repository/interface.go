package repository

import (
	"context"

	"github.com/meetvoice/message-history-service/internal/domain"
)

// MessageRepository is the read/write adapter over the persisted message
// stream.
//
// ListInvolving scans every message where user is a participant, sorted
// ascending by timestamp at the store. The conversation fold relies on this
// scan order: the last message seen for a counterpart must be its latest one.
type MessageRepository interface {
	ListInvolving(ctx context.Context, user string) ([]domain.Message, error)
	ListRecentInvolving(ctx context.Context, user string, limit int) ([]domain.Message, error)
	ListBetween(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error)
	Insert(ctx context.Context, msg *domain.Message) error
	MarkRead(ctx context.Context, sender, recipient, readAt string) (int64, error)
	DeleteBetween(ctx context.Context, userA, userB string) (int64, error)
	Close(ctx context.Context) error
}

// ContactRepository reads the primary profile store: a per-user document
// listing known counterparts with partial profile fields. A user without a
// document yields an empty slice, not an error.
type ContactRepository interface {
	GetKnownCounterparts(ctx context.Context, user string) ([]domain.ProfileFragment, error)
}

// FallbackProfileRepository reads the secondary relational profile source.
// The whole repository is optional at the system level; when it was never
// connected the aggregator runs without it.
type FallbackProfileRepository interface {
	GetProfileByUsername(ctx context.Context, username string) (*domain.ProfileFragment, error)
}

// PresenceRepository tracks user connection state in the relational store.
type PresenceRepository interface {
	SetOnline(ctx context.Context, username string, online bool) error
	ListOnline(ctx context.Context) ([]string, error)
	IsOnline(ctx context.Context, username string) (bool, error)
}
