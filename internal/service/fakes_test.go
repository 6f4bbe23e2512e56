package service

import (
	"context"
	"sort"
	"time"

	"github.com/meetvoice/message-history-service/internal/cache"
	"github.com/meetvoice/message-history-service/internal/domain"
)

// fakeMessageRepo serves messages from a fixed slice. ListInvolving returns
// them in slice order, which stands in for the store's ascending-timestamp
// scan; tests that exercise the fold set the order explicitly.
type fakeMessageRepo struct {
	messages []domain.Message
	listErr  error

	lastLimit int
	inserted  []domain.Message
}

func (f *fakeMessageRepo) ListInvolving(_ context.Context, user string) ([]domain.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Message
	for _, m := range f.messages {
		if m.Sender == user || m.Recipient == user {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) ListRecentInvolving(_ context.Context, user string, limit int) ([]domain.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.lastLimit = limit
	var out []domain.Message
	for _, m := range f.messages {
		if m.Sender == user || m.Recipient == user {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMessageRepo) ListBetween(_ context.Context, userA, userB string, limit int) ([]domain.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.lastLimit = limit
	var out []domain.Message
	for _, m := range f.messages {
		if (m.Sender == userA && m.Recipient == userB) || (m.Sender == userB && m.Recipient == userA) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMessageRepo) Insert(_ context.Context, msg *domain.Message) error {
	msg.ID = "generated-id"
	f.inserted = append(f.inserted, *msg)
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, sender, recipient, readAt string) (int64, error) {
	var count int64
	for i := range f.messages {
		m := &f.messages[i]
		if m.Sender == sender && m.Recipient == recipient && !m.Read {
			m.Read = true
			m.ReadAt = readAt
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) DeleteBetween(_ context.Context, userA, userB string) (int64, error) {
	var kept []domain.Message
	var count int64
	for _, m := range f.messages {
		if (m.Sender == userA && m.Recipient == userB) || (m.Sender == userB && m.Recipient == userA) {
			count++
			continue
		}
		kept = append(kept, m)
	}
	f.messages = kept
	return count, nil
}

func (f *fakeMessageRepo) Close(context.Context) error { return nil }

type fakeContactRepo struct {
	fragments []domain.ProfileFragment
	err       error
}

func (f *fakeContactRepo) GetKnownCounterparts(context.Context, string) ([]domain.ProfileFragment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.fragments, nil
}

// fakeFallbackRepo records which usernames were looked up.
type fakeFallbackRepo struct {
	profiles map[string]*domain.ProfileFragment
	err      error
	queried  []string
}

func (f *fakeFallbackRepo) GetProfileByUsername(_ context.Context, username string) (*domain.ProfileFragment, error) {
	f.queried = append(f.queried, username)
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[username], nil
}

// fakeConversationCache is an in-memory ConversationCache.
type fakeConversationCache struct {
	entries map[string][]domain.ConversationSummary
	deleted []string
}

func newFakeCache() *fakeConversationCache {
	return &fakeConversationCache{entries: make(map[string][]domain.ConversationSummary)}
}

func (f *fakeConversationCache) Get(_ context.Context, key string) ([]domain.ConversationSummary, error) {
	if entry, ok := f.entries[key]; ok {
		return entry, nil
	}
	return nil, cache.ErrCacheMiss
}

func (f *fakeConversationCache) Set(_ context.Context, key string, summaries []domain.ConversationSummary, _ time.Duration) error {
	f.entries[key] = summaries
	return nil
}

func (f *fakeConversationCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.entries, key)
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func (f *fakeConversationCache) BuildKey(username string) string { return "test:" + username }

func (f *fakeConversationCache) Close() error { return nil }
