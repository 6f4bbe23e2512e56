package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/meetvoice/message-history-service/internal/cache"
	"github.com/meetvoice/message-history-service/internal/domain"
	"github.com/meetvoice/message-history-service/internal/repository"
	"github.com/meetvoice/message-history-service/pkg/log"
)

type conversationServiceImpl struct {
	messages repository.MessageRepository
	contacts repository.ContactRepository

	// The fallback store is an optional capability decided once at startup.
	// When absent, the second enrichment pass is skipped entirely.
	fallback    repository.FallbackProfileRepository
	hasFallback bool

	convCache cache.ConversationCache
	cacheTTL  time.Duration
	sf        singleflight.Group
}

// NewConversationService creates the conversation aggregator. Pass a nil
// fallback to run without the secondary profile store, and a nil convCache to
// run without caching.
func NewConversationService(
	messages repository.MessageRepository,
	contacts repository.ContactRepository,
	fallback repository.FallbackProfileRepository,
	convCache cache.ConversationCache,
	cacheTTL time.Duration,
) ConversationService {
	return &conversationServiceImpl{
		messages:    messages,
		contacts:    contacts,
		fallback:    fallback,
		hasFallback: fallback != nil,
		convCache:   convCache,
		cacheTTL:    cacheTTL,
	}
}

// ListConversations returns one summary per counterpart in username's
// message stream, newest conversation first. Identical concurrent requests
// collapse onto a single computation.
func (s *conversationServiceImpl) ListConversations(ctx context.Context, username string) ([]domain.ConversationSummary, error) {
	if s.convCache == nil {
		return s.aggregate(ctx, username)
	}

	key := s.convCache.BuildKey(username)

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.fetchWithCache(ctx, username, key)
	})
	if err != nil {
		return nil, err
	}

	summaries, ok := result.([]domain.ConversationSummary)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return summaries, nil
}

func (s *conversationServiceImpl) fetchWithCache(ctx context.Context, username, key string) ([]domain.ConversationSummary, error) {
	cached, err := s.convCache.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cache get error")
	}

	summaries, err := s.aggregate(ctx, username)
	if err != nil {
		return nil, err
	}

	// Store in cache (async to avoid blocking response).
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.convCache.Set(cacheCtx, key, summaries, s.cacheTTL); err != nil {
			l := log.L()
			l.Warn().Err(err).Msg("cache set error")
		}
	}()

	return summaries, nil
}

// aggregate runs the full pipeline: scan, fold, enrich, sort.
//
// The fold is last-write-wins against scan order: the repository guarantees
// an ascending-timestamp scan, so the last message seen per counterpart is
// that counterpart's latest. A failure reading the message stream aborts the
// request; enrichment failures only leave profile fields empty.
func (s *conversationServiceImpl) aggregate(ctx context.Context, username string) ([]domain.ConversationSummary, error) {
	stream, err := s.messages.ListInvolving(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to scan messages: %w", err)
	}

	byCounterpart := make(map[string]*domain.ConversationSummary)
	for _, msg := range stream {
		counterpart := msg.Counterpart(username)
		entry, seen := byCounterpart[counterpart]
		if !seen {
			byCounterpart[counterpart] = &domain.ConversationSummary{
				Username:      counterpart,
				LastMessage:   msg.Content,
				LastMessageAt: msg.Timestamp,
			}
			continue
		}
		entry.LastMessage = msg.Content
		entry.LastMessageAt = msg.Timestamp
	}

	s.enrichFromContacts(ctx, username, byCounterpart)
	s.enrichFromFallback(ctx, byCounterpart)

	summaries := make([]domain.ConversationSummary, 0, len(byCounterpart))
	for _, entry := range byCounterpart {
		summaries = append(summaries, *entry)
	}

	// RFC3339 timestamps order correctly under plain string comparison,
	// which is what the store writes and the adapters normalize to.
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].LastMessageAt != summaries[j].LastMessageAt {
			return summaries[i].LastMessageAt > summaries[j].LastMessageAt
		}
		return summaries[i].Username < summaries[j].Username
	})

	return summaries, nil
}

// enrichFromContacts applies the primary profile store. Its values are
// authoritative: matching fragments overwrite the summary fields
// unconditionally. Any failure here leaves fields empty and never aborts.
func (s *conversationServiceImpl) enrichFromContacts(ctx context.Context, username string, byCounterpart map[string]*domain.ConversationSummary) {
	fragments, err := s.contacts.GetKnownCounterparts(ctx, username)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).
			Str(log.FieldUsername, username).
			Msg("primary profile lookup failed, returning bare summaries")
		return
	}

	for _, frag := range fragments {
		entry, ok := byCounterpart[frag.Username]
		if !ok {
			continue
		}
		entry.FirstName = frag.FirstName
		entry.Age = frag.Age
		entry.Photo = frag.Photo
	}
}

// enrichFromFallback fills fields the primary pass left empty, one field at
// a time: a value already present is never overwritten, and a NULL column in
// the fallback row just leaves the field missing.
func (s *conversationServiceImpl) enrichFromFallback(ctx context.Context, byCounterpart map[string]*domain.ConversationSummary) {
	if !s.hasFallback {
		return
	}

	l := log.Ctx(ctx)
	for counterpart, entry := range byCounterpart {
		if !entry.NeedsEnrichment() {
			continue
		}

		frag, err := s.fallback.GetProfileByUsername(ctx, counterpart)
		if err != nil {
			l.Warn().Err(err).
				Str(log.FieldCounterpart, counterpart).
				Msg("fallback profile lookup failed")
			continue
		}
		if frag == nil {
			continue
		}

		if entry.FirstName == "" {
			entry.FirstName = frag.FirstName
		}
		if entry.Age == "" {
			entry.Age = frag.Age
		}
		if entry.Photo == "" {
			entry.Photo = frag.Photo
		}
	}
}
