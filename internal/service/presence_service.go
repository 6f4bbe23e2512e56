package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/meetvoice/message-history-service/internal/repository"
	"github.com/meetvoice/message-history-service/pkg/log"
)

// ErrPresenceUnavailable is returned when the relational store backing
// presence was never connected.
var ErrPresenceUnavailable = errors.New("presence store unavailable")

type presenceServiceImpl struct {
	repo repository.PresenceRepository
}

// NewPresenceService creates the presence service. Pass a nil repo when the
// relational store is not deployed; every call then fails with
// ErrPresenceUnavailable.
func NewPresenceService(repo repository.PresenceRepository) PresenceService {
	return &presenceServiceImpl{repo: repo}
}

func (s *presenceServiceImpl) Connect(ctx context.Context, username string) error {
	if s.repo == nil {
		return ErrPresenceUnavailable
	}
	if err := s.repo.SetOnline(ctx, username, true); err != nil {
		return fmt.Errorf("failed to register connection: %w", err)
	}
	l := log.Ctx(ctx)
	l.Info().Str(log.FieldUsername, username).Msg("user connected")
	return nil
}

func (s *presenceServiceImpl) Disconnect(ctx context.Context, username string) error {
	if s.repo == nil {
		return ErrPresenceUnavailable
	}
	if err := s.repo.SetOnline(ctx, username, false); err != nil {
		return fmt.Errorf("failed to register disconnection: %w", err)
	}
	l := log.Ctx(ctx)
	l.Info().Str(log.FieldUsername, username).Msg("user disconnected")
	return nil
}

func (s *presenceServiceImpl) OnlineUsers(ctx context.Context) ([]string, error) {
	if s.repo == nil {
		return nil, ErrPresenceUnavailable
	}
	return s.repo.ListOnline(ctx)
}

func (s *presenceServiceImpl) Status(ctx context.Context, username string) (bool, error) {
	if s.repo == nil {
		return false, ErrPresenceUnavailable
	}
	return s.repo.IsOnline(ctx, username)
}
