package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresenceRepo struct {
	online map[string]bool
}

func (f *fakePresenceRepo) SetOnline(_ context.Context, username string, online bool) error {
	if f.online == nil {
		f.online = make(map[string]bool)
	}
	f.online[username] = online
	return nil
}

func (f *fakePresenceRepo) ListOnline(context.Context) ([]string, error) {
	var out []string
	for u, on := range f.online {
		if on {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakePresenceRepo) IsOnline(_ context.Context, username string) (bool, error) {
	return f.online[username], nil
}

func TestPresenceConnectDisconnect(t *testing.T) {
	repo := &fakePresenceRepo{}
	svc := NewPresenceService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Connect(ctx, "alice"))
	online, err := svc.Status(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, online)

	require.NoError(t, svc.Disconnect(ctx, "alice"))
	online, err = svc.Status(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, online)
}

func TestPresenceUnavailableWithoutStore(t *testing.T) {
	svc := NewPresenceService(nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Connect(ctx, "alice"), ErrPresenceUnavailable)
	assert.ErrorIs(t, svc.Disconnect(ctx, "alice"), ErrPresenceUnavailable)

	_, err := svc.OnlineUsers(ctx)
	assert.ErrorIs(t, err, ErrPresenceUnavailable)

	_, err = svc.Status(ctx, "alice")
	assert.ErrorIs(t, err, ErrPresenceUnavailable)
}
