package app

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therapyassist/dashboard-go/internal/config"
	"github.com/therapyassist/dashboard-go/internal/mockapi"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/session"
)

func newTestApp(t *testing.T) (*App, *mockapi.Server, *notify.Recorder, *atomic.Int32) {
	t.Helper()
	backend := mockapi.New(mockapi.Config{JWTSecret: "secret", AdminAccessCode: "code", TokenTTL: time.Hour})
	srv := httptest.NewServer(backend.Routes())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIURL:                 srv.URL,
		CredentialStoreURL:     "memory://",
		DownloadDir:            t.TempDir(),
		RequestTimeoutSeconds:  5,
		DownloadTimeoutSeconds: 5,
	}

	notices := &notify.Recorder{}
	var navigated atomic.Int32
	a, err := New(context.Background(), cfg,
		WithNotifier(notices),
		WithNavigator(session.NavigatorFunc(func() { navigated.Add(1) })),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, backend, notices, &navigated
}

func TestNew_RejectsBadStore(t *testing.T) {
	_, err := New(context.Background(), &config.Config{
		CredentialStoreURL:     "ftp://nowhere",
		RequestTimeoutSeconds:  5,
		DownloadTimeoutSeconds: 5,
	})
	assert.Error(t, err)
}

func TestApp_ExpiredTokenSignsOut(t *testing.T) {
	a, backend, notices, navigated := newTestApp(t)
	ctx := context.Background()

	_, err := backend.SeedUser("Alice", "alice", "pw123")
	require.NoError(t, err)
	_, err = a.AuthService.Login(ctx, model.RoleUser, "alice", "pw123")
	require.NoError(t, err)

	_, err = a.SessionService.Create(ctx)
	require.NoError(t, err)
	require.NotNil(t, a.Chat.CurrentSession())

	// A token the backend no longer accepts.
	require.NoError(t, a.Store.Save(ctx, "stale-token", model.RoleUser))

	_, err = a.SessionService.Mine(ctx)
	assert.EqualError(t, err, "Failed to load sessions")

	assert.False(t, a.Store.IsAuthenticated(ctx))
	assert.False(t, a.Auth.Snapshot().IsAuthenticated)
	assert.Nil(t, a.Chat.CurrentSession())
	assert.EqualValues(t, 1, navigated.Load())

	var sawExpiry bool
	for _, n := range notices.Notices() {
		if n.Message == session.ExpiredMessage {
			sawExpiry = true
		}
	}
	assert.True(t, sawExpiry)
}
