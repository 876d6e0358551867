package service

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/therapyassist/dashboard-go/internal/apiclient"
	"github.com/therapyassist/dashboard-go/internal/credstore"
	"github.com/therapyassist/dashboard-go/internal/download"
	"github.com/therapyassist/dashboard-go/internal/mockapi"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/session"
	"github.com/therapyassist/dashboard-go/internal/state"
)

const testAccessCode = "letmein"

type fixture struct {
	backend   *mockapi.Server
	store     *credstore.Store
	auth      *state.AuthStore
	chat      *state.ChatStore
	notices   *notify.Recorder
	navigated atomic.Int32
	dir       string

	authSvc  *AuthService
	users    *UserService
	sessions *SessionService
	chatSvc  *ChatService
	reports  *ReportService
	admin    *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend: mockapi.New(mockapi.Config{JWTSecret: "secret", AdminAccessCode: testAccessCode, TokenTTL: time.Hour}),
		store:   credstore.New(credstore.NewMemory()),
		auth:    state.NewAuthStore(),
		chat:    state.NewChatStore(),
		notices: &notify.Recorder{},
		dir:     t.TempDir(),
	}

	srv := httptest.NewServer(f.backend.Routes())
	t.Cleanup(srv.Close)

	manager := session.NewManager(f.store, f.auth, f.chat,
		session.NavigatorFunc(func() { f.navigated.Add(1) }), f.notices)

	client, err := apiclient.New(srv.URL, f.store, apiclient.WithUnauthorizedHandler(manager.HandleUnauthorized))
	require.NoError(t, err)

	f.authSvc = NewAuthService(client, manager, f.store, f.auth, f.notices)
	f.users = NewUserService(client, f.notices)
	f.sessions = NewSessionService(client, f.chat, f.notices)
	f.chatSvc = NewChatService(client, f.chat, f.notices)
	f.reports = NewReportService(client, f.chat, f.auth, download.NewSaver(f.dir), f.notices)
	f.admin = NewAdminService(client, f.notices)
	return f
}

func (f *fixture) loginUser(t *testing.T) model.User {
	t.Helper()
	user, err := f.backend.SeedUser("Alice Smith", "alice", "pw123")
	require.NoError(t, err)
	_, err = f.authSvc.Login(context.Background(), model.RoleUser, "alice", "pw123")
	require.NoError(t, err)
	return user
}

func (f *fixture) loginAdmin(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	creds, err := f.authSvc.VerifyAdminCode(ctx, testAccessCode)
	require.NoError(t, err)
	_, err = f.authSvc.Login(ctx, model.RoleAdmin, creds.Username, creds.Password)
	require.NoError(t, err)
}

// noRequests asserts fn makes no backend call.
func (f *fixture) noRequests(t *testing.T, fn func()) {
	t.Helper()
	before := f.backend.Requests()
	fn()
	require.Equal(t, before, f.backend.Requests(), "expected no backend requests")
}

func (f *fixture) lastNotice() notify.Notice {
	return f.notices.Last()
}
