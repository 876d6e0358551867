package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/therapyassist/dashboard-go/internal/credstore"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/state"
)

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Save(ctx context.Context, token string, role model.Role) error {
	args := m.Called(ctx, token, role)
	return args.Error(0)
}

func (m *MockCredentialStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type fixture struct {
	creds     *credstore.Store
	auth      *state.AuthStore
	chat      *state.ChatStore
	notices   *notify.Recorder
	navigated *atomic.Int32
	manager   *Manager
}

func newFixture() *fixture {
	f := &fixture{
		creds:     credstore.New(credstore.NewMemory()),
		auth:      state.NewAuthStore(),
		chat:      state.NewChatStore(),
		notices:   &notify.Recorder{},
		navigated: &atomic.Int32{},
	}
	f.manager = NewManager(f.creds, f.auth, f.chat, NavigatorFunc(func() { f.navigated.Add(1) }), f.notices)
	return f
}

func TestManager_Establish(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	err := f.manager.Establish(ctx, "tok", model.RoleUser, &model.User{UserID: "u1", Name: "Alice"})
	require.NoError(t, err)

	assert.True(t, f.creds.IsAuthenticated(ctx))
	snap := f.auth.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, model.RoleUser, snap.Role)
	assert.Equal(t, int32(0), f.navigated.Load())
}

func TestManager_EstablishFailsWithoutTouchingState(t *testing.T) {
	ctx := context.Background()
	creds := &MockCredentialStore{}
	creds.On("Save", mock.Anything, "tok", model.RoleAdmin).Return(errors.New("disk full"))

	auth := state.NewAuthStore()
	m := NewManager(creds, auth, state.NewChatStore(), NavigatorFunc(func() {}), &notify.Recorder{})

	err := m.Establish(ctx, "tok", model.RoleAdmin, &model.User{UserID: "a1"})
	assert.Error(t, err)
	assert.False(t, auth.Snapshot().IsAuthenticated)
	creds.AssertExpectations(t)
}

func TestManager_ClearSession(t *testing.T) {
	ctx := context.Background()

	t.Run("logout clears everything and navigates", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.manager.Establish(ctx, "tok", model.RoleUser, &model.User{UserID: "u1"}))
		f.chat.SetCurrentSession(&model.Session{SessionID: "S1"})
		f.chat.Append(model.Message{Role: model.MessageRoleUser, Content: "hi"})

		require.NoError(t, f.manager.ClearSession(ctx, ReasonLogout))

		assert.False(t, f.creds.IsAuthenticated(ctx))
		_, ok, err := f.creds.Role(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, f.auth.Snapshot().IsAuthenticated)
		assert.Nil(t, f.chat.CurrentSession())
		assert.Equal(t, 0, f.chat.Len())
		assert.Equal(t, int32(1), f.navigated.Load())
		assert.Empty(t, f.notices.Notices())
	})

	t.Run("expiry notifies the user", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.manager.Establish(ctx, "tok", model.RoleAdmin, nil))

		f.manager.HandleUnauthorized(ctx)

		assert.False(t, f.creds.IsAuthenticated(ctx))
		assert.Equal(t, int32(1), f.navigated.Load())
		assert.Equal(t, notify.Notice{Kind: notify.KindError, Message: ExpiredMessage}, f.notices.Last())
	})

	t.Run("store failure still resets state", func(t *testing.T) {
		creds := &MockCredentialStore{}
		creds.On("Clear", mock.Anything).Return(errors.New("redis down"))

		auth := state.NewAuthStore()
		auth.SetUser(&model.User{UserID: "u1"}, model.RoleUser)
		navigated := 0
		m := NewManager(creds, auth, state.NewChatStore(), NavigatorFunc(func() { navigated++ }), &notify.Recorder{})

		err := m.ClearSession(ctx, ReasonLogout)
		assert.Error(t, err)
		assert.False(t, auth.Snapshot().IsAuthenticated)
		assert.Equal(t, 1, navigated)
		creds.AssertNumberOfCalls(t, "Clear", 1)
	})
}
