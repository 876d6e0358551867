package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therapyassist/dashboard-go/internal/model"
)

func TestSessionService(t *testing.T) {
	f := newFixture(t)
	f.loginUser(t)
	ctx := context.Background()

	mine, err := f.sessions.Mine(ctx)
	require.NoError(t, err)
	assert.Empty(t, mine)

	f.chat.Append(model.Message{Role: model.MessageRoleUser, Content: "left over"})
	genBefore := f.chat.Generation()

	created, err := f.sessions.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(model.SessionTypeWeb), created.SessionType)
	assert.Equal(t, "New session created", f.lastNotice().Message)

	assert.Equal(t, created.SessionID, f.chat.CurrentSession().SessionID)
	assert.Zero(t, f.chat.Len())
	assert.Greater(t, f.chat.Generation(), genBefore)

	mine, err = f.sessions.Mine(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, created.SessionID, mine[0].SessionID)

	_, err = f.sessions.Analyze(ctx, created.SessionID)
	assert.EqualError(t, err, "Cannot analyze an empty session")

	_, err = f.sessions.All(ctx, "")
	assert.EqualError(t, err, "Failed to load sessions", "users cannot list every session")
}

func TestSessionService_AdminListing(t *testing.T) {
	f := newFixture(t)
	f.loginUser(t)
	ctx := context.Background()

	created, err := f.sessions.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, f.authSvc.Logout(ctx))

	f.loginAdmin(t)

	all, err := f.sessions.All(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created.SessionID, all[0].SessionID)

	analyzed, err := f.sessions.All(ctx, model.SessionStatusAnalyzed)
	require.NoError(t, err)
	assert.Empty(t, analyzed)

	stats, err := f.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSessions)

	activity, err := f.admin.Activity(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, activity)
}
