package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionListUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		ids     []string
	}{
		{"bare array", `[{"session_id":"S1"},{"session_id":"S2"}]`, []string{"S1", "S2"}},
		{"wrapped object", `{"sessions":[{"session_id":"S3"}],"total":1}`, []string{"S3"}},
		{"wrapped without sessions", `{"total":0}`, []string{}},
		{"null", `null`, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var list SessionList
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &list))
			ids := []string{}
			for _, s := range list {
				ids = append(ids, s.SessionID)
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestUserAndActivityListUnmarshal(t *testing.T) {
	var users UserList
	require.NoError(t, json.Unmarshal([]byte(`{"users":[{"user_id":"u1"}],"total":1}`), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].UserID)

	require.NoError(t, json.Unmarshal([]byte(`[{"user_id":"u2"},{"user_id":"u3"}]`), &users))
	assert.Len(t, users, 2)

	var activity ActivityList
	require.NoError(t, json.Unmarshal([]byte(`{"activities":null}`), &activity))
	assert.Empty(t, activity)

	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &activity))
}

func TestSessionReportReady(t *testing.T) {
	assert.False(t, (&Session{Status: SessionStatusActive}).ReportReady())
	assert.True(t, (&Session{Status: SessionStatusAnalyzed}).ReportReady())
	assert.True(t, (&Session{Status: SessionStatusCompleted}).ReportReady())
	assert.True(t, (&Session{Status: SessionStatusActive, HasReport: true}).ReportReady())
}

func TestLoginResponseIdentity(t *testing.T) {
	t.Run("user login", func(t *testing.T) {
		resp := LoginResponse{AccessToken: "tok", UserID: "u1", Name: "Alice", Username: "alice"}
		user := resp.Identity()
		assert.Equal(t, "u1", user.UserID)
		assert.Equal(t, "Alice", user.Name)
	})

	t.Run("admin login falls back to username", func(t *testing.T) {
		resp := LoginResponse{AccessToken: "tok", AdminID: "a1", Username: "admin_x"}
		user := resp.Identity()
		assert.Equal(t, "a1", user.UserID)
		assert.Equal(t, "admin_x", user.Name)
	})
}
