package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therapyassist/dashboard-go/internal/model"
)

const testAccessCode = "open-sesame"

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{JWTSecret: "test-secret", AdminAccessCode: testAccessCode, TokenTTL: time.Hour})
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+APIPrefix+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func adminToken(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := call(t, ts, http.MethodPost, "/admin/verify-code", "", model.VerifyCodeRequest{AccessCode: testAccessCode})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	creds := decode[model.AdminCredentials](t, resp)

	resp = call(t, ts, http.MethodPost, "/admin/login", "", model.LoginRequest{Username: creds.Username, Password: creds.Password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[model.LoginResponse](t, resp).AccessToken
}

func userToken(t *testing.T, s *Server, ts *httptest.Server) (string, model.User) {
	t.Helper()
	user, err := s.SeedUser("Alice Smith", "alice", "pw123")
	require.NoError(t, err)
	resp := call(t, ts, http.MethodPost, "/user/login", "", model.LoginRequest{Username: "alice", Password: "pw123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[model.LoginResponse](t, resp).AccessToken, user
}

func TestVerifyCode(t *testing.T) {
	_, ts := newTestServer(t)

	t.Run("wrong code", func(t *testing.T) {
		resp := call(t, ts, http.MethodPost, "/admin/verify-code", "", model.VerifyCodeRequest{AccessCode: "nope"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Invalid access code", decode[map[string]string](t, resp)["detail"])
	})

	t.Run("missing code is a validation error", func(t *testing.T) {
		resp := call(t, ts, http.MethodPost, "/admin/verify-code", "", model.VerifyCodeRequest{})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("issued credentials log in", func(t *testing.T) {
		assert.NotEmpty(t, adminToken(t, ts))
	})
}

func TestRoleGuards(t *testing.T) {
	s, ts := newTestServer(t)
	token, _ := userToken(t, s, ts)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"no token", "/admin/stats", "", http.StatusUnauthorized},
		{"garbage token", "/admin/stats", "garbage", http.StatusUnauthorized},
		{"user on admin route", "/admin/stats", token, http.StatusForbidden},
		{"user on own route", "/sessions/my-sessions", token, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, ts, http.MethodGet, tc.path, tc.token, nil)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestUserLogin_Deactivated(t *testing.T) {
	s, ts := newTestServer(t)
	admin := adminToken(t, ts)
	token, user := userToken(t, s, ts)

	resp := call(t, ts, http.MethodDelete, "/admin/users/"+user.UserID, admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, ts, http.MethodGet, "/sessions/my-sessions", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/user/login", "", model.LoginRequest{Username: "alice", Password: "pw123"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/admin/users/"+user.UserID+"/reactivate", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, ts, http.MethodGet, "/sessions/my-sessions", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListAllUsers(t *testing.T) {
	s, ts := newTestServer(t)
	admin := adminToken(t, ts)

	_, err := s.SeedUser("Dash One", "dash1", "pw")
	require.NoError(t, err)
	vr := s.SeedVRUser("Headset User", "vr@example.com")
	s.SeedVRUser("Second VR", "vr2@example.com")

	resp := call(t, ts, http.MethodPut, "/admin/users/"+vr.UserID, admin, map[string]any{"phone": "555-0100", "name": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.User](t, resp)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Empty(t, updated.Phone)

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"all active", "?skip=0&limit=100&include_inactive=false", 3},
		{"vr only", "?skip=0&limit=100&include_inactive=false&user_type=vr", 2},
		{"dashboard only", "?user_type=dashboard", 1},
		{"paged", "?skip=1&limit=1", 1},
		{"past the end", "?skip=10", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, ts, http.MethodGet, "/admin/all-users"+tc.query, admin, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Len(t, decode[[]model.User](t, resp), tc.count)
		})
	}

	t.Run("bad filters are rejected", func(t *testing.T) {
		for _, q := range []string{"?limit=abc", "?include_inactive=maybe", "?user_type=robot"} {
			resp := call(t, ts, http.MethodGet, "/admin/all-users"+q, admin, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, q)
		}
	})
}

func TestCreateUser(t *testing.T) {
	_, ts := newTestServer(t)
	admin := adminToken(t, ts)

	resp := call(t, ts, http.MethodPost, "/admin/users/create", admin, model.CreateUserRequest{Name: "Bob Jones", Email: "bob@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[model.CreateUserResponse](t, resp)
	assert.Contains(t, created.Username, "bob_")
	assert.NotEmpty(t, created.Password)

	resp = call(t, ts, http.MethodPost, "/user/login", "", model.LoginRequest{Username: created.Username, Password: created.Password})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/admin/users/create", admin, model.CreateUserRequest{Name: "Bob Two", Email: "bob@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/admin/users/create", admin, model.CreateUserRequest{Name: "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestReportLifecycle(t *testing.T) {
	s, ts := newTestServer(t)
	token, _ := userToken(t, s, ts)

	resp := call(t, ts, http.MethodPost, "/sessions/create", token, model.CreateSessionRequest{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decode[model.Session](t, resp)
	assert.Equal(t, "web", session.SessionType)

	resp = call(t, ts, http.MethodPost, "/sessions/"+session.SessionID+"/analyze", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/sessions/"+session.SessionID+"/report", token, model.GenerateReportRequest{IncludeConversation: true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/chat/message", token, model.ChatMessageRequest{SessionID: session.SessionID, Message: "I feel anxious"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	chat := decode[model.ChatMessageResponse](t, resp)
	assert.NotEmpty(t, chat.BotResponse)
	assert.Equal(t, 1, chat.ConversationCount)

	resp = call(t, ts, http.MethodGet, "/reports/"+session.SessionID+"/download", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/sessions/"+session.SessionID+"/analyze", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.SessionStatusAnalyzed, decode[model.AnalyzeResponse](t, resp).Status)

	resp = call(t, ts, http.MethodPost, "/sessions/"+session.SessionID+"/report", token, model.GenerateReportRequest{IncludeConversation: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[model.Report](t, resp).MessageCount)

	resp = call(t, ts, http.MethodGet, "/reports/"+session.SessionID+"/download", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	admin := adminToken(t, ts)
	resp = call(t, ts, http.MethodGet, "/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[model.DashboardStats](t, resp)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 1, stats.TotalReportsGenerated)
	assert.Equal(t, 1, stats.TotalDownloads)
	require.Len(t, stats.MostActiveUsers, 1)
	assert.Equal(t, "Alice Smith", stats.MostActiveUsers[0].UserName)

	resp = call(t, ts, http.MethodGet, "/admin/sessions?status=completed", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Session](t, resp), 1)
}

func TestSessionsAreScopedToOwner(t *testing.T) {
	s, ts := newTestServer(t)
	alice, _ := userToken(t, s, ts)

	_, err := s.SeedUser("Carol", "carol", "pw456")
	require.NoError(t, err)
	resp := call(t, ts, http.MethodPost, "/user/login", "", model.LoginRequest{Username: "carol", Password: "pw456"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	carol := decode[model.LoginResponse](t, resp).AccessToken

	resp = call(t, ts, http.MethodPost, "/sessions/create", alice, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decode[model.Session](t, resp)

	resp = call(t, ts, http.MethodPost, "/chat/message", carol, model.ChatMessageRequest{SessionID: session.SessionID, Message: "hi"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query   string
		want    PaginationParams
		wantErr bool
	}{
		{"", PaginationParams{Skip: 0, Limit: 100}, false},
		{"skip=5&limit=10", PaginationParams{Skip: 5, Limit: 10}, false},
		{"skip=-1", PaginationParams{}, true},
		{"limit=0", PaginationParams{}, true},
		{"limit=5000", PaginationParams{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x?"+tc.query, nil)
			got, err := ParsePagination(r)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
