package apiclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticPaths(t *testing.T) {
	paths := map[string]string{
		PathAdminVerifyCode:   "/dashboard/api/v1/dashboard/admin/verify-code",
		PathAdminLogin:        "/dashboard/api/v1/dashboard/admin/login",
		PathAdminCreateUser:   "/dashboard/api/v1/dashboard/admin/users/create",
		PathAdminUsers:        "/dashboard/api/v1/dashboard/admin/users",
		PathAdminAllUsers:     "/dashboard/api/v1/dashboard/admin/all-users",
		PathAdminStats:        "/dashboard/api/v1/dashboard/admin/stats",
		PathAdminActivity:     "/dashboard/api/v1/dashboard/admin/activity",
		PathAdminSessions:     "/dashboard/api/v1/dashboard/admin/sessions",
		PathUserLogin:         "/dashboard/api/v1/dashboard/user/login",
		PathSessionCreate:     "/dashboard/api/v1/dashboard/sessions/create",
		PathSessionMySessions: "/dashboard/api/v1/dashboard/sessions/my-sessions",
		PathChatMessage:       "/dashboard/api/v1/dashboard/chat/message",
		PathChatAudio:         "/dashboard/api/v1/dashboard/chat/audio",
	}
	for got, want := range paths {
		assert.Equal(t, want, got)
	}
}

func TestPathTemplates(t *testing.T) {
	templates := []struct {
		name   string
		fn     func(string) string
		prefix string
		suffix string
	}{
		{"user", AdminUserPath, "/dashboard/api/v1/dashboard/admin/users/", ""},
		{"reactivate", AdminReactivateUserPath, "/dashboard/api/v1/dashboard/admin/users/", "/reactivate"},
		{"history", AdminUserHistoryPath, "/dashboard/api/v1/dashboard/admin/users/", "/history"},
		{"analyze", SessionAnalyzePath, "/dashboard/api/v1/dashboard/sessions/", "/analyze"},
		{"generate", ReportGeneratePath, "/dashboard/api/v1/dashboard/sessions/", "/report"},
		{"download", ReportDownloadPath, "/dashboard/api/v1/dashboard/reports/", "/download"},
	}

	for _, tc := range templates {
		t.Run(tc.name, func(t *testing.T) {
			for _, id := range []string{"S1", "3f2b9c1e-7a44-4b8e-9d7e-0c1f5a6b7c8d", "abc_123"} {
				first, second := tc.fn(id), tc.fn(id)
				assert.Equal(t, first, second)
				assert.Equal(t, tc.prefix+id+tc.suffix, first)
			}
		})

		t.Run(tc.name+" escapes the id as one segment", func(t *testing.T) {
			got := tc.fn("a/b c")
			assert.Equal(t, tc.prefix+"a%2Fb%20c"+tc.suffix, got)
			assert.False(t, strings.Contains(strings.TrimPrefix(got, tc.prefix), "a/b"))
		})
	}
}
