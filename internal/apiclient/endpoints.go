package apiclient

import "net/url"

const apiPrefix = "/dashboard/api/v1/dashboard"

// Admin endpoints
const (
	PathAdminVerifyCode = apiPrefix + "/admin/verify-code"
	PathAdminLogin      = apiPrefix + "/admin/login"
	PathAdminCreateUser = apiPrefix + "/admin/users/create"
	PathAdminUsers      = apiPrefix + "/admin/users" // legacy: dashboard users only
	PathAdminAllUsers   = apiPrefix + "/admin/all-users"
	PathAdminStats      = apiPrefix + "/admin/stats"
	PathAdminActivity   = apiPrefix + "/admin/activity"
	PathAdminSessions   = apiPrefix + "/admin/sessions"
)

// User endpoints
const (
	PathUserLogin = apiPrefix + "/user/login"
)

// Session endpoints
const (
	PathSessionCreate     = apiPrefix + "/sessions/create"
	PathSessionMySessions = apiPrefix + "/sessions/my-sessions"
)

// Chat endpoints
const (
	PathChatMessage = apiPrefix + "/chat/message"
	PathChatAudio   = apiPrefix + "/chat/audio"
)

// AdminUserPath serves get, update and deactivate of a single user.
func AdminUserPath(userID string) string {
	return apiPrefix + "/admin/users/" + url.PathEscape(userID)
}

func AdminReactivateUserPath(userID string) string {
	return AdminUserPath(userID) + "/reactivate"
}

func AdminUserHistoryPath(userID string) string {
	return AdminUserPath(userID) + "/history"
}

func SessionAnalyzePath(sessionID string) string {
	return apiPrefix + "/sessions/" + url.PathEscape(sessionID) + "/analyze"
}

func ReportGeneratePath(sessionID string) string {
	return apiPrefix + "/sessions/" + url.PathEscape(sessionID) + "/report"
}

func ReportDownloadPath(sessionID string) string {
	return apiPrefix + "/reports/" + url.PathEscape(sessionID) + "/download"
}
