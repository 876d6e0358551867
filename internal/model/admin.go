package model

type ActiveUserSummary struct {
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
	SessionCount int    `json:"session_count"`
}

type DashboardStats struct {
	TotalUsers             int                 `json:"total_users"`
	ActiveUsers            int                 `json:"active_users"`
	TotalSessions          int                 `json:"total_sessions"`
	ActiveSessions         int                 `json:"active_sessions"`
	TotalReportsGenerated  int                 `json:"total_reports_generated"`
	TotalDownloads         int                 `json:"total_downloads"`
	SessionsToday          int                 `json:"sessions_today"`
	NewUsersThisWeek       int                 `json:"new_users_this_week"`
	AverageSessionDuration float64             `json:"average_session_duration"`
	MostActiveUsers        []ActiveUserSummary `json:"most_active_users"`
}

type ActivityLog struct {
	ActivityID   string         `json:"activity_id"`
	UserID       string         `json:"user_id"`
	UserName     string         `json:"user_name"`
	ActivityType string         `json:"activity_type"`
	Description  string         `json:"description"`
	Timestamp    string         `json:"timestamp"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ActivityList decodes either a bare JSON array or an object wrapping the
// array under "activities".
type ActivityList []ActivityLog

func (l *ActivityList) UnmarshalJSON(data []byte) error {
	items, err := unmarshalList[ActivityLog](data, "activities")
	if err != nil {
		return err
	}
	*l = items
	return nil
}
