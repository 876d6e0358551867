package mockapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/therapyassist/dashboard-go/internal/httputil"
	"github.com/therapyassist/dashboard-go/internal/model"
)

// GET /admin/stats
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	year, month, day := now.Date()
	weekAgo := now.Add(-7 * 24 * time.Hour)

	stats := model.DashboardStats{
		TotalUsers:            len(s.users),
		TotalSessions:         len(s.sessions),
		TotalReportsGenerated: len(s.reports),
		TotalDownloads:        s.downloads,
		MostActiveUsers:       []model.ActiveUserSummary{},
	}

	for _, user := range s.users {
		if user.IsActive {
			stats.ActiveUsers++
		}
		if user.createdAt.After(weekAgo) {
			stats.NewUsersThisWeek++
		}
	}

	var totalMinutes float64
	ended := 0
	perUser := map[string]*model.ActiveUserSummary{}
	for _, sess := range s.sessions {
		if sess.Status == model.SessionStatusActive {
			stats.ActiveSessions++
		}
		if y, m, d := sess.startedAt.Date(); y == year && m == month && d == day {
			stats.SessionsToday++
		}
		if end, err := time.Parse(time.RFC3339, sess.EndTime); err == nil {
			totalMinutes += end.Sub(sess.startedAt).Minutes()
			ended++
		}
		summary := perUser[sess.UserID]
		if summary == nil {
			summary = &model.ActiveUserSummary{UserID: sess.UserID, UserName: sess.UserName}
			perUser[sess.UserID] = summary
		}
		summary.SessionCount++
	}
	if ended > 0 {
		stats.AverageSessionDuration = totalMinutes / float64(ended)
	}

	for _, summary := range perUser {
		stats.MostActiveUsers = append(stats.MostActiveUsers, *summary)
	}
	sort.Slice(stats.MostActiveUsers, func(i, j int) bool {
		a, b := stats.MostActiveUsers[i], stats.MostActiveUsers[j]
		if a.SessionCount == b.SessionCount {
			return a.UserName < b.UserName
		}
		return a.SessionCount > b.SessionCount
	})
	if len(stats.MostActiveUsers) > 5 {
		stats.MostActiveUsers = stats.MostActiveUsers[:5]
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// GET /admin/activity answers with the newest entries first.
func (s *Server) Activity(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.ActivityLog, 0, activityPageSize)
	for i := len(s.activity) - 1; i >= 0 && len(entries) < activityPageSize; i-- {
		entries = append(entries, s.activity[i])
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"activities": entries})
}

// GET /admin/sessions
func (s *Server) AllSessions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	s.mu.RLock()
	sessions := s.sessionsLocked(func(rec *sessionRecord) bool {
		return status == "" || rec.Status == status
	})
	s.mu.RUnlock()

	httputil.WriteJSON(w, http.StatusOK, sessions)
}
