// Package mockapi is an in-memory stand-in for the dashboard backend. It
// serves the same routes, error bodies and token scheme, and backs both
// the package tests and local development.
package mockapi

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/therapyassist/dashboard-go/internal/httputil"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/util"
)

const APIPrefix = "/dashboard/api/v1/dashboard"

const (
	adminCredentialTTL = 24 * time.Hour
	maxAudioBytes      = 10 << 20
	activityPageSize   = 50
)

type Config struct {
	JWTSecret       string
	AdminAccessCode string
	TokenTTL        time.Duration
	// LoginAttemptsPerMinute caps login and verify-code calls per client
	// address. Zero disables the limit.
	LoginAttemptsPerMinute int
}

type userRecord struct {
	model.User
	passwordHash string
	createdAt    time.Time
}

type adminRecord struct {
	id           string
	username     string
	passwordHash string
	expiresAt    time.Time
}

type sessionRecord struct {
	model.Session
	startedAt time.Time
	messages  []model.Message
}

type Server struct {
	cfg      Config
	now      func() time.Time
	requests atomic.Int64
	logins   *loginLimiter

	mu        sync.RWMutex
	users     map[string]*userRecord
	userOrder []string
	admins    map[string]*adminRecord
	sessions  map[string]*sessionRecord
	reports   map[string]*model.Report
	activity  []model.ActivityLog
	downloads int
}

func New(cfg Config) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	s := &Server{
		cfg:      cfg,
		now:      time.Now,
		users:    make(map[string]*userRecord),
		admins:   make(map[string]*adminRecord),
		sessions: make(map[string]*sessionRecord),
		reports:  make(map[string]*model.Report),
	}
	if cfg.LoginAttemptsPerMinute > 0 {
		s.logins = newLoginLimiter(cfg.LoginAttemptsPerMinute, func() time.Time { return s.now() })
	}
	return s
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.countRequests)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route(APIPrefix, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limitBody(maxJSONBodyBytes))
			if s.logins != nil {
				r.Use(s.logins.Handler)
			}

			r.Post("/admin/verify-code", s.VerifyCode)
			r.Post("/admin/login", s.AdminLogin)
			r.Post("/user/login", s.UserLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(limitBody(maxJSONBodyBytes))
			r.Use(s.requireRole(model.RoleAdmin))

			r.Post("/admin/users/create", s.CreateUser)
			r.Get("/admin/users", s.ListDashboardUsers)
			r.Get("/admin/all-users", s.ListAllUsers)
			r.Get("/admin/users/{userID}", s.GetUser)
			r.Put("/admin/users/{userID}", s.UpdateUser)
			r.Delete("/admin/users/{userID}", s.DeactivateUser)
			r.Post("/admin/users/{userID}/reactivate", s.ReactivateUser)
			r.Get("/admin/users/{userID}/history", s.UserHistory)
			r.Get("/admin/stats", s.Stats)
			r.Get("/admin/activity", s.Activity)
			r.Get("/admin/sessions", s.AllSessions)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(model.RoleUser))

			r.Group(func(r chi.Router) {
				r.Use(limitBody(maxJSONBodyBytes))

				r.Post("/sessions/create", s.CreateSession)
				r.Get("/sessions/my-sessions", s.MySessions)
				r.Post("/sessions/{sessionID}/analyze", s.AnalyzeSession)
				r.Post("/sessions/{sessionID}/report", s.GenerateReport)
				r.Post("/chat/message", s.ChatMessage)
			})

			// ChatAudio applies its own multipart limit.
			r.Post("/chat/audio", s.ChatAudio)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(model.RoleAdmin, model.RoleUser))

			r.Get("/reports/{sessionID}/download", s.DownloadReport)
		})
	})

	return r
}

// Requests returns how many HTTP requests the server has received.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

// PurgeExpiredAdmins drops generated admin credentials past their expiry
// and reports how many were removed.
func (s *Server) PurgeExpiredAdmins(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for username, admin := range s.admins {
		if now.After(admin.expiresAt) {
			delete(s.admins, username)
			n++
		}
	}
	return n, nil
}

// SeedUser adds an active dashboard user that can log in with password.
func (s *Server) SeedUser(name, username, password string) (model.User, error) {
	hash, err := util.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.addUserLocked(name, username, "", model.UserTypeDashboard)
	rec.passwordHash = hash
	return rec.User, nil
}

// SeedVRUser adds a headset user. VR users cannot log in to the dashboard.
func (s *Server) SeedVRUser(name, email string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, "", email, model.UserTypeVR).User
}

func (s *Server) addUserLocked(name, username, email string, userType model.UserType) *userRecord {
	now := s.now()
	rec := &userRecord{
		User: model.User{
			UserID:    uuid.NewString(),
			Name:      name,
			Username:  username,
			Email:     email,
			IsActive:  true,
			CreatedAt: now.Format(time.RFC3339),
			UserType:  userType,
		},
		createdAt: now,
	}
	s.users[rec.UserID] = rec
	s.userOrder = append(s.userOrder, rec.UserID)
	return rec
}

func (s *Server) findUserByUsernameLocked(username string) *userRecord {
	for _, id := range s.userOrder {
		if rec := s.users[id]; rec.Username == username && rec.UserType == model.UserTypeDashboard {
			return rec
		}
	}
	return nil
}

func (s *Server) findUserByEmailLocked(email string) *userRecord {
	for _, id := range s.userOrder {
		if rec := s.users[id]; rec.Email != "" && rec.Email == email {
			return rec
		}
	}
	return nil
}

// sessionsLocked returns sessions newest first, filtered by keep.
func (s *Server) sessionsLocked(keep func(*sessionRecord) bool) []model.Session {
	recs := make([]*sessionRecord, 0, len(s.sessions))
	for _, rec := range s.sessions {
		if keep == nil || keep(rec) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].startedAt.Equal(recs[j].startedAt) {
			return recs[i].SessionID < recs[j].SessionID
		}
		return recs[i].startedAt.After(recs[j].startedAt)
	})

	out := make([]model.Session, len(recs))
	for i, rec := range recs {
		out[i] = rec.Session
		out[i].MessageCount = len(rec.messages)
	}
	return out
}

func (s *Server) recordLocked(userID, userName, activityType, description string, metadata map[string]any) {
	s.activity = append(s.activity, model.ActivityLog{
		ActivityID:   uuid.NewString(),
		UserID:       userID,
		UserName:     userName,
		ActivityType: activityType,
		Description:  description,
		Timestamp:    s.now().Format(time.RFC3339),
		Metadata:     metadata,
	})
}
