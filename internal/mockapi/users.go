package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/therapyassist/dashboard-go/internal/httputil"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/util"
)

// POST /admin/users/create
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		httputil.WriteValidation(w, "name", "field required")
		return
	}
	if req.Email != "" && !util.IsValidEmail(req.Email) {
		httputil.WriteValidation(w, "email", "value is not a valid email address")
		return
	}

	password, err := util.GeneratePassword(10)
	if err != nil {
		httputil.WriteDetail(w, http.StatusInternalServerError, "Failed to generate password")
		return
	}
	hash, err := util.HashPassword(password)
	if err != nil {
		httputil.WriteDetail(w, http.StatusInternalServerError, "Failed to generate password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Email != "" && s.findUserByEmailLocked(req.Email) != nil {
		httputil.WriteDetail(w, http.StatusConflict, "A user with this email already exists")
		return
	}

	rec := s.addUserLocked(req.Name, makeUsername(req.Name), req.Email, model.UserTypeDashboard)
	rec.Phone = req.Phone
	rec.Notes = req.Notes
	rec.passwordHash = hash

	admin := principalFrom(r.Context())
	s.recordLocked(admin.ID, admin.Name, "user_created", "Created user "+rec.Name, map[string]any{"user_id": rec.UserID})

	httputil.WriteJSON(w, http.StatusCreated, model.CreateUserResponse{
		UserID:    rec.UserID,
		Name:      rec.Name,
		Username:  rec.Username,
		Password:  password,
		Email:     rec.Email,
		CreatedAt: rec.CreatedAt,
		Message:   "User created successfully",
	})
}

func makeUsername(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.Fields(name)[0]) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" {
		base = "user"
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
}

// GET /admin/all-users
func (s *Server) ListAllUsers(w http.ResponseWriter, r *http.Request) {
	page, err := ParsePagination(r)
	if err != nil {
		httputil.WriteDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	includeInactive := false
	if raw := r.URL.Query().Get("include_inactive"); raw != "" {
		includeInactive, err = strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteDetail(w, http.StatusUnprocessableEntity, "include_inactive must be true or false")
			return
		}
	}

	userType := model.UserType(r.URL.Query().Get("user_type"))
	if userType != "" && !util.IsValidEnum(string(userType), []string{string(model.UserTypeVR), string(model.UserTypeDashboard)}) {
		httputil.WriteDetail(w, http.StatusUnprocessableEntity, "user_type must be vr or dashboard")
		return
	}

	s.mu.RLock()
	users := s.usersLocked(func(u *userRecord) bool {
		if userType != "" && u.UserType != userType {
			return false
		}
		return includeInactive || u.IsActive
	})
	s.mu.RUnlock()

	httputil.WriteJSON(w, http.StatusOK, paginate(users, page))
}

// GET /admin/users lists dashboard users only.
func (s *Server) ListDashboardUsers(w http.ResponseWriter, r *http.Request) {
	page, err := ParsePagination(r)
	if err != nil {
		httputil.WriteDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.RLock()
	users := s.usersLocked(func(u *userRecord) bool {
		return u.UserType == model.UserTypeDashboard
	})
	s.mu.RUnlock()

	httputil.WriteJSON(w, http.StatusOK, paginate(users, page))
}

func (s *Server) usersLocked(keep func(*userRecord) bool) []model.User {
	out := []model.User{}
	for _, id := range s.userOrder {
		if rec := s.users[id]; keep(rec) {
			out = append(out, rec.User)
		}
	}
	return out
}

// GET /admin/users/{userID}
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.users[pathParam(r, "userID")]
	if rec == nil {
		httputil.WriteDetail(w, http.StatusNotFound, "User not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec.User)
}

// PUT /admin/users/{userID}
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		httputil.WriteValidation(w, "name", "name cannot be empty")
		return
	}
	if req.Email != nil && *req.Email != "" && !util.IsValidEmail(*req.Email) {
		httputil.WriteValidation(w, "email", "value is not a valid email address")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.users[pathParam(r, "userID")]
	if rec == nil {
		httputil.WriteDetail(w, http.StatusNotFound, "User not found")
		return
	}

	if req.Name != nil {
		rec.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		rec.Email = *req.Email
	}
	if req.IsActive != nil {
		rec.IsActive = *req.IsActive
	}
	// VR profiles only carry name, email and active state.
	if rec.UserType == model.UserTypeDashboard {
		if req.Phone != nil {
			rec.Phone = *req.Phone
		}
		if req.Notes != nil {
			rec.Notes = *req.Notes
		}
	}

	httputil.WriteJSON(w, http.StatusOK, rec.User)
}

// DELETE /admin/users/{userID}
func (s *Server) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	s.setActive(w, r, false)
}

// POST /admin/users/{userID}/reactivate
func (s *Server) ReactivateUser(w http.ResponseWriter, r *http.Request) {
	s.setActive(w, r, true)
}

func (s *Server) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.users[pathParam(r, "userID")]
	if rec == nil {
		httputil.WriteDetail(w, http.StatusNotFound, "User not found")
		return
	}
	rec.IsActive = active

	admin := principalFrom(r.Context())
	activity, message := "user_deactivated", "User deactivated successfully"
	if active {
		activity, message = "user_reactivated", "User reactivated successfully"
	}
	s.recordLocked(admin.ID, admin.Name, activity, message+": "+rec.Name, map[string]any{"user_id": rec.UserID})

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":   rec.UserID,
		"is_active": rec.IsActive,
		"message":   message,
	})
}

// GET /admin/users/{userID}/history
func (s *Server) UserHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.users[pathParam(r, "userID")]
	if rec == nil {
		httputil.WriteDetail(w, http.StatusNotFound, "User not found")
		return
	}

	activity := []model.ActivityLog{}
	for _, entry := range s.activity {
		if entry.UserID == rec.UserID {
			activity = append(activity, entry)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, model.UserHistory{
		UserID:   rec.UserID,
		UserName: rec.Name,
		Sessions: s.sessionsLocked(func(sess *sessionRecord) bool { return sess.UserID == rec.UserID }),
		Activity: activity,
	})
}
