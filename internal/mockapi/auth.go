package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/therapyassist/dashboard-go/internal/audit"
	apperrors "github.com/therapyassist/dashboard-go/internal/errors"
	"github.com/therapyassist/dashboard-go/internal/httputil"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/util"
)

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type principal struct {
	ID   string
	Name string
	Role model.Role
}

type principalKey struct{}

func principalFrom(ctx context.Context) principal {
	p, _ := ctx.Value(principalKey{}).(principal)
	return p
}

func (s *Server) issueToken(subject string, role model.Role) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) parseToken(raw string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return []byte(s.cfg.JWTSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func extractToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireRole authenticates the bearer token and admits only the listed
// roles. Deactivated users are refused even with a valid token.
func (s *Server) requireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				httputil.WriteError(w, apperrors.Unauthorized("Not authenticated"))
				return
			}

			claims, err := s.parseToken(token)
			if err != nil {
				log.Debug().Err(err).Msg("mockapi: rejected token")
				httputil.WriteError(w, apperrors.Unauthorized("Could not validate credentials"))
				return
			}

			role := model.Role(claims.Role)
			if !slices.Contains(roles, role) {
				httputil.WriteError(w, apperrors.Forbidden("Not enough permissions"))
				return
			}

			p := principal{ID: claims.Subject, Role: role}
			s.mu.RLock()
			switch role {
			case model.RoleAdmin:
				admin := s.adminByIDLocked(claims.Subject)
				if admin != nil {
					p.Name = admin.username
				} else {
					p.ID = ""
				}
			case model.RoleUser:
				if user := s.users[claims.Subject]; user != nil {
					p.Name = user.Name
					if !user.IsActive {
						s.mu.RUnlock()
						httputil.WriteError(w, apperrors.Forbidden("Account is deactivated"))
						return
					}
				} else {
					p.ID = ""
				}
			}
			s.mu.RUnlock()

			if p.ID == "" {
				httputil.WriteError(w, apperrors.Unauthorized("Could not validate credentials"))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
		})
	}
}

func (s *Server) adminByIDLocked(id string) *adminRecord {
	for _, admin := range s.admins {
		if admin.id == id {
			return admin
		}
	}
	return nil
}

// POST /admin/verify-code
func (s *Server) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.AccessCode) == "" {
		httputil.WriteValidation(w, "access_code", "field required")
		return
	}
	if !util.ConstantTimeEqual(req.AccessCode, s.cfg.AdminAccessCode) {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventCodeVerify, Details: map[string]interface{}{"result": "rejected"}})
		httputil.WriteDetail(w, http.StatusForbidden, "Invalid access code")
		return
	}

	password, err := util.GeneratePassword(12)
	if err != nil {
		log.Error().Err(err).Msg("mockapi: generate admin password")
		httputil.WriteDetail(w, http.StatusInternalServerError, "Failed to generate credentials")
		return
	}
	hash, err := util.HashPassword(password)
	if err != nil {
		log.Error().Err(err).Msg("mockapi: hash admin password")
		httputil.WriteDetail(w, http.StatusInternalServerError, "Failed to generate credentials")
		return
	}

	admin := &adminRecord{
		id:           uuid.NewString(),
		username:     "admin_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		passwordHash: hash,
		expiresAt:    s.now().Add(adminCredentialTTL),
	}

	s.mu.Lock()
	s.admins[admin.username] = admin
	s.mu.Unlock()

	audit.LogFromRequest(r, audit.Event{Type: audit.EventCodeVerify, UserID: admin.id, Role: string(model.RoleAdmin)})
	httputil.WriteJSON(w, http.StatusOK, model.AdminCredentials{
		Username:  admin.username,
		Password:  password,
		Message:   "Admin credentials generated. Save them now, the password is shown once.",
		ExpiresAt: admin.expiresAt.Format(time.RFC3339),
	})
}

// POST /admin/login
func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.RLock()
	admin := s.admins[req.Username]
	s.mu.RUnlock()

	if admin == nil || !util.CheckPasswordHash(req.Password, admin.passwordHash) || s.now().After(admin.expiresAt) {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure, Role: string(model.RoleAdmin)})
		httputil.WriteDetail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.issueToken(admin.id, model.RoleAdmin)
	if err != nil {
		log.Error().Err(err).Msg("mockapi: sign admin token")
		httputil.WriteDetail(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	s.mu.Lock()
	s.recordLocked(admin.id, admin.username, "admin_login", "Admin logged in", nil)
	s.mu.Unlock()

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, UserID: admin.id, Role: string(model.RoleAdmin)})
	httputil.WriteJSON(w, http.StatusOK, model.LoginResponse{
		AccessToken: token,
		Username:    admin.username,
		AdminID:     admin.id,
		Message:     "Login successful",
	})
}

// POST /user/login
func (s *Server) UserLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUserByUsernameLocked(req.Username)
	if user == nil || user.passwordHash == "" || !util.CheckPasswordHash(req.Password, user.passwordHash) {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure, Role: string(model.RoleUser)})
		httputil.WriteDetail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !user.IsActive {
		httputil.WriteError(w, apperrors.Forbidden("Account is deactivated"))
		return
	}

	token, err := s.issueToken(user.UserID, model.RoleUser)
	if err != nil {
		log.Error().Err(err).Msg("mockapi: sign user token")
		httputil.WriteDetail(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	lastLogin := s.now().Format(time.RFC3339)
	user.LastLogin = &lastLogin
	s.recordLocked(user.UserID, user.Name, "user_login", "User logged in", nil)

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, UserID: user.UserID, Role: string(model.RoleUser)})
	httputil.WriteJSON(w, http.StatusOK, model.LoginResponse{
		AccessToken: token,
		UserID:      user.UserID,
		Name:        user.Name,
		Username:    user.Username,
		Message:     "Login successful",
	})
}

// decodeBody reads an optional JSON body. An empty body leaves dst as is.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	httputil.WriteDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
	return false
}

// pathParam returns an unescaped route parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
