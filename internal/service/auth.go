package service

import (
	"context"
	"strings"

	"github.com/therapyassist/dashboard-go/internal/audit"
	"github.com/therapyassist/dashboard-go/internal/credstore"
	apperrors "github.com/therapyassist/dashboard-go/internal/errors"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/session"
	"github.com/therapyassist/dashboard-go/internal/state"
	"github.com/therapyassist/dashboard-go/internal/util"
)

const minPasswordLength = 3

type AuthAPI interface {
	VerifyAdminCode(ctx context.Context, accessCode string) (*model.AdminCredentials, error)
	Login(ctx context.Context, role model.Role, username, password string) (*model.LoginResponse, error)
}

// CredentialReader is the read side of the credential store.
type CredentialReader interface {
	Token(ctx context.Context) (string, bool, error)
	Role(ctx context.Context) (model.Role, bool, error)
}

type AuthService struct {
	reporter
	api      AuthAPI
	sessions *session.Manager
	creds    CredentialReader
	auth     *state.AuthStore
}

func NewAuthService(
	api AuthAPI,
	sessions *session.Manager,
	creds CredentialReader,
	auth *state.AuthStore,
	notifier notify.Notifier,
) *AuthService {
	return &AuthService{
		reporter: reporter{notifier: notifier},
		api:      api,
		sessions: sessions,
		creds:    creds,
		auth:     auth,
	}
}

// ValidateLogin checks the login form before anything is sent.
func ValidateLogin(username, password string) *apperrors.AppError {
	if strings.TrimSpace(username) == "" {
		return apperrors.ValidationError("Please enter username")
	}
	if strings.TrimSpace(password) == "" {
		return apperrors.ValidationError("Please enter password")
	}
	if len(password) < minPasswordLength {
		return apperrors.ValidationError("Password must be at least 3 characters")
	}
	return nil
}

// VerifyAdminCode exchanges an access code for temporary admin credentials.
func (s *AuthService) VerifyAdminCode(ctx context.Context, accessCode string) (*model.AdminCredentials, error) {
	if strings.TrimSpace(accessCode) == "" {
		return nil, s.reject(ctx, "verify_code", apperrors.ValidationError("Please enter access code"))
	}

	creds, err := s.api.VerifyAdminCode(ctx, strings.TrimSpace(accessCode))
	if err != nil {
		return nil, s.fail(ctx, "verify_code", err, "Invalid access code", nil)
	}

	audit.Log(ctx, audit.Event{
		Type:    audit.EventCodeVerify,
		Role:    string(model.RoleAdmin),
		Details: map[string]any{"username": creds.Username},
	})
	s.ok("Admin credentials generated successfully!")
	return creds, nil
}

// Login signs in as role and establishes the session on success.
func (s *AuthService) Login(ctx context.Context, role model.Role, username, password string) (*model.LoginResponse, error) {
	if verr := ValidateLogin(username, password); verr != nil {
		return nil, s.reject(ctx, "login", verr)
	}

	resp, err := s.api.Login(ctx, role, strings.TrimSpace(username), password)
	if err != nil {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventLoginFailure,
			Role:    string(role),
			Details: map[string]any{"username": username, "status": apperrors.StatusOf(err)},
		})
		return nil, s.fail(ctx, "login", err, "Login failed", nil)
	}

	if err := s.sessions.Establish(ctx, resp.AccessToken, role, resp.Identity()); err != nil {
		return nil, s.failWith(ctx, "login", err, "Login failed")
	}
	s.ok("Login successful!")
	return resp, nil
}

// Logout clears the session through the same path a 401 takes.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.ClearSession(ctx, session.ReasonLogout)
}

// Identity describes the stored credential for display.
type Identity struct {
	SignedIn bool
	Role     model.Role
	// MaskedToken shows only the ends of the bearer token.
	MaskedToken string
	User        *model.User
	Claims      *credstore.TokenClaims
}

// WhoAmI reports the stored role, the in-memory user if any, and the
// token claims when the token is a readable JWT. It never calls the
// backend and never rejects an expired token.
func (s *AuthService) WhoAmI(ctx context.Context) (*Identity, error) {
	role, ok, err := s.creds.Role(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Identity{}, nil
	}

	token, ok, err := s.creds.Token(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Identity{}, nil
	}

	id := &Identity{SignedIn: true, Role: role, MaskedToken: util.MaskToken(token)}
	if snap := s.auth.Snapshot(); snap.IsAuthenticated {
		id.User = snap.User
	}

	if claims, err := credstore.ParseClaims(token); err == nil {
		id.Claims = claims
	}
	return id, nil
}
