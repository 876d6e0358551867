package service

import (
	"context"
	"strings"

	"github.com/therapyassist/dashboard-go/internal/audit"
	apperrors "github.com/therapyassist/dashboard-go/internal/errors"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/util"
)

type UserAPI interface {
	CreateDashboardUser(ctx context.Context, req model.CreateUserRequest) (*model.CreateUserResponse, error)
	GetAllUsers(ctx context.Context, params model.ListUsersParams) (model.UserList, error)
	GetUserDetails(ctx context.Context, userID string) (*model.User, error)
	UpdateUser(ctx context.Context, userID string, req model.UpdateUserRequest) (*model.User, error)
	DeactivateUser(ctx context.Context, userID string) error
	ReactivateUser(ctx context.Context, userID string) error
	GetUserHistory(ctx context.Context, userID string) (*model.UserHistory, error)
}

type UserService struct {
	reporter
	api UserAPI
}

func NewUserService(api UserAPI, notifier notify.Notifier) *UserService {
	return &UserService{reporter: reporter{notifier: notifier}, api: api}
}

// ValidateNewUser checks a create form. The standalone create form makes
// the email mandatory; the quick form on the users list does not.
func ValidateNewUser(req model.CreateUserRequest, requireEmail bool) *apperrors.AppError {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.ValidationError("Name is required")
	}
	email := strings.TrimSpace(req.Email)
	if requireEmail && email == "" {
		return apperrors.ValidationError("Email is required")
	}
	if email != "" && !util.IsValidEmail(email) {
		return apperrors.ValidationError("Please enter a valid email address")
	}
	return nil
}

// Create adds a dashboard user and returns its one-time credentials.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest, requireEmail bool) (*model.CreateUserResponse, error) {
	if verr := ValidateNewUser(req, requireEmail); verr != nil {
		return nil, s.reject(ctx, "create_user", verr)
	}

	resp, err := s.api.CreateDashboardUser(ctx, model.CreateUserRequest{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
		Notes: strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return nil, s.fail(ctx, "create_user", err, "Failed to create user", nil)
	}

	audit.Log(ctx, audit.Event{
		Type:    audit.EventUserCreate,
		UserID:  resp.UserID,
		Details: map[string]interface{}{"username": resp.Username},
	})
	s.ok("User created successfully!")
	return resp, nil
}

func (s *UserService) List(ctx context.Context, params model.ListUsersParams) (model.UserList, error) {
	users, err := s.api.GetAllUsers(ctx, params)
	if err != nil {
		return nil, s.failWith(ctx, "list_users", err, "Failed to load users")
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.api.GetUserDetails(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "get_user", err, "Failed to load user", nil)
	}
	return user, nil
}

// Update edits a user. A name, when given, must not be blank.
func (s *UserService) Update(ctx context.Context, userID string, req model.UpdateUserRequest) (*model.User, error) {
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, s.reject(ctx, "update_user", apperrors.ValidationError("Name is required"))
		}
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}

	user, err := s.api.UpdateUser(ctx, userID, req)
	if err != nil {
		return nil, s.fail(ctx, "update_user", err, "Failed to update user", nil)
	}
	s.ok("User updated successfully!")
	return user, nil
}

// Deactivate soft-deletes a user. userType only shapes the message.
func (s *UserService) Deactivate(ctx context.Context, userID string, userType model.UserType) error {
	if err := s.api.DeactivateUser(ctx, userID); err != nil {
		return s.fail(ctx, "deactivate_user", err, "Failed to deactivate user", nil)
	}

	audit.Log(ctx, audit.Event{Type: audit.EventUserDeactivate, UserID: userID})
	label := "Dashboard"
	if userType == model.UserTypeVR {
		label = "VR"
	}
	s.ok(label + " user deactivated successfully")
	return nil
}

func (s *UserService) Reactivate(ctx context.Context, userID string) error {
	if err := s.api.ReactivateUser(ctx, userID); err != nil {
		return s.fail(ctx, "reactivate_user", err, "Failed to reactivate user", nil)
	}

	audit.Log(ctx, audit.Event{Type: audit.EventUserReactivate, UserID: userID})
	s.ok("User reactivated successfully")
	return nil
}

func (s *UserService) History(ctx context.Context, userID string) (*model.UserHistory, error) {
	history, err := s.api.GetUserHistory(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "user_history", err, "Failed to load user history", nil)
	}
	return history, nil
}
