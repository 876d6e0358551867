package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/therapyassist/dashboard-go/internal/config"
	"github.com/therapyassist/dashboard-go/internal/model"
)

// Auth

func (c *Client) VerifyAdminCode(ctx context.Context, accessCode string) (*model.AdminCredentials, error) {
	var out model.AdminCredentials
	if err := c.postJSON(ctx, PathAdminVerifyCode, model.VerifyCodeRequest{AccessCode: accessCode}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminLogin(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	return c.login(ctx, PathAdminLogin, username, password)
}

func (c *Client) UserLogin(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	return c.login(ctx, PathUserLogin, username, password)
}

// Login dispatches to the admin or user login endpoint.
func (c *Client) Login(ctx context.Context, role model.Role, username, password string) (*model.LoginResponse, error) {
	switch role {
	case model.RoleAdmin:
		return c.AdminLogin(ctx, username, password)
	case model.RoleUser:
		return c.UserLogin(ctx, username, password)
	default:
		return nil, fmt.Errorf("login: unknown role %q", role)
	}
}

func (c *Client) login(ctx context.Context, path, username, password string) (*model.LoginResponse, error) {
	var out model.LoginResponse
	if err := c.postJSON(ctx, path, model.LoginRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users

func (c *Client) CreateDashboardUser(ctx context.Context, req model.CreateUserRequest) (*model.CreateUserResponse, error) {
	var out model.CreateUserResponse
	if err := c.postJSON(ctx, PathAdminCreateUser, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DefaultListUsersParams lists the first page of active users of any type.
func DefaultListUsersParams() model.ListUsersParams {
	return model.ListUsersParams{
		Skip:  config.DefaultListSkip,
		Limit: config.DefaultListLimit,
	}
}

// AllUsersQuery always carries skip, limit and include_inactive;
// user_type only when a type filter is set.
func AllUsersQuery(params model.ListUsersParams) url.Values {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(params.Skip))
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("include_inactive", strconv.FormatBool(params.IncludeInactive))
	if params.UserType != "" {
		q.Set("user_type", string(params.UserType))
	}
	return q
}

// GetAllUsers lists VR and dashboard users.
func (c *Client) GetAllUsers(ctx context.Context, params model.ListUsersParams) (model.UserList, error) {
	var out model.UserList
	if err := c.getJSON(ctx, PathAdminAllUsers, AllUsersQuery(params), &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// GetDashboardUsers is the legacy dashboard-only listing.
func (c *Client) GetDashboardUsers(ctx context.Context, skip, limit int) (model.UserList, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var out model.UserList
	if err := c.getJSON(ctx, PathAdminUsers, q, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) GetUserDetails(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	if err := c.getJSON(ctx, AdminUserPath(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser sends only the fields set in req. The backend ignores fields
// that do not apply to VR users.
func (c *Client) UpdateUser(ctx context.Context, userID string, req model.UpdateUserRequest) (*model.User, error) {
	r, err := jsonRequest(http.MethodPut, AdminUserPath(userID), req)
	if err != nil {
		return nil, err
	}
	var out model.User
	if err := c.doJSON(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateUser soft-deletes a user.
func (c *Client) DeactivateUser(ctx context.Context, userID string) error {
	return c.doJSON(ctx, request{method: http.MethodDelete, path: AdminUserPath(userID)}, nil)
}

func (c *Client) ReactivateUser(ctx context.Context, userID string) error {
	return c.postJSON(ctx, AdminReactivateUserPath(userID), nil, nil)
}

func (c *Client) GetUserHistory(ctx context.Context, userID string) (*model.UserHistory, error) {
	var out model.UserHistory
	if err := c.getJSON(ctx, AdminUserHistoryPath(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Admin telemetry

func (c *Client) GetAdminStats(ctx context.Context) (*model.DashboardStats, error) {
	var out model.DashboardStats
	if err := c.getJSON(ctx, PathAdminStats, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAdminActivity(ctx context.Context) (model.ActivityList, error) {
	var out model.ActivityList
	if err := c.getJSON(ctx, PathAdminActivity, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Sessions

// GetAllSessions lists every session; status filters when non-empty.
func (c *Client) GetAllSessions(ctx context.Context, status string) (model.SessionList, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var out model.SessionList
	if err := c.getJSON(ctx, PathAdminSessions, q, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) GetMySessions(ctx context.Context) (model.SessionList, error) {
	var out model.SessionList
	if err := c.getJSON(ctx, PathSessionMySessions, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) CreateSession(ctx context.Context, req model.CreateSessionRequest) (*model.Session, error) {
	var out model.Session
	if err := c.postJSON(ctx, PathSessionCreate, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeSession starts backend analysis of the conversation.
func (c *Client) AnalyzeSession(ctx context.Context, sessionID string) (*model.AnalyzeResponse, error) {
	var out model.AnalyzeResponse
	if err := c.postJSON(ctx, SessionAnalyzePath(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat

func (c *Client) SendChatMessage(ctx context.Context, sessionID, message string) (*model.ChatMessageResponse, error) {
	var out model.ChatMessageResponse
	req := model.ChatMessageRequest{SessionID: sessionID, Message: message}
	if err := c.postJSON(ctx, PathChatMessage, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendAudioMessage uploads a recording as multipart form data with the
// fields audio and session_id.
func (c *Client) SendAudioMessage(ctx context.Context, sessionID, filename string, audio io.Reader) (*model.AudioMessageResponse, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("audio", filename)
	if err != nil {
		return nil, fmt.Errorf("create audio part: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if err := form.WriteField("session_id", sessionID); err != nil {
		return nil, fmt.Errorf("write session_id: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var out model.AudioMessageResponse
	r := request{
		method:      http.MethodPost,
		path:        PathChatAudio,
		body:        &buf,
		contentType: form.FormDataContentType(),
	}
	if err := c.doJSON(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reports

func (c *Client) GenerateReport(ctx context.Context, sessionID string) (*model.Report, error) {
	var out model.Report
	req := model.GenerateReportRequest{IncludeConversation: true}
	if err := c.postJSON(ctx, ReportGeneratePath(sessionID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}
