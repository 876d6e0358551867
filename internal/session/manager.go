// Package session owns the signed-in lifecycle: establishing credentials
// after a login and tearing everything down on logout or expiry.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/therapyassist/dashboard-go/internal/audit"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/state"
)

const ExpiredMessage = "Session expired. Please log in again."

type Reason string

const (
	ReasonLogout  Reason = "logout"
	ReasonExpired Reason = "expired"
)

type CredentialStore interface {
	Save(ctx context.Context, token string, role model.Role) error
	Clear(ctx context.Context) error
}

// Navigator moves the user to the login view.
type Navigator interface {
	ToLogin()
}

type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

type Manager struct {
	creds    CredentialStore
	auth     *state.AuthStore
	chat     *state.ChatStore
	nav      Navigator
	notifier notify.Notifier
}

func NewManager(
	creds CredentialStore,
	auth *state.AuthStore,
	chat *state.ChatStore,
	nav Navigator,
	notifier notify.Notifier,
) *Manager {
	return &Manager{
		creds:    creds,
		auth:     auth,
		chat:     chat,
		nav:      nav,
		notifier: notifier,
	}
}

// Establish persists the credential and publishes the signed-in user.
func (m *Manager) Establish(ctx context.Context, token string, role model.Role, user *model.User) error {
	if err := m.creds.Save(ctx, token, role); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	m.auth.SetUser(user, role)

	event := audit.Event{Type: audit.EventLoginSuccess, Role: string(role)}
	if user != nil {
		event.UserID = user.UserID
	}
	audit.Log(ctx, event)
	return nil
}

// ClearSession is the only path that signs the user out. It clears the
// persisted credential and both state stores, then navigates to login.
// The stores are reset even when the credential store fails.
func (m *Manager) ClearSession(ctx context.Context, reason Reason) error {
	var clearErr error
	if err := m.creds.Clear(ctx); err != nil {
		log.Error().Err(err).Str("reason", string(reason)).Msg("failed to clear stored credentials")
		clearErr = fmt.Errorf("clear session: %w", err)
	}

	snap := m.auth.Snapshot()
	m.auth.Reset()
	m.chat.Reset()

	event := audit.Event{Type: audit.EventLogout, Role: string(snap.Role)}
	if snap.User != nil {
		event.UserID = snap.User.UserID
	}
	if reason == ReasonExpired {
		event.Type = audit.EventSessionExpired
		m.notifier.Error(ExpiredMessage)
	}
	audit.Log(ctx, event)

	m.nav.ToLogin()
	return clearErr
}

// HandleUnauthorized is installed on the API client and runs once for
// every 401 response.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	if err := m.ClearSession(ctx, ReasonExpired); err != nil {
		log.Warn().Err(err).Msg("session cleared with errors after 401")
	}
}
