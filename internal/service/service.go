// Package service holds the dashboard workflows behind each page action:
// local validation, the backend calls, state updates and the message
// shown to the user.
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/therapyassist/dashboard-go/internal/errors"
	"github.com/therapyassist/dashboard-go/internal/notify"
)

// Error is a failed dashboard action. Message is the text the user was
// shown; Err is the underlying cause.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

type reporter struct {
	notifier notify.Notifier
}

// fail notifies the user-facing message for err and returns it wrapped.
func (r reporter) fail(ctx context.Context, action string, err error, fallback string, byStatus apperrors.StatusMessages) error {
	return r.failWith(ctx, action, err, apperrors.UserMessage(err, fallback, byStatus))
}

// failWith is fail with a fixed message that ignores the backend text.
func (r reporter) failWith(ctx context.Context, action string, err error, msg string) error {
	log.Ctx(ctx).Debug().Err(err).Str("action", action).Msg(msg)
	r.notifier.Error(msg)
	return &Error{Message: msg, Err: err}
}

// reject fails an action locally, before any backend call.
func (r reporter) reject(ctx context.Context, action string, err *apperrors.AppError) error {
	return r.failWith(ctx, action, err, err.Message)
}

func (r reporter) ok(msg string) {
	r.notifier.Success(msg)
}
