package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventLoginSuccess   EventType = "login_success"
	EventLoginFailure   EventType = "login_failure"
	EventLogout         EventType = "logout"
	EventSessionExpired EventType = "session_expired"
	EventCodeVerify     EventType = "code_verify"
	EventReportDownload EventType = "report_download"
	EventUserCreate     EventType = "user_create"
	EventUserDeactivate EventType = "user_deactivate"
	EventUserReactivate EventType = "user_reactivate"
)

type Event struct {
	Type      EventType
	UserID    string
	Role      string
	SessionID string
	IP        string
	UserAgent string
	Details   map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}

	child := logger.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.UserID != "" {
		child = child.With().Str("user_id", event.UserID).Logger()
	}
	if event.Role != "" {
		child = child.With().Str("role", event.Role).Logger()
	}
	if event.SessionID != "" {
		child = child.With().Str("session_id", event.SessionID).Logger()
	}
	if event.IP != "" {
		child = child.With().Str("ip", event.IP).Logger()
	}
	if event.UserAgent != "" {
		child = child.With().Str("user_agent", event.UserAgent).Logger()
	}

	logEvent := child.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}

// LogFromRequest records an event observed by an HTTP handler.
func LogFromRequest(r *http.Request, event Event) {
	event.IP = getClientIP(r)
	event.UserAgent = r.UserAgent()
	Log(r.Context(), event)
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
