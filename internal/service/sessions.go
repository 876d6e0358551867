package service

import (
	"context"

	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/state"
)

type SessionAPI interface {
	GetMySessions(ctx context.Context) (model.SessionList, error)
	GetAllSessions(ctx context.Context, status string) (model.SessionList, error)
	CreateSession(ctx context.Context, req model.CreateSessionRequest) (*model.Session, error)
	AnalyzeSession(ctx context.Context, sessionID string) (*model.AnalyzeResponse, error)
}

type SessionService struct {
	reporter
	api  SessionAPI
	chat *state.ChatStore
}

func NewSessionService(api SessionAPI, chat *state.ChatStore, notifier notify.Notifier) *SessionService {
	return &SessionService{reporter: reporter{notifier: notifier}, api: api, chat: chat}
}

// Mine lists the signed-in user's sessions, newest first as the backend
// returns them.
func (s *SessionService) Mine(ctx context.Context) (model.SessionList, error) {
	sessions, err := s.api.GetMySessions(ctx)
	if err != nil {
		return nil, s.failWith(ctx, "my_sessions", err, "Failed to load sessions")
	}
	return sessions, nil
}

// All lists every session for admins. An empty status means no filter.
func (s *SessionService) All(ctx context.Context, status string) (model.SessionList, error) {
	sessions, err := s.api.GetAllSessions(ctx, status)
	if err != nil {
		return nil, s.failWith(ctx, "all_sessions", err, "Failed to load sessions")
	}
	return sessions, nil
}

// Create starts a web session and makes it the current one with an empty
// transcript.
func (s *SessionService) Create(ctx context.Context) (*model.Session, error) {
	created, err := s.api.CreateSession(ctx, model.CreateSessionRequest{SessionType: model.SessionTypeWeb})
	if err != nil {
		return nil, s.failWith(ctx, "create_session", err, "Failed to create session")
	}

	s.Select(created)
	s.ok("New session created")
	return created, nil
}

// Select switches the current session. Responses still in flight for the
// previous session are dropped when they arrive.
func (s *SessionService) Select(session *model.Session) {
	s.chat.SetCurrentSession(session)
	s.chat.Clear()
}

func (s *SessionService) Analyze(ctx context.Context, sessionID string) (*model.AnalyzeResponse, error) {
	resp, err := s.api.AnalyzeSession(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, "analyze_session", err, "Failed to analyze session", nil)
	}
	return resp, nil
}
