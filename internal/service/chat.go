package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	apperrors "github.com/therapyassist/dashboard-go/internal/errors"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/state"
)

// ErrNothingToSend is returned for a blank message or when no session is
// selected. Nothing is sent and the user is not notified.
var ErrNothingToSend = errors.New("nothing to send")

type ChatAPI interface {
	SendChatMessage(ctx context.Context, sessionID, message string) (*model.ChatMessageResponse, error)
	SendAudioMessage(ctx context.Context, sessionID, filename string, audio io.Reader) (*model.AudioMessageResponse, error)
}

type ChatService struct {
	reporter
	api  ChatAPI
	chat *state.ChatStore
	now  func() time.Time
}

func NewChatService(api ChatAPI, chat *state.ChatStore, notifier notify.Notifier) *ChatService {
	return &ChatService{
		reporter: reporter{notifier: notifier},
		api:      api,
		chat:     chat,
		now:      time.Now,
	}
}

// Send appends the user's message right away, then the assistant reply
// once it arrives. The user message stays in the transcript when the call
// fails. A reply for a session that is no longer current is dropped.
func (s *ChatService) Send(ctx context.Context, text string) (*model.ChatMessageResponse, error) {
	current := s.chat.CurrentSession()
	if strings.TrimSpace(text) == "" || current == nil {
		return nil, ErrNothingToSend
	}
	gen := s.chat.Generation()

	s.chat.AppendIf(gen, model.Message{
		Role:      model.MessageRoleUser,
		Content:   text,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	})

	resp, err := s.api.SendChatMessage(ctx, current.SessionID, text)
	if err != nil {
		return nil, s.failWith(ctx, "send_message", err, "Failed to send message")
	}

	s.chat.AppendIf(gen, model.Message{
		Role:      model.MessageRoleAssistant,
		Content:   resp.BotResponse,
		Timestamp: resp.Timestamp,
	})
	return resp, nil
}

// SendAudio uploads a recording and appends the transcription and the
// reply together.
func (s *ChatService) SendAudio(ctx context.Context, filename string, audio io.Reader) (*model.AudioMessageResponse, error) {
	current := s.chat.CurrentSession()
	if current == nil {
		return nil, s.reject(ctx, "send_audio", apperrors.Precondition(NoActiveSessionMessage))
	}
	gen := s.chat.Generation()

	resp, err := s.api.SendAudioMessage(ctx, current.SessionID, filename, audio)
	if err != nil {
		return nil, s.failWith(ctx, "send_audio", err, "Failed to process audio")
	}

	s.chat.AppendIf(gen,
		model.Message{Role: model.MessageRoleUser, Content: resp.Transcription, Timestamp: resp.Timestamp},
		model.Message{Role: model.MessageRoleAssistant, Content: resp.BotResponse, Timestamp: resp.Timestamp},
	)
	s.ok("Audio message sent")
	return resp, nil
}
