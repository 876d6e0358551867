// Package notify delivers short user-facing status messages, the
// terminal counterpart of toast notifications.
package notify

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Console writes notifications through a zerolog logger.
type Console struct {
	logger zerolog.Logger
}

func NewConsole(logger zerolog.Logger) *Console {
	return &Console{logger: logger}
}

// Default writes through the global logger.
func Default() *Console {
	return NewConsole(log.Logger)
}

func (c *Console) Success(msg string) {
	c.logger.Info().Str("notice", "success").Msg(msg)
}

func (c *Console) Error(msg string) {
	c.logger.Error().Str("notice", "error").Msg(msg)
}

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Notice struct {
	Kind    Kind
	Message string
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Success(msg string) {
	r.add(KindSuccess, msg)
}

func (r *Recorder) Error(msg string) {
	r.add(KindError, msg)
}

func (r *Recorder) add(kind Kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Kind: kind, Message: msg})
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice, or the zero Notice.
func (r *Recorder) Last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}
