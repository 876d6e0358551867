package state

import (
	"sync"

	"github.com/therapyassist/dashboard-go/internal/model"
)

// ChatStore holds the selected session and its transcript in append order.
//
// Every session switch bumps a generation counter. A caller that starts a
// request captures Generation() first and applies the result with AppendIf,
// so a late response for a superseded session is dropped instead of landing
// in the new transcript.
type ChatStore struct {
	mu         sync.RWMutex
	current    *model.Session
	messages   []model.Message
	generation uint64
}

func NewChatStore() *ChatStore {
	return &ChatStore{}
}

// SetCurrentSession selects a session (nil deselects) and returns the new
// generation.
func (s *ChatStore) SetCurrentSession(session *model.Session) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session == nil {
		s.current = nil
	} else {
		copied := *session
		s.current = &copied
	}
	s.generation++
	return s.generation
}

func (s *ChatStore) CurrentSession() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

func (s *ChatStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *ChatStore) Append(messages ...model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, messages...)
}

// AppendIf appends only while gen is still the current generation.
func (s *ChatStore) AppendIf(gen uint64, messages ...model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.messages = append(s.messages, messages...)
	return true
}

// Replace swaps the whole transcript.
func (s *ChatStore) Replace(messages []model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append([]model.Message(nil), messages...)
}

func (s *ChatStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Messages returns a copy of the transcript.
func (s *ChatStore) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Message(nil), s.messages...)
}

func (s *ChatStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Reset deselects the session and drops the transcript.
func (s *ChatStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.messages = nil
	s.generation++
}
