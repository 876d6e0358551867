// Package state holds the in-memory application state shared by the
// dashboard actions. Nothing here is persisted.
package state

import (
	"sync"

	"github.com/therapyassist/dashboard-go/internal/model"
)

type AuthSnapshot struct {
	User            *model.User
	Role            model.Role
	IsAuthenticated bool
}

// AuthStore holds the signed-in user and role.
type AuthStore struct {
	mu   sync.RWMutex
	user *model.User
	role model.Role
}

func NewAuthStore() *AuthStore {
	return &AuthStore{}
}

func (s *AuthStore) SetUser(user *model.User, role model.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		s.role = ""
		return
	}
	copied := *user
	s.user = &copied
	s.role = role
}

func (s *AuthStore) Snapshot() AuthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := AuthSnapshot{Role: s.role, IsAuthenticated: s.user != nil}
	if s.user != nil {
		copied := *s.user
		snap.User = &copied
	}
	return snap
}

// Reset forgets the user. Persisted credentials are cleared by
// session.Manager, never here.
func (s *AuthStore) Reset() {
	s.SetUser(nil, "")
}
