package identity

import (
	"sync"

	"github.com/dmitrijs2005/classkeeper/internal/client/models"
)

// Session holds the currently signed-in user. Absence of a user is a
// precondition failure for both the capture recorder and the sync drainer.
type Session struct {
	mu   sync.Mutex
	user *models.User
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) SignIn(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// Current returns the signed-in user, or nil when nobody is signed in.
func (s *Session) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}
