package identity

import "sync"

// Signal exposes the current authenticated user, if any, and lets observers
// react to identity transitions. The zero user ID means anonymous.
type Signal interface {
	// Current returns the signed-in user ID and true, or "" and false when
	// the session is anonymous.
	Current() (string, bool)
	// Subscribe registers fn to run on every identity transition. It is
	// invoked synchronously on the goroutine performing the transition.
	// The returned function removes the subscription.
	Subscribe(fn func(userID string, authenticated bool)) (unsubscribe func())
}

// Session is an in-process Signal owned by one client session. SignIn and
// SignOut publish transitions to subscribers; repeated calls with an unchanged
// identity do not notify.
type Session struct {
	mu     sync.Mutex
	userID string
	nextID int
	subs   map[int]func(string, bool)
}

func NewSession() *Session {
	return &Session{subs: make(map[int]func(string, bool))}
}

func (s *Session) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.userID != ""
}

func (s *Session) Subscribe(fn func(userID string, authenticated bool)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SignIn transitions the session to the given user. A no-op if the session is
// already signed in as that user.
func (s *Session) SignIn(userID string) {
	if userID == "" {
		return
	}
	s.publish(userID)
}

// SignOut transitions the session back to anonymous.
func (s *Session) SignOut() {
	s.publish("")
}

func (s *Session) publish(userID string) {
	s.mu.Lock()
	if s.userID == userID {
		s.mu.Unlock()
		return
	}
	s.userID = userID
	subs := make([]func(string, bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(userID, userID != "")
	}
}
