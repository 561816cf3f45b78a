package metadata

import "time"

// Login creates the User record on first login, then records a new
// ActiveSession. Returns ErrSessionLocked if username already has a
// session bound to a different client (testable property 7).
func (s *Store) Login(username, clientIP string) error {
	s.usersMu.Lock()
	if _, exists := s.users[username]; !exists {
		s.users[username] = &User{Username: username, RegisteredAt: time.Now()}
	}
	s.usersMu.Unlock()

	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	if existing, exists := s.sessions[username]; exists {
		return NewSessionLockedError(username, existing.ClientIP, existing.LoginTime.Format(time.RFC3339))
	}
	s.sessions[username] = &ActiveSession{
		Username: username, ClientIP: clientIP, LoginTime: time.Now(),
	}
	return nil
}

// Logout removes username's active session, if any (socket close or
// explicit logout). The user record itself is retained.
func (s *Store) Logout(username string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, username)
}

// UserExists reports whether username has ever logged in.
func (s *Store) UserExists(username string) bool {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	_, ok := s.users[username]
	return ok
}

// ListUsers returns every registered user (LIST_USERS).
func (s *Store) ListUsers() []User {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out
}

// ListSessions returns every currently active session.
func (s *Store) ListSessions() []ActiveSession {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()

	out := make([]ActiveSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	return out
}
