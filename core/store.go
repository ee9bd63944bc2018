package core

import (
	"fmt"
	"sync"
)

// Store is the process-wide session registry. It maps session ids to their
// conversation histories and is safe for concurrent use. The store never
// expires entries on its own; Delete is the hook for external eviction
// policies.
//
// The registry lock only guards the map. Appends go through each History's
// own lock, so requests against different sessions do not block one another.
type Store struct {
	systemPrompt string

	mu       sync.RWMutex
	sessions map[string]*History
}

// NewStore creates an empty session store. New histories are seeded with
// systemPrompt as their first message; pass "" to skip seeding.
func NewStore(systemPrompt string) *Store {
	return &Store{
		systemPrompt: systemPrompt,
		sessions:     make(map[string]*History),
	}
}

// GetOrCreate returns the history registered under sessionID, creating and
// registering a new one when the id is empty or unknown. Newly created
// histories receive a generated id and the system persona message.
func (s *Store) GetOrCreate(sessionID string) *History {
	if sessionID != "" {
		s.mu.RLock()
		h, ok := s.sessions[sessionID]
		s.mu.RUnlock()
		if ok {
			return h
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the write lock: a concurrent request may have
	// registered the same id between the two lock acquisitions.
	if sessionID != "" {
		if h, ok := s.sessions[sessionID]; ok {
			return h
		}
	}

	// Unknown ids are not adopted: a new session always gets a fresh
	// identifier, which the client learns from the response.
	h := NewHistory("")
	if s.systemPrompt != "" {
		// RoleSystem is always valid, the error cannot fire here.
		_, _ = h.Append(RoleSystem, s.systemPrompt)
	}
	s.sessions[h.SessionID()] = h
	return h
}

// Get returns the history for sessionID, or ErrSessionNotFound.
func (s *Store) Get(sessionID string) (*History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}
	return h, nil
}

// Delete removes the session from the registry and reports whether it
// existed. In-flight requests holding the history keep a working reference;
// the session simply becomes unreachable for new lookups.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok
}

// Len returns the number of registered sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
