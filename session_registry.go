// Copyright (c) 2025-2026 SearchGate Inc. All rights reserved.

package gosearchgate

import (
	"sync"
	"time"
)

type sessionKey struct {
	connectionID string
	language     QueryLanguage
}

// SessionEntry holds the sticky backend session id for one
// (connection, language) pair.
type SessionEntry struct {
	SessionID  string
	LastUsedAt time.Time
}

// SessionRegistry keeps the session id a backend uses to correlate a
// sequence of queries into one logical session. Entries live for the
// process lifetime; eviction is caller driven via Clear.
type SessionRegistry struct {
	mu      sync.Mutex
	entries map[sessionKey]SessionEntry
	now     func() time.Time
}

// NewSessionRegistry returns an empty registry. Construct one per process
// and inject it into the coordinator.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		entries: make(map[sessionKey]SessionEntry),
		now:     time.Now,
	}
}

// Resolve returns the current session id for the pair. The second return is
// false when no session has been recorded.
func (sr *SessionRegistry) Resolve(connectionID string, language QueryLanguage) (string, bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	entry, ok := sr.entries[sessionKey{connectionID, language}]
	if !ok {
		return "", false
	}
	return entry.SessionID, true
}

// Update unconditionally overwrites the stored session id. Last writer wins;
// the backend is the single source of truth for session continuity.
func (sr *SessionRegistry) Update(connectionID string, language QueryLanguage, sessionID string) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.entries[sessionKey{connectionID, language}] = SessionEntry{
		SessionID:  sessionID,
		LastUsedAt: sr.now(),
	}
}

// Clear drops the entry so the next query starts a fresh backend session.
func (sr *SessionRegistry) Clear(connectionID string, language QueryLanguage) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	delete(sr.entries, sessionKey{connectionID, language})
}
