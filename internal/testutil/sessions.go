package testutil

import (
	"context"
	"sync"
)

// FakeSessions is an in-memory auth.Resolver.
type FakeSessions struct {
	mu       sync.Mutex
	sessions map[string]string // sessionID -> userID
}

// NewFakeSessions creates an empty FakeSessions.
func NewFakeSessions() *FakeSessions {
	return &FakeSessions{sessions: make(map[string]string)}
}

// Add registers a session for userID.
func (f *FakeSessions) Add(sessionID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sessionID] = userID
}

func (f *FakeSessions) GetUserID(ctx context.Context, sessionID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, ok := f.sessions[sessionID]
	return userID, ok
}
