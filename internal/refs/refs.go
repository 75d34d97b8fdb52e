// Package refs holds the per-session event reference tables. A search
// renders numbered entries and records each number here so a follow-up
// "show me #3" resolves to exactly the record that was shown. Tables are
// scoped by session id; one user's search never answers another user's
// click.
package refs

import (
	"sync"

	"avevents/internal/domain"
)

// Registry maps session ids to their reference tables.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[int]domain.EventRecord
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]map[int]domain.EventRecord)}
}

// Clear drops the session's table. Called at the start of every full search;
// append-mode searches skip it and keep numbering from MaxKey.
func (g *Registry) Clear(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, sessionID)
}

// Put stores a record under the key that was rendered for it.
func (g *Registry) Put(sessionID string, key int, rec domain.EventRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	table, ok := g.sessions[sessionID]
	if !ok {
		table = make(map[int]domain.EventRecord)
		g.sessions[sessionID] = table
	}
	table[key] = rec
}

// Lookup resolves a rendered reference key.
func (g *Registry) Lookup(sessionID string, key int) (domain.EventRecord, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.sessions[sessionID][key]
	return rec, ok
}

// MaxKey returns the highest key in the session's table, or 0 when empty.
// Append-mode searches continue numbering from here.
func (g *Registry) MaxKey(sessionID string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	maxKey := 0
	for k := range g.sessions[sessionID] {
		if k > maxKey {
			maxKey = k
		}
	}
	return maxKey
}

// Len reports the number of cached references for a session.
func (g *Registry) Len(sessionID string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions[sessionID])
}
