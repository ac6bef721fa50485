// Package presence tracks which live sessions currently look at which spok.
// The index is ephemeral and node-local: it exists so spok echoes reach only
// the sessions that actually render the spok right now.
package presence

import (
	"context"
	"log/slog"
	"sync"
)

type Registry struct {
	Logger *slog.Logger

	mu        sync.RWMutex
	bySpok    map[int64]map[string]struct{}
	bySession map[string]map[int64]struct{}
}

func (r *Registry) Init(context.Context) error {
	r.Logger = r.Logger.With("component", "presence")
	r.bySpok = map[int64]map[string]struct{}{}
	r.bySession = map[string]map[int64]struct{}{}
	return nil
}

func (r *Registry) Watch(sessionID string, spokID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bySpok[spokID] == nil {
		r.bySpok[spokID] = map[string]struct{}{}
	}
	r.bySpok[spokID][sessionID] = struct{}{}

	if r.bySession[sessionID] == nil {
		r.bySession[sessionID] = map[int64]struct{}{}
	}
	r.bySession[sessionID][spokID] = struct{}{}
}

func (r *Registry) Leave(sessionID string, spokID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.forget(sessionID, spokID)
}

// Drop removes every trace of a session, called when its connection closes.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spokID := range r.bySession[sessionID] {
		r.forget(sessionID, spokID)
	}
}

func (r *Registry) Watchers(spokID int64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]string, 0, len(r.bySpok[spokID]))
	for sessionID := range r.bySpok[spokID] {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

func (r *Registry) forget(sessionID string, spokID int64) {
	delete(r.bySpok[spokID], sessionID)
	if len(r.bySpok[spokID]) == 0 {
		delete(r.bySpok, spokID)
	}

	delete(r.bySession[sessionID], spokID)
	if len(r.bySession[sessionID]) == 0 {
		delete(r.bySession, sessionID)
	}
}
