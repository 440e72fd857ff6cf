// Package liveregistry holds the in-memory map of active Telegram
// live-location shares (spec §4.3). It is process-wide mutable state,
// encapsulated behind a small handle so nothing outside this package ever
// touches the underlying map directly — the design note in spec §9 calls
// this out explicitly.
package liveregistry

import (
	"sync"
	"time"
)

// Key identifies one live-location stream by the chat and message it is
// being edited through.
type Key struct {
	ChatID    int64
	MessageID int64
}

// Entry is one active live-session registry row.
type Entry struct {
	EmployeeID   string
	ProjectName  string
	LiveUntilMs  *int64 // nil means "unknown duration"
	LastUpdateMs int64
}

// Registry is a keyed map of active live-location sessions, guarded by a
// single mutex (spec §5: "a single mutex (or per-key fine-grained locking)
// suffices").
type Registry struct {
	mu      sync.Mutex
	entries map[Key]Entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[Key]Entry)}
}

// Get returns a copy of the entry for key, or ok=false if absent.
func (r *Registry) Get(key Key) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	return e, ok
}

// UpsertResult tells the caller what happened to the registry so ingestion
// can derive the effective isLive flag per spec §4.3.
type UpsertResult struct {
	IsLive bool
	Entry  Entry
	Exists bool
}

// Upsert applies the §4.3 update rules for one ingested event and returns
// the resulting entry (if any) and whether the event should be treated as
// live. The whole read-modify-write is one critical section, so a
// concurrent sweeper tick can never observe a half-updated entry.
func (r *Registry) Upsert(key Key, employeeID, projectName string, livePeriodSeconds *int, isEdit bool, now time.Time) UpsertResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := now.UnixMilli()
	existing, exists := r.entries[key]

	switch {
	case livePeriodSeconds != nil && *livePeriodSeconds > 0:
		until := nowMs + int64(*livePeriodSeconds)*1000
		entry := Entry{EmployeeID: employeeID, ProjectName: projectName, LiveUntilMs: &until, LastUpdateMs: nowMs}
		r.entries[key] = entry
		return UpsertResult{IsLive: true, Entry: entry, Exists: true}

	case exists:
		existing.LastUpdateMs = nowMs
		r.entries[key] = existing
		return UpsertResult{IsLive: true, Entry: existing, Exists: true}

	case isEdit:
		entry := Entry{EmployeeID: employeeID, ProjectName: projectName, LiveUntilMs: nil, LastUpdateMs: nowMs}
		r.entries[key] = entry
		return UpsertResult{IsLive: true, Entry: entry, Exists: true}

	default:
		return UpsertResult{IsLive: false}
	}
}

// Delete removes an entry, typically once the sweeper has finalized it.
func (r *Registry) Delete(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// ForEach calls fn for a snapshot of every entry at the time of the call.
// fn is invoked outside the lock, so it may itself call back into the
// registry (e.g. Delete) without deadlocking.
func (r *Registry) ForEach(fn func(key Key, entry Entry)) {
	r.mu.Lock()
	snapshot := make(map[Key]Entry, len(r.entries))
	for k, v := range r.entries {
		snapshot[k] = v
	}
	r.mu.Unlock()

	for k, v := range snapshot {
		fn(k, v)
	}
}

// Len reports the number of active entries; used by tests and metrics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
