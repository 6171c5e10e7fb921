package simulation

import (
	"sync"

	"github.com/avi3tal/stepflow/pkg/types"
)

// Log is the append-only record of a run. It is safe for concurrent use.
type Log struct {
	mu        sync.RWMutex
	entries   []types.LogEntry
	listeners []func(types.LogEntry)
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Subscribe registers fn to receive every entry appended from now on.
func (l *Log) Subscribe(fn func(types.LogEntry)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Append adds an entry and notifies listeners, in order, after the entry is stored.
func (l *Log) Append(entry types.LogEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	listeners := append([]func(types.LogEntry){}, l.listeners...)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(entry)
	}
}

// Entries returns a copy of the entries in append order.
func (l *Log) Entries() []types.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]types.LogEntry{}, l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// ForNode returns the entries recorded for one node.
func (l *Log) ForNode(nodeID string) []types.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []types.LogEntry
	for _, e := range l.entries {
		if e.NodeID == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Clear empties the log. Listeners stay registered.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
