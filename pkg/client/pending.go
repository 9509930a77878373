package client

import (
	"strconv"
	"sync"
)

// EntryState tags a list entry during an optimistic update.
type EntryState int

const (
	// Pending entries are shown locally while the server call is in flight.
	Pending EntryState = iota
	// Confirmed entries hold the value returned by the server.
	Confirmed
	// Failed entries were rejected by the server and are hidden from Items.
	Failed
)

func (s EntryState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Entry is one element of a PendingList.
type Entry[T any] struct {
	Key   string
	State EntryState
	Value T
	Err   error
}

// PendingList is a list with optimistic inserts. New entries go first.
// It is safe for concurrent use.
type PendingList[T any] struct {
	mu      sync.Mutex
	entries []Entry[T]
	seq     int
}

// Reset replaces the list with confirmed server values.
func (l *PendingList[T]) Reset(values []T, key func(T) string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make([]Entry[T], 0, len(values))
	for _, v := range values {
		l.entries = append(l.entries, Entry[T]{Key: key(v), State: Confirmed, Value: v})
	}
}

// Add inserts draft as Pending and returns its local key.
func (l *PendingList[T]) Add(draft T) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	key := "local-" + strconv.Itoa(l.seq)
	l.entries = append([]Entry[T]{{Key: key, State: Pending, Value: draft}}, l.entries...)
	return key
}

// Confirm replaces the pending entry key with the server value, now keyed by
// serverKey. It reports whether key was found.
func (l *PendingList[T]) Confirm(key, serverKey string, value T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(key)
	if i < 0 {
		return false
	}
	l.entries[i] = Entry[T]{Key: serverKey, State: Confirmed, Value: value}
	return true
}

// Fail marks the entry key as Failed with err.
func (l *PendingList[T]) Fail(key string, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(key)
	if i < 0 {
		return false
	}
	l.entries[i].State = Failed
	l.entries[i].Err = err
	return true
}

// Remove deletes the entry key and returns it so a failed delete can be
// rolled back with Restore.
func (l *PendingList[T]) Remove(key string) (Entry[T], int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(key)
	if i < 0 {
		return Entry[T]{}, -1, false
	}
	e := l.entries[i]
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return e, i, true
}

// Restore puts a removed entry back at position i.
func (l *PendingList[T]) Restore(e Entry[T], i int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i > len(l.entries) {
		i = len(l.entries)
	}
	l.entries = append(l.entries, Entry[T]{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = e
}

// Items returns the Pending and Confirmed entries. Failed entries never
// appear here.
func (l *PendingList[T]) Items() []Entry[T] {
	return l.filter(func(s EntryState) bool { return s != Failed })
}

// Failed returns the entries the server rejected.
func (l *PendingList[T]) Failed() []Entry[T] {
	return l.filter(func(s EntryState) bool { return s == Failed })
}

// DropFailed discards failed entries and returns them.
func (l *PendingList[T]) DropFailed() []Entry[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	var dropped []Entry[T]
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.State == Failed {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	return dropped
}

func (l *PendingList[T]) filter(keep func(EntryState) bool) []Entry[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry[T], 0, len(l.entries))
	for _, e := range l.entries {
		if keep(e.State) {
			out = append(out, e)
		}
	}
	return out
}

func (l *PendingList[T]) index(key string) int {
	for i, e := range l.entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}
