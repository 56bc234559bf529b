package focus

import "sync"

// Log is the append-only sequence of window verdicts for one session.
// It is safe for concurrent readers.
type Log struct {
	mu      sync.RWMutex
	entries []WindowVerdict
}

// NewLog creates an empty focus log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a verdict, assigns its 1-based index and returns the stored copy.
func (l *Log) Append(v WindowVerdict) WindowVerdict {
	l.mu.Lock()
	defer l.mu.Unlock()

	v.Index = len(l.entries) + 1
	v.Details = append([]FrameSample(nil), v.Details...)
	l.entries = append(l.entries, v)
	return v
}

// Len returns the number of verdicts appended so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Last returns the most recent verdict.
func (l *Log) Last() (WindowVerdict, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return WindowVerdict{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Tail returns up to n most recent verdicts, oldest first.
func (l *Log) Tail(n int) []WindowVerdict {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]WindowVerdict, n)
	copy(out, l.entries[len(l.entries)-n:])
	for i := range out {
		out[i].Details = append([]FrameSample(nil), out[i].Details...)
	}
	return out
}

// Entries returns a copy of all verdicts.
func (l *Log) Entries() []WindowVerdict {
	return l.Tail(l.Len())
}
