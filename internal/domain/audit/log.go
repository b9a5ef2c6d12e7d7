package audit

import "encoding/json"

// DefaultLogCapacity bounds the in-memory event log to the most recent
// entries; the oldest is evicted when the cap is reached.
const DefaultLogCapacity = 50

// Log is a bounded, most-recent-first ring buffer of governance events. It is
// an explicit caller-owned value: the owning session passes it into each
// state transition rather than sharing a hidden singleton.
type Log struct {
	buf  []Event
	head int // index of the most recent entry
	size int
}

// NewLog creates a log bounded to capacity entries. A non-positive capacity
// falls back to DefaultLogCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Log{buf: make([]Event, capacity)}
}

// Append records an event as the newest entry, evicting the oldest once the
// buffer is full.
func (l *Log) Append(e Event) {
	l.head = (l.head + len(l.buf) - 1) % len(l.buf)
	l.buf[l.head] = e
	if l.size < len(l.buf) {
		l.size++
	}
}

// Len returns the number of retained events.
func (l *Log) Len() int {
	return l.size
}

// Cap returns the log's bound.
func (l *Log) Cap() int {
	return len(l.buf)
}

// Events returns the retained events, newest first.
func (l *Log) Events() []Event {
	out := make([]Event, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	return out
}

// ExportJSON serializes the full retained list, newest first. The export is
// consumer-triggered; persistence of the result is a collaborator concern.
func (l *Log) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(l.Events(), "", "  ")
}

// ParseExport decodes a previously exported event list. Round trip: parsing
// an export yields a list equal field-for-field to the log at export time.
func ParseExport(data []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}
