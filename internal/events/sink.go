package events

import (
	"fmt"
	"sync"
	"time"
)

// Sink is a concurrency-safe, ordered buffer of progress events.
//
// Any number of concurrently running stages may Emit into it; a single
// consumer drains it with DrainNowait. Emit never blocks the producer: the
// queue grows as needed and is bounded in practice by one pipeline run's
// event volume. Events from a single producer are drained in emission order;
// ordering across racing producers is arrival order at the sink.
type Sink struct {
	mu      sync.Mutex
	queue   []Event
	emitted int
}

// NewSink creates an empty event sink.
func NewSink() *Sink {
	return &Sink{}
}

// Emit appends an event from the named node. Safe for concurrent use.
func (s *Sink) Emit(node, message string) {
	ev := Event{Node: node, Message: message, Timestamp: time.Now()}
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.emitted++
	s.mu.Unlock()
}

// Emitf appends a formatted event from the named node.
func (s *Sink) Emitf(node, format string, args ...interface{}) {
	s.Emit(node, fmt.Sprintf(format, args...))
}

// DrainNowait pops the oldest event without blocking.
// The second return value is false when the sink is empty.
func (s *Sink) DrainNowait() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return Event{}, false
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, true
}

// Len returns the number of undrained events.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Emitted returns the total number of events emitted since creation,
// drained or not.
func (s *Sink) Emitted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emitted
}
