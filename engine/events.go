package engine

import (
	"sync"
	"time"
)

// EventKind identifies the type of job event.
type EventKind string

const (
	EventJobStart     EventKind = "job_start"
	EventJobEnd       EventKind = "job_end"
	EventDecision     EventKind = "decision"
	EventToolStart    EventKind = "tool_start"
	EventToolEnd      EventKind = "tool_end"
	EventStepLimit    EventKind = "step_limit"
	EventLoopDetected EventKind = "loop_detected"
	EventCheckpoint   EventKind = "checkpoint"
	EventPackaged     EventKind = "packaged"
	EventWarning      EventKind = "warning"
	EventError        EventKind = "error"
)

// JobEvent is a typed event emitted while a job runs.
type JobEvent struct {
	Kind      EventKind              `json:"kind"`
	Timestamp time.Time              `json:"timestamp"`
	JobID     string                 `json:"job_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventEmitter delivers typed events to the host application via a channel.
type EventEmitter struct {
	jobID  string
	ch     chan JobEvent
	closed bool
	mu     sync.Mutex
}

// NewEventEmitter creates a new EventEmitter with a buffered channel.
func NewEventEmitter(jobID string, bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventEmitter{
		jobID: jobID,
		ch:    make(chan JobEvent, bufferSize),
	}
}

// Emit sends an event to the channel. If the emitter is closed, the event
// is silently dropped.
func (e *EventEmitter) Emit(kind EventKind, data map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := JobEvent{
		Kind:      kind,
		Timestamp: time.Now(),
		JobID:     e.jobID,
		Data:      data,
	}
	select {
	case e.ch <- event:
	default:
		// Channel full; drop event to avoid blocking the job loop.
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan JobEvent {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
