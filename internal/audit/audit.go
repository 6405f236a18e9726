// Package audit records sandbox lifecycle events.
// Events are stored as JSON Lines (JSONL) files, one per sandbox name, so a
// user can reconstruct when a sandbox was created, stopped, found stale or
// refused a device.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/firefly-engineering/espbox/internal/logging"
)

// EventType classifies a lifecycle event.
type EventType string

const (
	EventCreate         EventType = "create"
	EventInstall        EventType = "install"
	EventStart          EventType = "start"
	EventStop           EventType = "stop"
	EventRemove         EventType = "remove"
	EventRollback       EventType = "rollback"
	EventClean          EventType = "clean"
	EventStale          EventType = "stale"
	EventDeviceMismatch EventType = "device-mismatch"
	EventError          EventType = "error"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Sandbox   string    `json:"sandbox"`
	Details   string    `json:"details,omitempty"`
}

// Recorder is what lifecycle code needs to record events.
type Recorder interface {
	Record(eventType EventType, sandbox, details string)
}

// Logger writes and reads audit events for sandboxes.
// Events are stored in {stateDir}/{name}.events.jsonl.
type Logger struct {
	stateDir string
}

// NewLogger creates a new audit logger rooted at stateDir.
func NewLogger(stateDir string) *Logger {
	return &Logger{stateDir: stateDir}
}

// Path returns the path to the JSONL event log for a sandbox.
func (l *Logger) Path(sandbox string) string {
	return filepath.Join(l.stateDir, sandbox+".events.jsonl")
}

// Log appends an event to the sandbox's audit log.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	path := l.Path(event.Sandbox)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogEvent is a convenience method that creates and logs an event.
func (l *Logger) LogEvent(eventType EventType, sandbox, details string) error {
	return l.Log(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Sandbox:   sandbox,
		Details:   details,
	})
}

// Record logs an event, reporting failures at debug level only. A broken
// event log never fails a lifecycle operation.
func (l *Logger) Record(eventType EventType, sandbox, details string) {
	if err := l.LogEvent(eventType, sandbox, details); err != nil {
		logging.Debug("failed to record event", "type", eventType, "sandbox", sandbox, "error", err)
	}
}

// Events reads all events for a sandbox in chronological order.
func (l *Logger) Events(sandbox string) ([]Event, error) {
	path := l.Path(sandbox)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}

// Tail returns the last n events for a sandbox. n <= 0 returns all of them.
func (l *Logger) Tail(sandbox string, n int) ([]Event, error) {
	events, err := l.Events(sandbox)
	if err != nil || n <= 0 || len(events) <= n {
		return events, err
	}
	return events[len(events)-n:], nil
}

// Remove deletes the audit log for a sandbox.
func (l *Logger) Remove(sandbox string) error {
	path := l.Path(sandbox)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Discard is a Recorder that drops every event.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(EventType, string, string) {}

// Ensure Logger implements Recorder
var _ Recorder = (*Logger)(nil)
