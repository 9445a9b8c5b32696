// Package events turns store changes into CloudEvents and journals them.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/todo"
)

// TypePrefix is prepended to the store op to form the event type.
const TypePrefix = "io.todo.task."

// Data is the payload carried by every change event.
type Data struct {
	TaskID string      `json:"task_id,omitempty"`
	Text   string      `json:"text,omitempty"`
	Done   *bool       `json:"completed,omitempty"`
	Count  int         `json:"count,omitempty"`
	Counts todo.Counts `json:"counts"`
}

// EventType returns the CloudEvents type for a store op.
func EventType(op store.Op) string {
	return TypePrefix + string(op)
}

// Source returns the CloudEvents source for a storage key.
func Source(key string) string {
	return "todo/" + key
}

// NewChangeEvent builds a CloudEvent describing snap.Change.
func NewChangeEvent(source string, snap store.Snapshot) (cloudevents.Event, error) {
	event := cloudevents.NewEvent()
	event.SetID(newEventID())
	event.SetSource(source)
	event.SetType(EventType(snap.Change.Op))
	event.SetTime(time.Now().UTC())
	event.SetSpecVersion(cloudevents.VersionV1)
	if snap.Change.TaskID != "" {
		event.SetSubject(snap.Change.TaskID)
	}

	data := Data{
		TaskID: snap.Change.TaskID,
		Count:  snap.Change.Count,
		Counts: snap.Counts,
	}
	if i := todo.Index(snap.Tasks, snap.Change.TaskID); i >= 0 {
		task := snap.Tasks[i]
		data.Text = task.Text
		data.Done = &task.Completed
	}
	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return event, fmt.Errorf("set event data: %w", err)
	}
	if err := event.Validate(); err != nil {
		return event, fmt.Errorf("CloudEvent validation failed: %w", err)
	}
	return event, nil
}

// newEventID returns a UUIDv7, falling back to v4.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// Journal writes one JSON-encoded CloudEvent per line.
type Journal struct {
	w      io.Writer
	source string
	logger *log.Logger
}

// NewJournal returns a journal writing events from source to w.
func NewJournal(w io.Writer, source string, logger *log.Logger) *Journal {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Journal{w: w, source: source, logger: logger}
}

// Observe records a snapshot change. Edit buffer keystrokes are skipped.
// Failures are logged; the store is never interrupted.
func (j *Journal) Observe(snap store.Snapshot) {
	if snap.Change.Op == store.OpEditBuffered {
		return
	}
	if err := j.Record(snap); err != nil {
		j.logger.Warn("Failed to journal change", "op", snap.Change.Op, "err", err)
	}
}

// Record writes the event for snap.
func (j *Journal) Record(snap store.Snapshot) error {
	event, err := NewChangeEvent(j.source, snap)
	if err != nil {
		return err
	}
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	line = append(line, '\n')
	if _, err := j.w.Write(line); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Attach subscribes the journal to s and returns the unsubscribe function.
func (j *Journal) Attach(s *store.Store) func() {
	return s.Subscribe(j.Observe)
}
