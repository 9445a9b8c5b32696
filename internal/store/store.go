// Package store owns the task list, its edit mode, and its persistence.
package store

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/todo"
)

// DefaultKey is the storage slot used when no key is configured.
const DefaultKey = "todos"

// CorruptSuffix is appended to the key when an unreadable value is set aside.
const CorruptSuffix = ".corrupt"

// Op names a store change.
type Op string

const (
	OpHydrated       Op = "hydrated"
	OpAdded          Op = "added"
	OpToggled        Op = "toggled"
	OpRemoved        Op = "removed"
	OpEditStarted    Op = "edit_started"
	OpEditBuffered   Op = "edit_buffered"
	OpEditCommitted  Op = "edit_committed"
	OpEditCancelled  Op = "edit_cancelled"
	OpClearCompleted Op = "cleared_completed"
)

// Persists reports whether the op rewrites the stored list.
func (o Op) Persists() bool {
	switch o {
	case OpAdded, OpToggled, OpRemoved, OpEditCommitted, OpClearCompleted:
		return true
	}
	return false
}

// Change describes the operation that produced a snapshot.
type Change struct {
	Op     Op
	TaskID string
	Count  int // tasks removed by ClearCompleted
}

// EditState is the transient edit mode. The zero value is Idle.
type EditState struct {
	TaskID string
	Buffer string
}

// Active reports whether a task is being edited.
func (e EditState) Active() bool {
	return e.TaskID != ""
}

// Snapshot is an immutable copy of the store state handed to observers.
type Snapshot struct {
	Tasks  []todo.Task
	Counts todo.Counts
	Edit   EditState
	Change Change
}

// Filter returns the snapshot tasks matching f.
func (s Snapshot) Filter(f todo.Filter) []todo.Task {
	return todo.Apply(s.Tasks, f)
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage slot.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDFunc replaces the id generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store holds the task list. It is meant to be driven by a single actor
// and does no locking.
type Store struct {
	storage   kv.Storage
	key       string
	logger    *log.Logger
	newID     func() string
	tasks     []todo.Task
	edit      EditState
	observers map[int]func(Snapshot)
	nextObs   int
	saveErr   error
}

// New creates a store and hydrates it from storage. A missing or
// unreadable value yields an empty list.
func New(storage kv.Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		key:       DefaultKey,
		logger:    log.New(io.Discard),
		newID:     NewID,
		tasks:     []todo.Task{},
		observers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrate()
	return s
}

// NewID returns a time-ordered UUIDv7, falling back to a random v4.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

func (s *Store) hydrate() {
	if s.storage == nil {
		return
	}
	data, err := s.storage.Get(s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn("Failed to read saved tasks, starting empty", "key", s.key, "err", err)
		}
		return
	}

	tasks, err := todo.Decode(data)
	if err != nil {
		s.logger.Warn("Failed to parse saved tasks, starting empty", "key", s.key, "err", err)
		if err := s.storage.Set(s.key+CorruptSuffix, data); err != nil {
			s.logger.Debug("Could not set aside corrupt value", "key", s.key+CorruptSuffix, "err", err)
		}
		return
	}

	s.tasks = tasks
	if n := s.reassignDuplicateIDs(); n > 0 {
		s.logger.Warn("Saved tasks had duplicate ids, assigned new ones", "key", s.key, "count", n)
		s.save()
	}
	s.logger.Debug("Loaded tasks", "key", s.key, "count", len(s.tasks))
}

// reassignDuplicateIDs gives every repeated id after the first a fresh one.
func (s *Store) reassignDuplicateIDs() int {
	dups := todo.DuplicateIDs(s.tasks)
	for _, i := range dups {
		s.tasks[i].ID = s.uniqueID()
	}
	return len(dups)
}

// Key returns the storage slot name.
func (s *Store) Key() string {
	return s.key
}

// Tasks returns a copy of the full list in insertion order.
func (s *Store) Tasks() []todo.Task {
	return todo.Clone(s.tasks)
}

// Get returns the task with id.
func (s *Store) Get(id string) (todo.Task, bool) {
	i := todo.Index(s.tasks, id)
	if i < 0 {
		return todo.Task{}, false
	}
	return s.tasks[i], true
}

// Filter returns the tasks matching mode without changing the store.
func (s *Store) Filter(mode todo.Filter) []todo.Task {
	return todo.Apply(s.tasks, mode)
}

// Counts tallies the list under every filter.
func (s *Store) Counts() todo.Counts {
	return todo.Count(s.tasks)
}

// Edit returns the current edit state.
func (s *Store) Edit() EditState {
	return s.edit
}

// SaveErr returns the error from the most recent write, if it failed.
func (s *Store) SaveErr() error {
	return s.saveErr
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	return s.snapshot(Change{})
}

func (s *Store) snapshot(c Change) Snapshot {
	return Snapshot{
		Tasks:  todo.Clone(s.tasks),
		Counts: todo.Count(s.tasks),
		Edit:   s.edit,
		Change: c,
	}
}

// Subscribe registers fn to receive a snapshot after every change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		delete(s.observers, id)
	}
}

func (s *Store) notify(c Change) {
	if len(s.observers) == 0 {
		return
	}
	snap := s.snapshot(c)
	for i := 0; i < s.nextObs; i++ {
		if fn, ok := s.observers[i]; ok {
			fn(snap)
		}
	}
}

// commit replaces the list, writes it back, and notifies observers.
func (s *Store) commit(tasks []todo.Task, c Change) {
	s.tasks = tasks
	s.save()
	s.logger.Debug("Task list changed", "op", c.Op, "task_id", c.TaskID, "count", len(s.tasks))
	s.notify(c)
}

func (s *Store) save() {
	if s.storage == nil {
		return
	}
	data, err := todo.Encode(s.tasks)
	if err == nil {
		err = s.storage.Set(s.key, data)
	}
	s.saveErr = err
	if err != nil {
		s.logger.Error("Failed to save tasks", "key", s.key, "err", err)
	}
}

// Add appends a task with the trimmed text. Blank text is ignored.
func (s *Store) Add(text string) (todo.Task, bool) {
	tasks, task, ok := todo.Append(s.tasks, s.uniqueID(), text)
	if !ok {
		return todo.Task{}, false
	}
	s.commit(tasks, Change{Op: OpAdded, TaskID: task.ID})
	return task, true
}

// maxIDAttempts bounds how often the configured generator is retried
// before falling back to NewID.
const maxIDAttempts = 8

func (s *Store) uniqueID() string {
	for i := 0; i < maxIDAttempts; i++ {
		if id := s.newID(); s.freeID(id) {
			return id
		}
	}
	s.logger.Debug("ID generator kept colliding, using a random id", "attempts", maxIDAttempts)
	for {
		if id := NewID(); s.freeID(id) {
			return id
		}
	}
}

func (s *Store) freeID(id string) bool {
	return id != "" && todo.Index(s.tasks, id) < 0
}

// Toggle flips the completed flag of id.
func (s *Store) Toggle(id string) bool {
	tasks, ok := todo.Toggle(s.tasks, id)
	if !ok {
		return false
	}
	s.commit(tasks, Change{Op: OpToggled, TaskID: id})
	return true
}

// Remove deletes the task with id. Removing the task under edit ends
// edit mode.
func (s *Store) Remove(id string) bool {
	tasks, ok := todo.Remove(s.tasks, id)
	if !ok {
		return false
	}
	if s.edit.TaskID == id {
		s.edit = EditState{}
	}
	s.commit(tasks, Change{Op: OpRemoved, TaskID: id})
	return true
}

// ClearCompleted removes every completed task and returns how many went.
func (s *Store) ClearCompleted() int {
	tasks, removed := todo.ClearCompleted(s.tasks)
	if removed == 0 {
		return 0
	}
	if s.edit.Active() && todo.Index(tasks, s.edit.TaskID) < 0 {
		s.edit = EditState{}
	}
	s.commit(tasks, Change{Op: OpClearCompleted, Count: removed})
	return removed
}

// BeginEdit puts id into edit mode with its current text as the buffer.
// An edit already in progress is dropped without being committed.
func (s *Store) BeginEdit(id string) bool {
	task, ok := s.Get(id)
	if !ok {
		return false
	}
	s.edit = EditState{TaskID: id, Buffer: task.Text}
	s.notify(Change{Op: OpEditStarted, TaskID: id})
	return true
}

// SetEditBuffer replaces the edit buffer. It does nothing when idle.
func (s *Store) SetEditBuffer(text string) {
	if !s.edit.Active() || s.edit.Buffer == text {
		return
	}
	s.edit.Buffer = text
	s.notify(Change{Op: OpEditBuffered, TaskID: s.edit.TaskID})
}

// CommitEdit writes the trimmed buffer to the task under edit and leaves
// edit mode. A blank buffer is ignored and edit mode stays on.
func (s *Store) CommitEdit() bool {
	if !s.edit.Active() || todo.NormalizeText(s.edit.Buffer) == "" {
		return false
	}
	edit := s.edit
	s.edit = EditState{}

	tasks, ok := todo.Rename(s.tasks, edit.TaskID, edit.Buffer)
	if !ok {
		s.notify(Change{Op: OpEditCancelled, TaskID: edit.TaskID})
		return false
	}
	s.commit(tasks, Change{Op: OpEditCommitted, TaskID: edit.TaskID})
	return true
}

// CancelEdit leaves edit mode without touching the list.
func (s *Store) CancelEdit() {
	if !s.edit.Active() {
		return
	}
	id := s.edit.TaskID
	s.edit = EditState{}
	s.notify(Change{Op: OpEditCancelled, TaskID: id})
}
