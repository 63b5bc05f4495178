// Package task tracks the lifecycle of asynchronous analysis jobs
// created by the upload API: pending -> processing -> completed|failed.
package task

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tempokey/tempokey/model"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

type Task struct {
	ID        string
	Filename  string
	Status    Status
	Progress  int
	Result    *model.AnalysisResult
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is an in-memory task registry safe for concurrent handlers.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewStore() *Store {
	return &Store{tasks: make(map[string]*Task)}
}

// Create registers a new pending task and returns its copy.
func (s *Store) Create(filename string) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	t := &Task{
		ID:        uuid.New().String(),
		Filename:  filename,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tasks[t.ID] = t
	return *t
}

// Get returns a copy of the task, so callers never share mutable state.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

func (s *Store) SetProcessing(id string) {
	s.update(id, func(t *Task) {
		t.Status = StatusProcessing
		t.Progress = 0
	})
}

func (s *Store) SetProgress(id string, percent int) {
	s.update(id, func(t *Task) {
		t.Progress = percent
	})
}

func (s *Store) Complete(id string, result *model.AnalysisResult) {
	s.update(id, func(t *Task) {
		t.Status = StatusCompleted
		t.Progress = 100
		t.Result = result
	})
}

func (s *Store) Fail(id string, err error) {
	s.update(id, func(t *Task) {
		t.Status = StatusFailed
		t.Error = err.Error()
	})
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return false
	}
	delete(s.tasks, id)
	return true
}

// All returns copies of every task, newest first.
func (s *Store) All() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) update(id string, fn func(*Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok {
		fn(t)
		t.UpdatedAt = time.Now().UTC()
	}
}
