package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StatusUpdate records a single status transition observed by the mock store.
type StatusUpdate struct {
	TaskID   uuid.UUID
	Status   TaskStatus
	ErrorMsg string
}

// MockTaskStore implements TaskStore in memory. SaveFn and UpdateStatusFn
// override the built-in behavior when set; otherwise tasks land in the map
// and every transition is recorded for StatusUpdates.
type MockTaskStore struct {
	mutex           sync.RWMutex
	tasks           map[uuid.UUID]Task
	taskStatusTimes map[uuid.UUID]time.Time
	updates         []StatusUpdate
	SaveFn          func(ctx context.Context, task Task) error
	UpdateStatusFn  func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		tasks:           make(map[uuid.UUID]Task),
		taskStatusTimes: make(map[uuid.UUID]time.Time),
	}
}

// SaveTask stores the task keyed by ID. Non-mock tasks are converted so the
// store can mutate their status later.
func (s *MockTaskStore) SaveTask(ctx context.Context, task Task) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, task)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	mt, ok := task.(*MockTask)
	if !ok {
		mt = NewMockTask(task.ID(), task.Type(), task.Payload())
		mt.TaskStatus = task.Status()
	}
	s.tasks[task.ID()] = mt
	s.taskStatusTimes[task.ID()] = time.Now()
	return nil
}

// UpdateTaskStatus records the transition and applies it to the stored task.
// An unknown ID is a no-op so tests do not have to pre-seed every task.
func (s *MockTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.updates = append(s.updates, StatusUpdate{TaskID: taskID, Status: status, ErrorMsg: errorMsg})

	task, exists := s.tasks[taskID]
	if !exists {
		return nil
	}
	mt := task.(*MockTask)
	mt.TaskStatus = status
	s.tasks[taskID] = mt
	s.taskStatusTimes[taskID] = time.Now()
	return nil
}

func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var pending []Task
	for _, task := range s.tasks {
		if task.Status() == TaskStatusPending {
			pending = append(pending, task)
		}
	}
	return pending, nil
}

// GetProcessingTasks returns tasks stuck in processing. A zero olderThan
// matches every processing task regardless of age.
func (s *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := time.Now()
	var processing []Task
	for _, task := range s.tasks {
		if task.Status() != TaskStatusProcessing {
			continue
		}
		statusTime, exists := s.taskStatusTimes[task.ID()]
		if olderThan == 0 || (exists && now.Sub(statusTime) > olderThan) {
			processing = append(processing, task)
		}
	}
	return processing, nil
}

// TaskStatusFor returns the current status of the stored task, if any.
func (s *MockTaskStore) TaskStatusFor(taskID uuid.UUID) (TaskStatus, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return "", false
	}
	return task.Status(), true
}

// StatusUpdates returns a copy of all status transitions recorded so far.
func (s *MockTaskStore) StatusUpdates() []StatusUpdate {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	updates := make([]StatusUpdate, len(s.updates))
	copy(updates, s.updates)
	return updates
}

// WithTx returns the store itself. The mock has no transaction boundary.
func (s *MockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

var _ TaskStore = (*MockTaskStore)(nil)
