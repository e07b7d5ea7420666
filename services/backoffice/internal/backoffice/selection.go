package backoffice

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrSelectionNotFound = errors.New("no child selected")

// ChildSelection is the student a parent last chose to follow.
type ChildSelection struct {
	UserID      string    `json:"userId" bson:"user_id"`
	StudentID   int       `json:"studentId" bson:"student_id"`
	StudentName string    `json:"studentName,omitempty" bson:"student_name,omitempty"`
	SelectedAt  time.Time `json:"selectedAt" bson:"selected_at"`
}

// SelectionRepo persists the selected child per parent account.
type SelectionRepo interface {
	Load(ctx context.Context, userID string) (*ChildSelection, error)
	Save(ctx context.Context, selection *ChildSelection) error
	Clear(ctx context.Context, userID string) error
}

// MemorySelectionRepo keeps selections for the life of the process.
type MemorySelectionRepo struct {
	mu         sync.RWMutex
	selections map[string]ChildSelection
}

func NewMemorySelectionRepo() *MemorySelectionRepo {
	return &MemorySelectionRepo{selections: make(map[string]ChildSelection)}
}

func (r *MemorySelectionRepo) Load(ctx context.Context, userID string) (*ChildSelection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sel, ok := r.selections[userID]
	if !ok {
		return nil, ErrSelectionNotFound
	}
	return &sel, nil
}

func (r *MemorySelectionRepo) Save(ctx context.Context, selection *ChildSelection) error {
	if selection == nil || selection.UserID == "" {
		return errors.New("selection must name a user")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.selections[selection.UserID] = *selection
	return nil
}

func (r *MemorySelectionRepo) Clear(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.selections, userID)
	return nil
}
