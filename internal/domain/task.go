package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status - state of a task in its lifecycle
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Priority - importance of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// statusRank and priorityRank give enums a fixed sort order so that
// sorting never falls back to string comparison.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// Rank returns the fixed ordering position of the status.
func (s Status) Rank() int { return statusRank[s] }

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the fixed ordering position of the priority.
func (p Priority) Rank() int { return priorityRank[p] }

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// Subtask - checklist item inside a task
type Subtask struct {
	ID        string `db:"id" json:"id"`
	Title     string `db:"title" json:"title"`
	Completed bool   `db:"completed" json:"completed"`
}

// Task - the task entity. Tags keep insertion order for display but are
// matched as a set. Order defines display position among the owner's
// non-archived tasks; only relative comparison is meaningful.
type Task struct {
	ID          string     `db:"id" json:"id"`
	OwnerID     int64      `db:"owner_id" json:"owner_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Status      Status     `db:"status" json:"status"`
	Priority    Priority   `db:"priority" json:"priority"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	Tags        []string   `db:"tags" json:"tags"`
	Subtasks    []Subtask  `db:"subtasks" json:"subtasks"`
	Order       int        `db:"sort_order" json:"order"`
	Archived    bool       `db:"archived" json:"archived"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// MaxTitleLength limits task titles at the validation boundary.
const MaxTitleLength = 200

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = fmt.Errorf("title exceeds %d characters", MaxTitleLength)
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrCompletedAtMismatch = errors.New("completed_at must be set exactly when status is completed")
	ErrDuplicateSubtaskID  = errors.New("duplicate subtask id")
)

// ValidateTask checks the record-level invariants. The storage boundary
// and the backup import both call this; engines may assume tasks that
// passed it.
func ValidateTask(t *Task) error {
	if t.Title == "" {
		return ErrTitleRequired
	}
	if len(t.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if (t.Status == StatusCompleted) != (t.CompletedAt != nil) {
		return ErrCompletedAtMismatch
	}
	seen := make(map[string]struct{}, len(t.Subtasks))
	for _, st := range t.Subtasks {
		if _, dup := seen[st.ID]; dup {
			return ErrDuplicateSubtaskID
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}

// HasTag reports whether tag is present in the task's tag set.
func (t *Task) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}
