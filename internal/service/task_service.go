package service

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/cache"
	"taskboard/internal/domain"
	"taskboard/internal/engine"
	"taskboard/internal/logger"
	"taskboard/internal/repository"

	"github.com/google/uuid"
)

var ErrTaskNotFound = errors.New("task not found")

// CreateTaskInput - fields a caller may set when creating a task.
type CreateTaskInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    *domain.Priority `json:"priority,omitempty"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Subtasks    []string         `json:"subtasks,omitempty"` // titles; ids are assigned here
}

// UpdateTaskInput - partial update; nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Status      *domain.Status   `json:"status,omitempty"`
	Priority    *domain.Priority `json:"priority,omitempty"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	ClearDue    bool             `json:"clear_due_date,omitempty"`
	Tags        *[]string        `json:"tags,omitempty"`
	Archived    *bool            `json:"archived,omitempty"`
}

// TaskService glues the storage collaborator to the pure engines: load a
// snapshot, run the engine, apply the computed write-set. Lost
// optimistic-concurrency races are retried once from a fresh snapshot.
type TaskService struct {
	tasks    *repository.TaskRepository
	users    *repository.UserRepository
	stats    *cache.StatsCache
	pageCap  int
	versions map[string]bool
}

func NewTaskService(tasks *repository.TaskRepository, users *repository.UserRepository, stats *cache.StatsCache, pageCap int, versions map[string]bool) *TaskService {
	return &TaskService{
		tasks:    tasks,
		users:    users,
		stats:    stats,
		pageCap:  pageCap,
		versions: versions,
	}
}

// List returns one page of the owner's tasks per the filter.
func (s *TaskService) List(ctx context.Context, ownerID int64, f engine.Filter) (*engine.Page, error) {
	// archived tasks are only needed when the filter addresses them
	includeArchived := f.Archived != nil
	snapshot, err := s.tasks.LoadTasks(ctx, ownerID, includeArchived)
	if err != nil {
		return nil, err
	}
	return engine.ListTasks(snapshot, f, s.pageCap)
}

// Create appends a new task after the owner's current maximum order.
func (s *TaskService) Create(ctx context.Context, ownerID int64, in CreateTaskInput) (*domain.Task, error) {
	maxOrder, err := s.tasks.MaxOrder(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	priority := domain.PriorityMedium
	if in.Priority != nil {
		priority = *in.Priority
	}

	now := time.Now().UTC()
	t := &domain.Task{
		ID:          s.tasks.NextID(),
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusPending,
		Priority:    priority,
		DueDate:     in.DueDate,
		Tags:        in.Tags,
		Order:       maxOrder + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, title := range in.Subtasks {
		t.Subtasks = append(t.Subtasks, domain.Subtask{ID: uuid.NewString(), Title: title})
	}

	if err := domain.ValidateTask(t); err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx, ownerID)
	return t, nil
}

// Update applies a partial update. A status change to completed stamps
// completed_at; a change away from completed clears it.
func (s *TaskService) Update(ctx context.Context, ownerID int64, id string, in UpdateTaskInput) (*domain.Task, error) {
	snapshotAt := time.Now().UTC()
	t, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, ErrTaskNotFound
	}

	fields := map[string]any{}
	if in.Title != nil {
		t.Title = *in.Title
		fields["title"] = t.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
		fields["description"] = t.Description
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
		fields["priority"] = t.Priority
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
		fields["due_date"] = t.DueDate
	} else if in.ClearDue {
		t.DueDate = nil
		fields["due_date"] = nil
	}
	if in.Tags != nil {
		t.Tags = *in.Tags
		fields["tags"] = t.Tags
	}
	if in.Archived != nil {
		t.Archived = *in.Archived
		fields["archived"] = t.Archived
	}
	if in.Status != nil && *in.Status != t.Status {
		now := time.Now().UTC()
		t.Status = *in.Status
		fields["status"] = t.Status
		if t.Status == domain.StatusCompleted {
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
		fields["completed_at"] = t.CompletedAt
	}

	if err := domain.ValidateTask(t); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return t, nil
	}

	err = s.tasks.ApplyWrites(ctx, ownerID, []engine.Write{{ID: t.ID, Fields: fields}}, snapshotAt)
	if err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx, ownerID)
	return s.tasks.GetByID(ctx, ownerID, id)
}

// Delete removes a task permanently.
func (s *TaskService) Delete(ctx context.Context, ownerID int64, id string) error {
	if err := s.tasks.Delete(ctx, ownerID, id); err != nil {
		return ErrTaskNotFound
	}
	s.stats.Invalidate(ctx, ownerID)
	return nil
}

// Move reorders the owner's non-archived tasks so the given task lands at
// newIndex. The write-set is recomputed from a fresh snapshot once if a
// concurrent edit invalidates the first attempt.
func (s *TaskService) Move(ctx context.Context, ownerID int64, taskID string, newIndex int) error {
	apply := func() error {
		snapshotAt := time.Now().UTC()
		snapshot, err := s.tasks.LoadTasks(ctx, ownerID, false)
		if err != nil {
			return err
		}
		writes, err := engine.Reorder(snapshot, taskID, newIndex)
		if err != nil {
			return err
		}
		return s.tasks.ApplyWrites(ctx, ownerID, writes, snapshotAt)
	}

	err := apply()
	if errors.Is(err, repository.ErrWriteConflict) {
		logger.Debug("move lost a write race, recomputing", "owner_id", ownerID, "task_id", taskID)
		err = apply()
	}
	if err != nil {
		return err
	}
	s.stats.Invalidate(ctx, ownerID)
	return nil
}

// Stats returns the owner's general statistics, served from the redis
// cache when a fresh entry exists.
func (s *TaskService) Stats(ctx context.Context, ownerID int64, now time.Time) (*engine.GeneralStats, error) {
	if cached, ok := s.stats.Get(ctx, ownerID); ok {
		return cached, nil
	}
	snapshot, err := s.tasks.LoadTasks(ctx, ownerID, false)
	if err != nil {
		return nil, err
	}
	gs := engine.General(snapshot, now)
	s.stats.Set(ctx, ownerID, &gs)
	return &gs, nil
}

// PriorityStats buckets the owner's tasks by priority.
func (s *TaskService) PriorityStats(ctx context.Context, ownerID int64) (engine.PriorityStats, error) {
	snapshot, err := s.tasks.LoadTasks(ctx, ownerID, false)
	if err != nil {
		return nil, err
	}
	return engine.ByPriority(snapshot), nil
}

// Productivity materializes the per-day completion series for charting.
func (s *TaskService) Productivity(ctx context.Context, ownerID int64, from, to time.Time) ([]engine.ProductivityPoint, error) {
	snapshot, err := s.tasks.LoadTasks(ctx, ownerID, false)
	if err != nil {
		return nil, err
	}
	var points []engine.ProductivityPoint
	for p := range engine.Productivity(snapshot, from, to) {
		points = append(points, p)
	}
	return points, nil
}

// Export builds the portable backup payload, archived tasks included.
func (s *TaskService) Export(ctx context.Context, ownerID int64) (*engine.BackupPayload, error) {
	user, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.LoadTasks(ctx, ownerID, true)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return &engine.BackupPayload{
		Version:    "1.0",
		ExportDate: time.Now().UTC(),
		User: engine.ExportUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
		},
		Tasks: tasks,
	}, nil
}

// Import merges a backup payload into the owner's collection and applies
// the resulting inserts. Validation errors surface before anything is
// written; a lost write race is retried once from a fresh snapshot.
func (s *TaskService) Import(ctx context.Context, ownerID int64, payload *engine.BackupPayload) (*engine.MergeResult, error) {
	merge := func() (*engine.MergeResult, error) {
		snapshotAt := time.Now().UTC()
		snapshot, err := s.tasks.LoadTasks(ctx, ownerID, true)
		if err != nil {
			return nil, err
		}
		res, err := engine.Merge(snapshot, payload, ownerID, snapshotAt, s.tasks.NextID, s.versions)
		if err != nil {
			return nil, err
		}
		if err := s.tasks.ApplyWrites(ctx, ownerID, res.Writes, snapshotAt); err != nil {
			return nil, err
		}
		return res, nil
	}

	res, err := merge()
	if errors.Is(err, repository.ErrWriteConflict) {
		logger.Debug("import lost a write race, recomputing", "owner_id", ownerID)
		res, err = merge()
	}
	if err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx, ownerID)
	return res, nil
}
