package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/engine"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrWriteConflict - another request mutated the owner's tasks between
// snapshot and apply. Callers recompute from a fresh snapshot and retry.
var ErrWriteConflict = errors.New("write conflict")

// writeColumns whitelists the columns a field-level write may touch.
var writeColumns = map[string]struct{}{
	"owner_id":     {},
	"title":        {},
	"description":  {},
	"status":       {},
	"priority":     {},
	"due_date":     {},
	"tags":         {},
	"subtasks":     {},
	"sort_order":   {},
	"archived":     {},
	"completed_at": {},
	"created_at":   {},
	"updated_at":   {},
}

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// NextID returns a fresh opaque task id.
func (r *TaskRepository) NextID() string {
	return uuid.NewString()
}

const taskColumns = `id, owner_id, title, description, status, priority, due_date,
		COALESCE(tags, '[]'), COALESCE(subtasks, '[]'), sort_order, archived,
		completed_at, created_at, updated_at`

// LoadTasks materializes the owner's collection as a snapshot for the
// engines. Archived tasks are included only on request (export, import).
func (r *TaskRepository) LoadTasks(ctx context.Context, ownerID int64, includeArchived bool) ([]*domain.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`
	if !includeArchived {
		q += ` AND archived = false`
	}
	q += ` ORDER BY sort_order, id`

	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// GetByID returns one of the owner's tasks.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID int64, id string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	)
	return scanTask(row)
}

// MaxOrder returns the highest sort_order among the owner's non-archived
// tasks, or -1 when there are none.
func (r *TaskRepository) MaxOrder(ctx context.Context, ownerID int64) (int, error) {
	var max int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) FROM tasks WHERE owner_id = $1 AND archived = false`,
		ownerID,
	).Scan(&max)
	return max, err
}

// ApplyWrites applies an engine write-set in one transaction. The whole
// set is rejected with ErrWriteConflict when any of the owner's tasks
// changed after snapshotAt, so callers can recompute and retry without
// ever observing a partially applied set. Writes whose id is not stored
// yet become inserts.
func (r *TaskRepository) ApplyWrites(ctx context.Context, ownerID int64, writes []engine.Write, snapshotAt time.Time) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// serialize appliers per owner, then check the snapshot is still fresh
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ownerID); err != nil {
		return err
	}
	var stale int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE owner_id = $1 AND updated_at > $2`,
		ownerID, snapshotAt,
	).Scan(&stale)
	if err != nil {
		return err
	}
	if stale > 0 {
		return ErrWriteConflict
	}

	now := time.Now().UTC()
	for _, w := range writes {
		if err := applyWrite(ctx, tx, ownerID, w, now); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func applyWrite(ctx context.Context, tx pgx.Tx, ownerID int64, w engine.Write, now time.Time) error {
	cols := []string{"id", "owner_id", "updated_at"}
	args := []any{w.ID, ownerID, now}
	for col, val := range w.Fields {
		if _, ok := writeColumns[col]; !ok {
			return fmt.Errorf("write touches unknown column %q", col)
		}
		if col == "owner_id" || col == "updated_at" {
			continue
		}
		cols = append(cols, col)
		args = append(args, val)
	}

	placeholders := ""
	sets := ""
	for i, col := range cols {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
		if col == "id" || col == "owner_id" {
			continue
		}
		if sets != "" {
			sets += ", "
		}
		sets += fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}

	q := fmt.Sprintf(
		`INSERT INTO tasks (%s) VALUES (%s)
		 ON CONFLICT (id) DO UPDATE SET %s WHERE tasks.owner_id = EXCLUDED.owner_id`,
		joinCols(cols), placeholders, sets,
	)
	_, err := tx.Exec(ctx, q, args...)
	return err
}

func joinCols(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}

// Create inserts a fully populated task.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, owner_id, title, description, status, priority, due_date,
			tags, subtasks, sort_order, archived, completed_at, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		t.ID, t.OwnerID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
		t.Tags, t.Subtasks, t.Order, t.Archived, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// Delete removes a task permanently. No tombstone is kept.
func (r *TaskRepository) Delete(ctx context.Context, ownerID int64, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.Tags, &t.Subtasks, &t.Order, &t.Archived,
		&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
