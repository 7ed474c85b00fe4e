package engine

import (
	"fmt"
	"strings"
	"time"

	"taskboard/internal/domain"
)

// ExportUser identifies the account a backup was exported from.
type ExportUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// BackupPayload is the user-portable export format. Tasks keep their
// original ids in the payload; those ids are never reused on import.
type BackupPayload struct {
	Version    string         `json:"version"`
	ExportDate time.Time      `json:"export_date"`
	User       ExportUser     `json:"user"`
	Tasks      []*domain.Task `json:"tasks"`
}

// MergeResult reports what an import did. Writes is the full insert set;
// nothing has been applied yet when it is returned.
type MergeResult struct {
	Imported int     `json:"imported"`
	Skipped  int     `json:"skipped"`
	Writes   []Write `json:"-"`
}

// fingerprint keys duplicate detection: trimmed lowercase title plus the
// due date instant, with dueSet distinguishing "no due date". Owner is
// implicit, the destination collection belongs to one owner.
type fingerprint struct {
	title   string
	dueSet  bool
	dueNano int64
}

func fingerprintOf(title string, due *time.Time) fingerprint {
	fp := fingerprint{title: strings.ToLower(strings.TrimSpace(title))}
	if due != nil {
		fp.dueSet = true
		fp.dueNano = due.UTC().UnixNano()
	}
	return fp
}

// Merge validates a backup payload against the destination snapshot and
// computes the inserts for every task that is not already present.
// Version validation is all-or-nothing and happens before anything else;
// individual malformed tasks are skipped and counted, never fatal.
// Re-importing an unchanged export is a no-op: every task fingerprint
// already exists, so imported=0 and skipped=N.
func Merge(existing []*domain.Task, payload *BackupPayload, ownerID int64, now time.Time, nextID func() string, supported map[string]bool) (*MergeResult, error) {
	if payload == nil || payload.Tasks == nil {
		return nil, fmt.Errorf("%w: missing task array", ErrMalformedBackup)
	}
	if !supported[payload.Version] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackupVersion, payload.Version)
	}

	seen := make(map[fingerprint]struct{}, len(existing))
	maxOrder := -1
	for _, t := range existing {
		seen[fingerprintOf(t.Title, t.DueDate)] = struct{}{}
		if !t.Archived && t.Order > maxOrder {
			maxOrder = t.Order
		}
	}

	res := &MergeResult{}
	for _, src := range payload.Tasks {
		if src == nil {
			res.Skipped++
			continue
		}

		// archived and completed_at carry over verbatim; id, order and
		// timestamps are regenerated below.
		task := &domain.Task{
			OwnerID:     ownerID,
			Title:       src.Title,
			Description: src.Description,
			Status:      src.Status,
			Priority:    src.Priority,
			DueDate:     src.DueDate,
			Tags:        src.Tags,
			Subtasks:    src.Subtasks,
			Archived:    src.Archived,
			CompletedAt: src.CompletedAt,
		}
		if err := domain.ValidateTask(task); err != nil {
			res.Skipped++
			continue
		}

		fp := fingerprintOf(task.Title, task.DueDate)
		if _, dup := seen[fp]; dup {
			res.Skipped++
			continue
		}
		seen[fp] = struct{}{}

		maxOrder++
		task.ID = nextID()
		task.Order = maxOrder
		task.CreatedAt = now
		task.UpdatedAt = now

		res.Imported++
		res.Writes = append(res.Writes, insertWrite(task))
	}
	return res, nil
}

// insertWrite flattens a new task into the field-level write shape the
// storage interface applies.
func insertWrite(t *domain.Task) Write {
	return Write{
		ID: t.ID,
		Fields: map[string]any{
			"owner_id":     t.OwnerID,
			"title":        t.Title,
			"description":  t.Description,
			"status":       t.Status,
			"priority":     t.Priority,
			"due_date":     t.DueDate,
			"tags":         t.Tags,
			"subtasks":     t.Subtasks,
			"sort_order":   t.Order,
			"archived":     t.Archived,
			"completed_at": t.CompletedAt,
			"created_at":   t.CreatedAt,
			"updated_at":   t.UpdatedAt,
		},
	}
}
