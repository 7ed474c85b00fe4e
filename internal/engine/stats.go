package engine

import (
	"iter"
	"time"

	"taskboard/internal/domain"
)

// GeneralStats - headline counters over one owner's non-archived tasks.
// TasksThisWeek and TasksThisMonth both use rolling windows ending at the
// reference time (7 and 30 days, inclusive start, exclusive end); a
// calendar-month boundary was considered for the monthly number and
// rejected to keep the two windows consistent.
type GeneralStats struct {
	TotalTasks      int     `json:"total_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	PendingTasks    int     `json:"pending_tasks"`
	InProgressTasks int     `json:"in_progress_tasks"`
	OverdueTasks    int     `json:"overdue_tasks"`
	TasksThisWeek   int     `json:"tasks_this_week"`
	TasksThisMonth  int     `json:"tasks_this_month"`
	CompletionRate  float64 `json:"completion_rate"`
}

// PriorityBucket - counters restricted to one priority value.
type PriorityBucket struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
}

// PriorityStats maps each priority to its bucket. Every priority value is
// present even when its bucket is empty.
type PriorityStats map[domain.Priority]PriorityBucket

// ProductivityPoint - completions on one calendar day.
type ProductivityPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// General derives all headline numbers from the snapshot in one pass so
// that counts can never disagree with each other (completionRate is
// always computed from the same totals it is reported with).
func General(tasks []*domain.Task, now time.Time) GeneralStats {
	weekStart := now.AddDate(0, 0, -7)
	monthStart := now.AddDate(0, 0, -30)

	var s GeneralStats
	for _, t := range tasks {
		s.TotalTasks++
		switch t.Status {
		case domain.StatusCompleted:
			s.CompletedTasks++
		case domain.StatusPending:
			s.PendingTasks++
		case domain.StatusInProgress:
			s.InProgressTasks++
		}
		if t.Status != domain.StatusCompleted && t.DueDate != nil && t.DueDate.Before(now) {
			s.OverdueTasks++
		}
		if !t.CreatedAt.Before(weekStart) && t.CreatedAt.Before(now) {
			s.TasksThisWeek++
		}
		if !t.CreatedAt.Before(monthStart) && t.CreatedAt.Before(now) {
			s.TasksThisMonth++
		}
	}
	if s.TotalTasks > 0 {
		s.CompletionRate = float64(s.CompletedTasks) / float64(s.TotalTasks)
	}
	return s
}

// ByPriority buckets the snapshot by priority.
func ByPriority(tasks []*domain.Task) PriorityStats {
	stats := PriorityStats{
		domain.PriorityLow:    {},
		domain.PriorityMedium: {},
		domain.PriorityHigh:   {},
	}
	for _, t := range tasks {
		b := stats[t.Priority]
		b.Total++
		switch t.Status {
		case domain.StatusCompleted:
			b.Completed++
		case domain.StatusPending:
			b.Pending++
		case domain.StatusInProgress:
			b.InProgress++
		}
		stats[t.Priority] = b
	}
	return stats
}

// Productivity returns one point per calendar day from `from` through `to`
// inclusive, counting tasks completed on that day. Days with no
// completions are emitted with count 0 so the series charts without gaps.
// The returned sequence is finite and restartable: ranging over it again
// replays the same points.
func Productivity(tasks []*domain.Task, from, to time.Time) iter.Seq[ProductivityPoint] {
	perDay := make(map[string]int)
	for _, t := range tasks {
		if t.CompletedAt == nil {
			continue
		}
		perDay[t.CompletedAt.In(from.Location()).Format(time.DateOnly)]++
	}

	startDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	endDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())

	return func(yield func(ProductivityPoint) bool) {
		for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
			key := d.Format(time.DateOnly)
			if !yield(ProductivityPoint{Date: key, Count: perDay[key]}) {
				return
			}
		}
	}
}
