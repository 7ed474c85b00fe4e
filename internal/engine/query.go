package engine

import (
	"fmt"
	"sort"
	"strings"

	"taskboard/internal/domain"
)

// Filter - selection and paging options for listing tasks.
// Nil pointer fields mean the filter is not applied; when Archived is
// nil, archived tasks are excluded.
type Filter struct {
	Status    *domain.Status
	Priority  *domain.Priority
	Tag       *string
	Search    *string
	Archived  *bool
	SortBy    string // one of sortFields, empty = "order"
	SortOrder string // "asc" (default) or "desc"
	Page      *int
	Limit     *int
}

// Pagination describes where the returned page sits in the full match set.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// Page is one page of matching tasks plus pagination metadata.
type Page struct {
	Tasks      []*domain.Task `json:"tasks"`
	Pagination Pagination     `json:"pagination"`
}

var sortFields = map[string]struct{}{
	"title":      {},
	"due_date":   {},
	"priority":   {},
	"status":     {},
	"order":      {},
	"created_at": {},
	"updated_at": {},
}

// ListTasks filters, sorts and paginates the snapshot. All predicates are
// ANDed; sorting is a strict total order (requested key, then order, then
// id). A page beyond the available range yields an empty page, not an
// error. Limit defaults to and is clamped at pageCap.
func ListTasks(tasks []*domain.Task, f Filter, pageCap int) (*Page, error) {
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "order"
	}
	if _, ok := sortFields[sortBy]; !ok {
		return nil, fmt.Errorf("%w: unknown sort field %q", ErrInvalidFilter, f.SortBy)
	}

	page := 1
	if f.Page != nil {
		if *f.Page <= 0 {
			return nil, fmt.Errorf("%w: page must be positive", ErrInvalidFilter)
		}
		page = *f.Page
	}

	limit := pageCap
	if f.Limit != nil {
		if *f.Limit <= 0 {
			return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidFilter)
		}
		limit = *f.Limit
		if limit > pageCap {
			limit = pageCap
		}
	}

	matched := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, f) {
			matched = append(matched, t)
		}
	}

	desc := strings.EqualFold(f.SortOrder, "desc")
	sort.SliceStable(matched, func(i, j int) bool {
		c := compareBy(sortBy, matched[i], matched[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		// ties break by order then id, always ascending, for determinism
		if matched[i].Order != matched[j].Order {
			return matched[i].Order < matched[j].Order
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	pages := (total + limit - 1) / limit

	offset := (page - 1) * limit
	var window []*domain.Task
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		window = matched[offset:end]
	} else {
		window = []*domain.Task{}
	}

	return &Page{
		Tasks: window,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: pages,
		},
	}, nil
}

func matches(t *domain.Task, f Filter) bool {
	if f.Archived == nil {
		if t.Archived {
			return false
		}
	} else if t.Archived != *f.Archived {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Tag != nil && !t.HasTag(*f.Tag) {
		return false
	}
	if f.Search != nil {
		q := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// compareBy compares two tasks on the requested key. Enums compare by
// their fixed rank, never by string value. Tasks without a due date sort
// after tasks that have one.
func compareBy(field string, a, b *domain.Task) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "due_date":
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		case a.DueDate.Before(*b.DueDate):
			return -1
		case a.DueDate.After(*b.DueDate):
			return 1
		}
		return 0
	case "priority":
		return a.Priority.Rank() - b.Priority.Rank()
	case "status":
		return a.Status.Rank() - b.Status.Rank()
	case "order":
		return a.Order - b.Order
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}
