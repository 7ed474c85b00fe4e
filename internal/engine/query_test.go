package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"taskboard/internal/domain"
)

func strPtr(s string) *string                  { return &s }
func intPtr(n int) *int                        { return &n }
func boolPtr(b bool) *bool                     { return &b }
func statusPtr(s domain.Status) *domain.Status { return &s }
func timePtr(t time.Time) *time.Time           { return &t }

func mkTask(id string, order int, status domain.Status, prio domain.Priority) *domain.Task {
	t := &domain.Task{
		ID:        id,
		OwnerID:   1,
		Title:     "task " + id,
		Status:    status,
		Priority:  prio,
		Order:     order,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if status == domain.StatusCompleted {
		t.CompletedAt = timePtr(time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC))
	}
	return t
}

func TestListTasksFiltersAreANDed(t *testing.T) {
	work := "work"
	tasks := []*domain.Task{
		mkTask("a", 0, domain.StatusPending, domain.PriorityHigh),
		mkTask("b", 1, domain.StatusPending, domain.PriorityLow),
		mkTask("c", 2, domain.StatusCompleted, domain.PriorityHigh),
	}
	tasks[0].Tags = []string{"work", "urgent"}
	tasks[2].Tags = []string{"work"}

	page, err := ListTasks(tasks, Filter{
		Status: statusPtr(domain.StatusPending),
		Tag:    &work,
	}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Tasks) != 1 || page.Tasks[0].ID != "a" {
		t.Fatalf("expected only task a, got %d tasks", len(page.Tasks))
	}
	for _, got := range page.Tasks {
		if got.Status != domain.StatusPending || !got.HasTag("work") {
			t.Fatalf("task %s does not satisfy all predicates", got.ID)
		}
	}
}

func TestListTasksExcludesArchivedByDefault(t *testing.T) {
	tasks := []*domain.Task{
		mkTask("a", 0, domain.StatusPending, domain.PriorityLow),
		mkTask("b", 1, domain.StatusPending, domain.PriorityLow),
	}
	tasks[1].Archived = true

	page, err := ListTasks(tasks, Filter{}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Pagination.Total != 1 || page.Tasks[0].ID != "a" {
		t.Fatalf("expected archived task excluded, total=%d", page.Pagination.Total)
	}

	// explicit archived=true returns only archived
	page, err = ListTasks(tasks, Filter{Archived: boolPtr(true)}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Pagination.Total != 1 || page.Tasks[0].ID != "b" {
		t.Fatalf("expected only archived task, total=%d", page.Pagination.Total)
	}
}

func TestListTasksSearchIsCaseInsensitive(t *testing.T) {
	tasks := []*domain.Task{
		mkTask("a", 0, domain.StatusPending, domain.PriorityLow),
		mkTask("b", 1, domain.StatusPending, domain.PriorityLow),
	}
	tasks[0].Title = "Buy Milk"
	tasks[1].Description = "remember the MILK run"

	page, err := ListTasks(tasks, Filter{Search: strPtr("milk")}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Pagination.Total != 2 {
		t.Fatalf("expected both tasks to match, got %d", page.Pagination.Total)
	}
}

func TestListTasksPriorityRankSort(t *testing.T) {
	tasks := []*domain.Task{
		mkTask("a", 0, domain.StatusPending, domain.PriorityMedium),
		mkTask("b", 1, domain.StatusPending, domain.PriorityHigh),
		mkTask("c", 2, domain.StatusPending, domain.PriorityLow),
	}

	page, err := ListTasks(tasks, Filter{SortBy: "priority"}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// rank order low<medium<high, not lexicographic (high<low<medium)
	got := []string{page.Tasks[0].ID, page.Tasks[1].ID, page.Tasks[2].ID}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("priority sort = %v; want %v", got, want)
		}
	}
}

func TestListTasksDefaultSortIsByOrder(t *testing.T) {
	tasks := []*domain.Task{
		mkTask("a", 2, domain.StatusPending, domain.PriorityLow),
		mkTask("b", 0, domain.StatusPending, domain.PriorityLow),
		mkTask("c", 1, domain.StatusPending, domain.PriorityLow),
	}

	page, err := ListTasks(tasks, Filter{}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{page.Tasks[0].ID, page.Tasks[1].ID, page.Tasks[2].ID}
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("default sort = %v; want %v", got, want)
		}
	}
}

func TestListTasksTieBreaksByOrderThenID(t *testing.T) {
	// equal sort key everywhere, shuffled input
	tasks := []*domain.Task{
		mkTask("z", 1, domain.StatusPending, domain.PriorityLow),
		mkTask("b", 0, domain.StatusPending, domain.PriorityLow),
		mkTask("a", 1, domain.StatusPending, domain.PriorityLow),
		mkTask("y", 0, domain.StatusPending, domain.PriorityLow),
	}

	page, err := ListTasks(tasks, Filter{SortBy: "priority", SortOrder: "desc"}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// ties ignore the requested direction: order asc, then id asc
	want := []string{"b", "y", "a", "z"}
	for i := range want {
		if page.Tasks[i].ID != want[i] {
			got := make([]string, len(page.Tasks))
			for j, tk := range page.Tasks {
				got[j] = tk.ID
			}
			t.Fatalf("tie-break sequence = %v; want %v", got, want)
		}
	}
}

func TestListTasksSortIsStable(t *testing.T) {
	var tasks []*domain.Task
	for i := 0; i < 10; i++ {
		tasks = append(tasks, mkTask(fmt.Sprintf("t%02d", i), 9-i, domain.StatusPending, domain.PriorityLow))
	}

	first, err := ListTasks(tasks, Filter{SortBy: "priority"}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ListTasks(first.Tasks, Filter{SortBy: "priority"}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first.Tasks {
		if first.Tasks[i].ID != second.Tasks[i].ID {
			t.Fatalf("sorting twice changed the sequence at %d", i)
		}
	}
}

// 25 tasks, 12 completed, page 1 limit 10 sorted by due date desc.
func TestListTasksCompletedPageScenario(t *testing.T) {
	var tasks []*domain.Task
	for i := 0; i < 25; i++ {
		status := domain.StatusPending
		if i < 12 {
			status = domain.StatusCompleted
		}
		tk := mkTask(fmt.Sprintf("t%02d", i), i, status, domain.PriorityMedium)
		tk.DueDate = timePtr(time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC))
		tasks = append(tasks, tk)
	}

	page, err := ListTasks(tasks, Filter{
		Status:    statusPtr(domain.StatusCompleted),
		SortBy:    "due_date",
		SortOrder: "desc",
		Page:      intPtr(1),
		Limit:     intPtr(10),
	}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Tasks) != 10 {
		t.Fatalf("expected 10 tasks on page, got %d", len(page.Tasks))
	}
	if page.Pagination.Total != 12 || page.Pagination.Pages != 2 {
		t.Fatalf("pagination = %+v; want total=12 pages=2", page.Pagination)
	}
	for i := 1; i < len(page.Tasks); i++ {
		if page.Tasks[i].DueDate.After(*page.Tasks[i-1].DueDate) {
			t.Fatalf("due dates not descending at %d", i)
		}
	}
}

func TestListTasksPageBeyondRangeIsEmpty(t *testing.T) {
	tasks := []*domain.Task{mkTask("a", 0, domain.StatusPending, domain.PriorityLow)}

	page, err := ListTasks(tasks, Filter{Page: intPtr(5), Limit: intPtr(10)}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Tasks) != 0 {
		t.Fatalf("expected empty page, got %d tasks", len(page.Tasks))
	}
	if page.Pagination.Total != 1 {
		t.Fatalf("total should still count matches, got %d", page.Pagination.Total)
	}
}

func TestListTasksLimitClampsToCap(t *testing.T) {
	var tasks []*domain.Task
	for i := 0; i < 30; i++ {
		tasks = append(tasks, mkTask(fmt.Sprintf("t%02d", i), i, domain.StatusPending, domain.PriorityLow))
	}

	page, err := ListTasks(tasks, Filter{Limit: intPtr(1000)}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Pagination.Limit != 20 || len(page.Tasks) != 20 {
		t.Fatalf("limit not clamped: limit=%d len=%d", page.Pagination.Limit, len(page.Tasks))
	}
}

func TestListTasksInvalidFilter(t *testing.T) {
	tasks := []*domain.Task{mkTask("a", 0, domain.StatusPending, domain.PriorityLow)}

	cases := []struct {
		name string
		f    Filter
	}{
		{"unknown sort field", Filter{SortBy: "color"}},
		{"zero page", Filter{Page: intPtr(0)}},
		{"negative page", Filter{Page: intPtr(-1)}},
		{"zero limit", Filter{Limit: intPtr(0)}},
		{"negative limit", Filter{Limit: intPtr(-3)}},
	}

	for _, tc := range cases {
		if _, err := ListTasks(tasks, tc.f, 50); !errors.Is(err, ErrInvalidFilter) {
			t.Fatalf("%s: got %v; want ErrInvalidFilter", tc.name, err)
		}
	}
}
