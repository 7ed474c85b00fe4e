package engine

import (
	"errors"
	"testing"

	"taskboard/internal/domain"
)

func group(orders ...int) []*domain.Task {
	var tasks []*domain.Task
	for i, o := range orders {
		tasks = append(tasks, mkTask(string(rune('a'+i)), o, domain.StatusPending, domain.PriorityLow))
	}
	return tasks
}

func applyOrders(tasks []*domain.Task, writes []Write) map[string]int {
	orders := make(map[string]int, len(tasks))
	for _, t := range tasks {
		orders[t.ID] = t.Order
	}
	for _, w := range writes {
		orders[w.ID] = w.Fields["sort_order"].(int)
	}
	return orders
}

// Move last task (index 2) to the front: it gets order 0, the others
// shift to 1 and 2 keeping their relative sequence.
func TestReorderMoveLastToFront(t *testing.T) {
	tasks := group(0, 1, 2)

	writes, err := Reorder(tasks, "c", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orders := applyOrders(tasks, writes)
	if orders["c"] != 0 || orders["a"] != 1 || orders["b"] != 2 {
		t.Fatalf("orders after move = %v; want c=0 a=1 b=2", orders)
	}
}

func TestReorderIdempotent(t *testing.T) {
	tasks := group(0, 1, 2)

	writes, err := Reorder(tasks, "c", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orders := applyOrders(tasks, writes)

	// rebuild the group in its new order and repeat the same move
	moved := group(0, 1, 2)
	for _, m := range moved {
		m.Order = orders[m.ID]
	}
	// display order: c, a, b
	regrouped := []*domain.Task{moved[2], moved[0], moved[1]}

	again, err := Reorder(regrouped, "c", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("repeating an applied move must be a no-op, got %d writes", len(again))
	}
}

func TestReorderClampsBeyondEnd(t *testing.T) {
	tasks := group(0, 1, 2)

	writes, err := Reorder(tasks, "a", 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orders := applyOrders(tasks, writes)
	if orders["a"] != 2 || orders["b"] != 0 || orders["c"] != 1 {
		t.Fatalf("orders after clamped move = %v; want a=2 b=0 c=1", orders)
	}
}

func TestReorderNoDuplicateOrders(t *testing.T) {
	// gaps in the incoming orders are fine, the result renumbers 0..n-1
	tasks := group(3, 7, 12, 20)

	writes, err := Reorder(tasks, "b", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orders := applyOrders(tasks, writes)

	seen := make(map[int]string)
	for id, o := range orders {
		if o < 0 || o >= len(tasks) {
			t.Fatalf("order %d for %s out of 0..n-1", o, id)
		}
		if prev, dup := seen[o]; dup {
			t.Fatalf("order %d assigned to both %s and %s", o, prev, id)
		}
		seen[o] = id
	}
}

func TestReorderNegativeIndex(t *testing.T) {
	if _, err := Reorder(group(0, 1), "a", -1); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("got %v; want ErrInvalidMove", err)
	}
}

func TestReorderUnknownTask(t *testing.T) {
	if _, err := Reorder(group(0, 1), "zzz", 0); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("got %v; want ErrInvalidMove", err)
	}
}
