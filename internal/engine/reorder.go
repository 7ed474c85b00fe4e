package engine

import (
	"fmt"

	"taskboard/internal/domain"
)

// Reorder computes the writes realizing a drag-and-drop move within a
// sibling group (the caller passes the group in its current display
// order). The moved task is removed, reinserted at newIndex, and the
// whole sequence is renumbered 0..n-1, so sibling order values can never
// collide. Only tasks whose order actually changes produce a write, which
// makes repeating an already-applied move a no-op.
//
// An index beyond the end clamps to the end; a negative index is an error.
func Reorder(siblings []*domain.Task, taskID string, newIndex int) ([]Write, error) {
	if newIndex < 0 {
		return nil, fmt.Errorf("%w: negative index %d", ErrInvalidMove, newIndex)
	}

	cur := -1
	for i, t := range siblings {
		if t.ID == taskID {
			cur = i
			break
		}
	}
	if cur == -1 {
		return nil, fmt.Errorf("%w: task %s not in group", ErrInvalidMove, taskID)
	}

	moved := siblings[cur]
	rest := make([]*domain.Task, 0, len(siblings)-1)
	rest = append(rest, siblings[:cur]...)
	rest = append(rest, siblings[cur+1:]...)

	if newIndex > len(rest) {
		newIndex = len(rest)
	}

	seq := make([]*domain.Task, 0, len(siblings))
	seq = append(seq, rest[:newIndex]...)
	seq = append(seq, moved)
	seq = append(seq, rest[newIndex:]...)

	var writes []Write
	for i, t := range seq {
		if t.Order != i {
			writes = append(writes, Write{ID: t.ID, Fields: map[string]any{"sort_order": i}})
		}
	}
	return writes, nil
}
