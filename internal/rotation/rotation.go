package rotation

import "github.com/dukerupert/bagshot/internal/model"

// CurrentAssignee resolves the member currently holding the template's duty.
// The stored index is always read modulo the rotation length, so a rotation
// shortened by an update never indexes out of range.
func CurrentAssignee(t *model.TaskTemplate) int64 {
	return t.RotationOrder[t.CurrentAssigneeIndex%len(t.RotationOrder)]
}

// Advance moves the rotation pointer to the next participant and returns the
// new index. Callers persist the index; Advance itself only mutates the
// in-memory template. It runs exactly once per complete or skip transition
// and never for swap.
func Advance(t *model.TaskTemplate) int {
	t.CurrentAssigneeIndex = (t.CurrentAssigneeIndex + 1) % len(t.RotationOrder)
	return t.CurrentAssigneeIndex
}
