package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/dukerupert/bagshot/internal/model"
)

func seedTemplate(t *testing.T, db *sql.DB, roomID int64, rotation []int64) int64 {
	t.Helper()
	tmpl, err := NewTemplateStore(db).Create(roomID, "Dishes", "", "", "daily", 0, rotation, day(2025, time.March, 1))
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tmpl.ID
}

func TestAssignmentCreateDefaultsToPending(t *testing.T) {
	db := testDB(t)
	roomID, a, b := seedRoom(t, db)
	tmplID := seedTemplate(t, db, roomID, []int64{a, b})
	assignments := NewAssignmentStore(db)

	got, err := assignments.Create(tmplID, roomID, a, day(2025, time.March, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
	if got.CompletedAt != nil || got.CompletedByUserID != nil {
		t.Error("completion fields should be empty on create")
	}
	if !got.DueDate.Equal(day(2025, time.March, 1)) {
		t.Errorf("due date = %v", got.DueDate)
	}
}

func TestAssignmentDeleteFuture(t *testing.T) {
	db := testDB(t)
	roomID, a, b := seedRoom(t, db)
	tmplID := seedTemplate(t, db, roomID, []int64{a, b})
	assignments := NewAssignmentStore(db)

	for d := 1; d <= 5; d++ {
		if _, err := assignments.Create(tmplID, roomID, a, day(2025, time.March, d)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := assignments.DeleteFuture(tmplID, day(2025, time.March, 3)); err != nil {
		t.Fatalf("delete future: %v", err)
	}

	got, err := assignments.ListByTemplate(tmplID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 surviving assignments, got %d", len(got))
	}
	for _, a := range got {
		if !a.DueDate.Before(day(2025, time.March, 3)) {
			t.Errorf("assignment due %v should have been deleted", a.DueDate)
		}
	}
}

func TestAssignmentListPendingBefore(t *testing.T) {
	db := testDB(t)
	roomID, a, b := seedRoom(t, db)
	tmplID := seedTemplate(t, db, roomID, []int64{a, b})
	assignments := NewAssignmentStore(db)

	stale, _ := assignments.Create(tmplID, roomID, a, day(2025, time.March, 1))
	closed, _ := assignments.Create(tmplID, roomID, a, day(2025, time.March, 2))
	onCutoff, _ := assignments.Create(tmplID, roomID, a, day(2025, time.March, 3))
	_ = onCutoff

	if ok, err := assignments.MarkCompleted(closed.ID, a, "", "", time.Now()); err != nil || !ok {
		t.Fatalf("mark completed: ok=%v err=%v", ok, err)
	}

	got, err := assignments.ListPendingBefore(day(2025, time.March, 3))
	if err != nil {
		t.Fatalf("list pending before: %v", err)
	}
	if len(got) != 1 || got[0].ID != stale.ID {
		t.Errorf("expected only the stale pending assignment, got %v", got)
	}
}

func TestAssignmentListByRoomFilters(t *testing.T) {
	db := testDB(t)
	roomID, a, b := seedRoom(t, db)
	tmplID := seedTemplate(t, db, roomID, []int64{a, b})
	assignments := NewAssignmentStore(db)

	first, _ := assignments.Create(tmplID, roomID, a, day(2025, time.March, 1))
	_, _ = assignments.Create(tmplID, roomID, b, day(2025, time.March, 2))
	_, _ = assignments.Create(tmplID, roomID, a, day(2025, time.March, 10))

	if ok, err := assignments.MarkCompleted(first.ID, a, "done", "", time.Now()); err != nil || !ok {
		t.Fatalf("mark completed: ok=%v err=%v", ok, err)
	}

	all, err := assignments.ListByRoom(roomID, day(2025, time.March, 1), day(2025, time.March, 5), nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("date window: got %d, want 2", len(all))
	}

	byUser, err := assignments.ListByRoom(roomID, day(2025, time.March, 1), day(2025, time.March, 31), &b, nil)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 1 || byUser[0].AssignedToUserID != b {
		t.Errorf("user filter: got %v", byUser)
	}

	completed := model.StatusCompleted
	byStatus, err := assignments.ListByRoom(roomID, day(2025, time.March, 1), day(2025, time.March, 31), nil, &completed)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != first.ID {
		t.Errorf("status filter: got %v", byStatus)
	}
}

func TestAssignmentMarkCompletedGuard(t *testing.T) {
	db := testDB(t)
	roomID, a, b := seedRoom(t, db)
	tmplID := seedTemplate(t, db, roomID, []int64{a, b})
	assignments := NewAssignmentStore(db)

	created, _ := assignments.Create(tmplID, roomID, a, day(2025, time.March, 1))

	at := time.Date(2025, time.March, 1, 18, 30, 0, 0, time.UTC)
	ok, err := assignments.MarkCompleted(created.ID, a, "spotless", "https://cdn/p.jpg", at)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if !ok {
		t.Fatal("first transition should succeed")
	}

	got, _ := assignments.GetByID(created.ID)
	if got.Status != model.StatusCompleted {
		t.Errorf("status = %s", got.Status)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(at) {
		t.Errorf("completed_at = %v, want %v", got.CompletedAt, at)
	}
	if got.CompletedByUserID == nil || *got.CompletedByUserID != a {
		t.Errorf("completed_by = %v", got.CompletedByUserID)
	}
	if got.Note != "spotless" || got.ProofImageURL != "https://cdn/p.jpg" {
		t.Errorf("note/proof = %q/%q", got.Note, got.ProofImageURL)
	}

	// Guard: second write on a non-pending row reports no change.
	ok, err = assignments.MarkCompleted(created.ID, b, "again", "", time.Now())
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if ok {
		t.Error("transition on completed row should report no change")
	}
	reloaded, _ := assignments.GetByID(created.ID)
	if reloaded.Note != "spotless" || *reloaded.CompletedByUserID != a {
		t.Error("guarded write mutated a completed row")
	}
}

func TestAssignmentMarkSkippedAndOverdueGuards(t *testing.T) {
	db := testDB(t)
	roomID, a, b := seedRoom(t, db)
	tmplID := seedTemplate(t, db, roomID, []int64{a, b})
	assignments := NewAssignmentStore(db)

	skip, _ := assignments.Create(tmplID, roomID, a, day(2025, time.March, 1))
	stale, _ := assignments.Create(tmplID, roomID, a, day(2025, time.March, 2))

	ok, err := assignments.MarkSkipped(skip.ID, a, "out of town", time.Now())
	if err != nil || !ok {
		t.Fatalf("mark skipped: ok=%v err=%v", ok, err)
	}
	got, _ := assignments.GetByID(skip.ID)
	if got.Status != model.StatusSkipped || got.Note != "out of town" {
		t.Errorf("skipped row = %+v", got)
	}

	// Overdue only fires on pending rows.
	ok, err = assignments.MarkOverdue(skip.ID)
	if err != nil {
		t.Fatalf("mark overdue on skipped: %v", err)
	}
	if ok {
		t.Error("overdue transition should not touch a skipped row")
	}

	ok, err = assignments.MarkOverdue(stale.ID)
	if err != nil || !ok {
		t.Fatalf("mark overdue: ok=%v err=%v", ok, err)
	}
	got, _ = assignments.GetByID(stale.ID)
	if got.Status != model.StatusOverdue {
		t.Errorf("status = %s, want overdue", got.Status)
	}
	if got.CompletedAt != nil {
		t.Error("overdue must not set completed_at")
	}
}

func TestAssignmentUpdateAssigneeGuard(t *testing.T) {
	db := testDB(t)
	roomID, a, b := seedRoom(t, db)
	tmplID := seedTemplate(t, db, roomID, []int64{a, b})
	assignments := NewAssignmentStore(db)

	created, _ := assignments.Create(tmplID, roomID, a, day(2025, time.March, 1))

	ok, err := assignments.UpdateAssignee(created.ID, b)
	if err != nil || !ok {
		t.Fatalf("update assignee: ok=%v err=%v", ok, err)
	}
	got, _ := assignments.GetByID(created.ID)
	if got.AssignedToUserID != b {
		t.Errorf("assignee = %d, want %d", got.AssignedToUserID, b)
	}
	if got.Status != model.StatusPending {
		t.Errorf("status = %s, reassignment must not change it", got.Status)
	}

	if ok, _ := assignments.MarkCompleted(created.ID, b, "", "", time.Now()); !ok {
		t.Fatal("mark completed")
	}
	ok, err = assignments.UpdateAssignee(created.ID, a)
	if err != nil {
		t.Fatalf("update assignee on completed: %v", err)
	}
	if ok {
		t.Error("reassignment of a completed row should report no change")
	}
}
