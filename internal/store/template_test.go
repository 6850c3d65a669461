package store

import (
	"testing"
	"time"
)

func TestTemplateCreateRoundTripsRotationOrder(t *testing.T) {
	db := testDB(t)
	roomID, a, b := seedRoom(t, db)
	templates := NewTemplateStore(db)

	tmpl, err := templates.Create(roomID, "Sweep the porch", "Front steps too", "🧹", "weekly", 5, []int64{a, b, a}, day(2025, time.March, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if tmpl.Title != "Sweep the porch" || tmpl.Icon != "🧹" {
		t.Errorf("fields not persisted: %+v", tmpl)
	}
	if tmpl.FrequencyType != "weekly" || tmpl.FrequencyValue != 5 {
		t.Errorf("frequency = %s/%d, want weekly/5", tmpl.FrequencyType, tmpl.FrequencyValue)
	}
	if len(tmpl.RotationOrder) != 3 || tmpl.RotationOrder[0] != a || tmpl.RotationOrder[1] != b || tmpl.RotationOrder[2] != a {
		t.Errorf("rotation order = %v, want [%d %d %d]", tmpl.RotationOrder, a, b, a)
	}
	if tmpl.CurrentAssigneeIndex != 0 {
		t.Errorf("index = %d, want 0 on create", tmpl.CurrentAssigneeIndex)
	}
	if !tmpl.IsActive {
		t.Error("new template should be active")
	}
	if !tmpl.StartDate.Equal(day(2025, time.March, 1)) {
		t.Errorf("start date = %v", tmpl.StartDate)
	}
}

func TestTemplateGetByIDMissing(t *testing.T) {
	db := testDB(t)
	templates := NewTemplateStore(db)

	tmpl, err := templates.GetByID(42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tmpl != nil {
		t.Errorf("expected nil for missing template, got %+v", tmpl)
	}
}

func TestTemplateUpdate(t *testing.T) {
	db := testDB(t)
	roomID, a, b := seedRoom(t, db)
	templates := NewTemplateStore(db)

	tmpl, err := templates.Create(roomID, "Dishes", "", "", "daily", 0, []int64{a}, day(2025, time.March, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := templates.Update(tmpl.ID, "Dishes and counters", "Wipe down after", "🍽️", "every_n_days", 2, []int64{b, a}, day(2025, time.March, 2), false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Dishes and counters" || updated.FrequencyType != "every_n_days" || updated.FrequencyValue != 2 {
		t.Errorf("update not persisted: %+v", updated)
	}
	if len(updated.RotationOrder) != 2 || updated.RotationOrder[0] != b {
		t.Errorf("rotation order = %v", updated.RotationOrder)
	}
	if updated.IsActive {
		t.Error("is_active should be false after update")
	}
}

func TestTemplateListActiveSkipsPaused(t *testing.T) {
	db := testDB(t)
	roomID, a, _ := seedRoom(t, db)
	templates := NewTemplateStore(db)

	active, err := templates.Create(roomID, "Bins", "", "", "daily", 0, []int64{a}, day(2025, time.March, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	paused, err := templates.Create(roomID, "Windows", "", "", "monthly", 15, []int64{a}, day(2025, time.March, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := templates.SetActive(paused.ID, false); err != nil {
		t.Fatalf("set active: %v", err)
	}

	got, err := templates.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(got) != 1 || got[0].ID != active.ID {
		t.Errorf("ListActive = %v, want only template %d", got, active.ID)
	}

	// ListByRoom still returns both.
	all, err := templates.ListByRoom(roomID)
	if err != nil {
		t.Fatalf("list by room: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListByRoom returned %d, want 2", len(all))
	}
}

func TestTemplateUpdateRotationIndex(t *testing.T) {
	db := testDB(t)
	roomID, a, b := seedRoom(t, db)
	templates := NewTemplateStore(db)

	tmpl, err := templates.Create(roomID, "Mop", "", "", "daily", 0, []int64{a, b}, day(2025, time.March, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := templates.UpdateRotationIndex(tmpl.ID, 1); err != nil {
		t.Fatalf("update index: %v", err)
	}
	reloaded, _ := templates.GetByID(tmpl.ID)
	if reloaded.CurrentAssigneeIndex != 1 {
		t.Errorf("index = %d, want 1", reloaded.CurrentAssigneeIndex)
	}
	// Other fields untouched.
	if reloaded.Title != "Mop" || len(reloaded.RotationOrder) != 2 {
		t.Errorf("index update touched other fields: %+v", reloaded)
	}
}

func TestTemplateDelete(t *testing.T) {
	db := testDB(t)
	roomID, a, _ := seedRoom(t, db)
	templates := NewTemplateStore(db)

	tmpl, err := templates.Create(roomID, "Mop", "", "", "daily", 0, []int64{a}, day(2025, time.March, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := templates.Delete(tmpl.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := templates.GetByID(tmpl.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("template survived delete")
	}
}
