package rotation

import (
	"testing"

	"github.com/dukerupert/bagshot/internal/model"
)

func TestCurrentAssignee(t *testing.T) {
	tests := []struct {
		name  string
		order []int64
		index int
		want  int64
	}{
		{"start of rotation", []int64{10, 20, 30}, 0, 10},
		{"middle", []int64{10, 20, 30}, 1, 20},
		{"index wraps via modulo", []int64{10, 20, 30}, 3, 10},
		{"index beyond length after rotation shrank", []int64{10, 20}, 5, 20},
		{"duplicate entries", []int64{10, 10, 20}, 1, 10},
		{"single member", []int64{42}, 7, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := &model.TaskTemplate{RotationOrder: tt.order, CurrentAssigneeIndex: tt.index}
			if got := CurrentAssignee(tmpl); got != tt.want {
				t.Errorf("CurrentAssignee = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAdvance(t *testing.T) {
	tmpl := &model.TaskTemplate{RotationOrder: []int64{10, 20, 30}, CurrentAssigneeIndex: 0}

	for i, want := range []int{1, 2, 0, 1} {
		got := Advance(tmpl)
		if got != want {
			t.Fatalf("advance %d: index = %d, want %d", i, got, want)
		}
		if tmpl.CurrentAssigneeIndex != want {
			t.Fatalf("advance %d: template index not updated in memory", i)
		}
	}
}

func TestAdvanceSingleMemberStaysPut(t *testing.T) {
	tmpl := &model.TaskTemplate{RotationOrder: []int64{42}, CurrentAssigneeIndex: 0}
	if got := Advance(tmpl); got != 0 {
		t.Errorf("index = %d, want 0 for single-member rotation", got)
	}
	if CurrentAssignee(tmpl) != 42 {
		t.Errorf("assignee changed for single-member rotation")
	}
}
