package model

import "time"

// Status is the lifecycle state of a task assignment. Pending is the only
// non-terminal state; transitions are enforced in the rotation package.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusOverdue   Status = "overdue"

	// StatusInProgress appears on client boards only; the engine never
	// produces or consumes it.
	StatusInProgress Status = "in_progress"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusSkipped, StatusOverdue, StatusInProgress:
		return true
	}
	return false
}

// TaskAssignment is one concrete dated occurrence of a template. Assignments
// are created only by the generator, never directly by callers. DueDate has
// date granularity and is stored as UTC midnight.
type TaskAssignment struct {
	ID                int64      `json:"id"`
	TemplateID        int64      `json:"template_id"`
	RoomID            int64      `json:"room_id"`
	AssignedToUserID  int64      `json:"assigned_to_user_id"`
	DueDate           time.Time  `json:"due_date"`
	Status            Status     `json:"status"`
	CompletedAt       *time.Time `json:"completed_at"`
	CompletedByUserID *int64     `json:"completed_by_user_id"`
	Note              string     `json:"note"`
	ProofImageURL     string     `json:"proof_image_url"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
