package model

import "time"

// TaskTemplate is a recurring chore definition owned by a room. The rotation
// order is an ordered list of member IDs; duplicates are allowed so a member
// can carry a heavier share. CurrentAssigneeIndex is always read modulo the
// rotation length and mutates only through rotation advance.
type TaskTemplate struct {
	ID                   int64     `json:"id"`
	RoomID               int64     `json:"room_id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Icon                 string    `json:"icon"`
	FrequencyType        string    `json:"frequency_type"`
	FrequencyValue       int       `json:"frequency_value"`
	RotationOrder        []int64   `json:"rotation_order"`
	CurrentAssigneeIndex int       `json:"current_assignee_index"`
	StartDate            time.Time `json:"start_date"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
