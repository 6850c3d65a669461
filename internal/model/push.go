package model

import "time"

// NotifTypeAssignmentOverdue tags overdue push notifications so clients can
// collapse repeats.
const NotifTypeAssignmentOverdue = "assignment_overdue"

type PushSubscription struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	RoomID     int64     `json:"room_id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
