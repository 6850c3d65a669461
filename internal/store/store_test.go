package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/dukerupert/bagshot/internal/database"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedRoom creates a room with two active members and returns the ids.
func seedRoom(t *testing.T, db *sql.DB) (roomID, memberA, memberB int64) {
	t.Helper()
	rooms := NewRoomStore(db)

	room, err := rooms.CreateRoom("Bag End")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	a, err := rooms.CreateMember(room.ID, "Frodo", "#2d6a4f", "🍃")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	b, err := rooms.CreateMember(room.ID, "Sam", "#b5651d", "🥔")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return room.ID, a.ID, b.ID
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
