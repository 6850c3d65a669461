package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/bagshot/internal/model"
)

type RoomStore struct {
	db DBTX
}

func NewRoomStore(db DBTX) *RoomStore {
	return &RoomStore{db: db}
}

const roomCols = `id, name, created_at, updated_at`

func scanRoom(sc scanner) (*model.Room, error) {
	var r model.Room
	if err := sc.Scan(&r.ID, &r.Name, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RoomStore) CreateRoom(name string) (*model.Room, error) {
	result, err := s.db.Exec(`INSERT INTO rooms (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRoomByID(id)
}

func (s *RoomStore) GetRoomByID(id int64) (*model.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomCols+` FROM rooms WHERE id = ?`, id)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) ListRooms() ([]model.Room, error) {
	rows, err := s.db.Query(`SELECT ` + roomCols + ` FROM rooms ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

// --- Member methods ---

const memberCols = `id, room_id, name, color, avatar_emoji, pin_hash != '', is_active, created_at, updated_at`

func scanMember(sc scanner) (*model.RoomMember, error) {
	var m model.RoomMember
	err := sc.Scan(
		&m.ID, &m.RoomID, &m.Name, &m.Color, &m.AvatarEmoji,
		&m.HasPIN, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *RoomStore) CreateMember(roomID int64, name, color, avatarEmoji string) (*model.RoomMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO room_members (room_id, name, color, avatar_emoji) VALUES (?, ?, ?, ?)`,
		roomID, name, color, avatarEmoji,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetMemberByID(id)
}

func (s *RoomStore) GetMemberByID(id int64) (*model.RoomMember, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM room_members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *RoomStore) ListMembers(roomID int64) ([]model.RoomMember, error) {
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM room_members WHERE room_id = ? ORDER BY name ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.RoomMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *RoomStore) UpdateMember(id int64, name, color, avatarEmoji string, isActive bool) (*model.RoomMember, error) {
	_, err := s.db.Exec(
		`UPDATE room_members SET name = ?, color = ?, avatar_emoji = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, color, avatarEmoji, isActive, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	return s.GetMemberByID(id)
}

func (s *RoomStore) DeleteMember(id int64) error {
	_, err := s.db.Exec(`DELETE FROM room_members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

// IsActiveMember reports whether userID is an active member of the room.
// Rotation order validation runs every candidate id through this check.
func (s *RoomStore) IsActiveMember(roomID, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM room_members WHERE id = ? AND room_id = ? AND is_active = 1`,
		userID, roomID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return n > 0, nil
}

// --- PIN methods ---

func (s *RoomStore) SetPIN(id int64, hashedPIN string) error {
	_, err := s.db.Exec(
		`UPDATE room_members SET pin_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		hashedPIN, id,
	)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *RoomStore) ClearPIN(id int64) error {
	_, err := s.db.Exec(
		`UPDATE room_members SET pin_hash = '', updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

func (s *RoomStore) GetPINHash(id int64) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT pin_hash FROM room_members WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pin hash: %w", err)
	}
	return hash, nil
}
