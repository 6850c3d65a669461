package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/bagshot/internal/model"
)

type TemplateStore struct {
	db DBTX
}

func NewTemplateStore(db DBTX) *TemplateStore {
	return &TemplateStore{db: db}
}

// WithTx returns a store bound to the given transaction.
func (s *TemplateStore) WithTx(tx *sql.Tx) *TemplateStore {
	return &TemplateStore{db: tx}
}

const templateCols = `id, room_id, title, description, icon, frequency_type, frequency_value, rotation_order, current_assignee_index, start_date, is_active, created_at, updated_at`

func scanTemplate(sc scanner) (*model.TaskTemplate, error) {
	var t model.TaskTemplate
	var rotation string

	err := sc.Scan(
		&t.ID, &t.RoomID, &t.Title, &t.Description, &t.Icon,
		&t.FrequencyType, &t.FrequencyValue, &rotation,
		&t.CurrentAssigneeIndex, &t.StartDate, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(rotation), &t.RotationOrder); err != nil {
		return nil, fmt.Errorf("decode rotation order: %w", err)
	}
	return &t, nil
}

func encodeRotation(order []int64) (string, error) {
	data, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("encode rotation order: %w", err)
	}
	return string(data), nil
}

func (s *TemplateStore) Create(roomID int64, title, description, icon, frequencyType string, frequencyValue int, rotationOrder []int64, startDate time.Time) (*model.TaskTemplate, error) {
	rotation, err := encodeRotation(rotationOrder)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO task_templates (room_id, title, description, icon, frequency_type, frequency_value, rotation_order, start_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		roomID, title, description, icon, frequencyType, frequencyValue, rotation, startDate.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TemplateStore) GetByID(id int64) (*model.TaskTemplate, error) {
	row := s.db.QueryRow(`SELECT `+templateCols+` FROM task_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *TemplateStore) ListByRoom(roomID int64) ([]model.TaskTemplate, error) {
	rows, err := s.db.Query(
		`SELECT `+templateCols+` FROM task_templates WHERE room_id = ? ORDER BY title ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// ListActive returns every active template across all rooms, for the daily
// generation sweep.
func (s *TemplateStore) ListActive() ([]model.TaskTemplate, error) {
	rows, err := s.db.Query(`SELECT ` + templateCols + ` FROM task_templates WHERE is_active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}
	defer rows.Close()
	return collectTemplates(rows)
}

func collectTemplates(rows *sql.Rows) ([]model.TaskTemplate, error) {
	var templates []model.TaskTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *TemplateStore) Update(id int64, title, description, icon, frequencyType string, frequencyValue int, rotationOrder []int64, startDate time.Time, isActive bool) (*model.TaskTemplate, error) {
	rotation, err := encodeRotation(rotationOrder)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE task_templates
		 SET title = ?, description = ?, icon = ?, frequency_type = ?, frequency_value = ?, rotation_order = ?, start_date = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, description, icon, frequencyType, frequencyValue, rotation, startDate.UTC(), isActive, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return s.GetByID(id)
}

func (s *TemplateStore) SetActive(id int64, active bool) error {
	_, err := s.db.Exec(
		`UPDATE task_templates SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, id,
	)
	if err != nil {
		return fmt.Errorf("set template active: %w", err)
	}
	return nil
}

// UpdateRotationIndex persists a rotation advance. The index is the only
// template field lifecycle operations are allowed to touch.
func (s *TemplateStore) UpdateRotationIndex(id int64, index int) error {
	_, err := s.db.Exec(
		`UPDATE task_templates SET current_assignee_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		index, id,
	)
	if err != nil {
		return fmt.Errorf("update rotation index: %w", err)
	}
	return nil
}

func (s *TemplateStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM task_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
