package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/bagshot/internal/model"
)

type AssignmentStore struct {
	db DBTX
}

func NewAssignmentStore(db DBTX) *AssignmentStore {
	return &AssignmentStore{db: db}
}

// WithTx returns a store bound to the given transaction.
func (s *AssignmentStore) WithTx(tx *sql.Tx) *AssignmentStore {
	return &AssignmentStore{db: tx}
}

const assignmentCols = `id, template_id, room_id, assigned_to_user_id, due_date, status, completed_at, completed_by_user_id, note, proof_image_url, created_at, updated_at`

func scanAssignment(sc scanner) (*model.TaskAssignment, error) {
	var a model.TaskAssignment
	var completedAt sql.NullTime
	var completedBy sql.NullInt64

	err := sc.Scan(
		&a.ID, &a.TemplateID, &a.RoomID, &a.AssignedToUserID,
		&a.DueDate, &a.Status, &completedAt, &completedBy,
		&a.Note, &a.ProofImageURL, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	if completedBy.Valid {
		a.CompletedByUserID = &completedBy.Int64
	}
	return &a, nil
}

func (s *AssignmentStore) Create(templateID, roomID, assignedTo int64, dueDate time.Time) (*model.TaskAssignment, error) {
	result, err := s.db.Exec(
		`INSERT INTO task_assignments (template_id, room_id, assigned_to_user_id, due_date, status)
		 VALUES (?, ?, ?, ?, ?)`,
		templateID, roomID, assignedTo, dueDate.UTC(), model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// CreateBatch inserts a generation run's worth of pending assignments. Bind
// the store to a transaction first so the batch lands as one write.
func (s *AssignmentStore) CreateBatch(assignments []model.TaskAssignment) error {
	for _, a := range assignments {
		_, err := s.db.Exec(
			`INSERT INTO task_assignments (template_id, room_id, assigned_to_user_id, due_date, status)
			 VALUES (?, ?, ?, ?, ?)`,
			a.TemplateID, a.RoomID, a.AssignedToUserID, a.DueDate.UTC(), model.StatusPending,
		)
		if err != nil {
			return fmt.Errorf("insert assignment batch: %w", err)
		}
	}
	return nil
}

func (s *AssignmentStore) GetByID(id int64) (*model.TaskAssignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentCols+` FROM task_assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// DeleteFuture removes every assignment for a template due on or after
// fromDate, regardless of status. Regeneration calls this before reinserting
// so re-running over the same window is idempotent.
func (s *AssignmentStore) DeleteFuture(templateID int64, fromDate time.Time) error {
	_, err := s.db.Exec(
		`DELETE FROM task_assignments WHERE template_id = ? AND due_date >= ?`,
		templateID, fromDate.UTC(),
	)
	if err != nil {
		return fmt.Errorf("delete future assignments: %w", err)
	}
	return nil
}

// ListPendingBefore returns pending assignments due strictly before the
// cutoff, oldest first. The overdue sweep feeds these to MarkOverdue.
func (s *AssignmentStore) ListPendingBefore(cutoff time.Time) ([]model.TaskAssignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM task_assignments WHERE status = ? AND due_date < ? ORDER BY due_date ASC`,
		model.StatusPending, cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list pending before: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (s *AssignmentStore) ListByTemplate(templateID int64) ([]model.TaskAssignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM task_assignments WHERE template_id = ? ORDER BY due_date ASC, id ASC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments by template: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// ListByRoom returns assignments for a room due within [from, to], optionally
// filtered by assignee and status.
func (s *AssignmentStore) ListByRoom(roomID int64, from, to time.Time, userID *int64, status *model.Status) ([]model.TaskAssignment, error) {
	query := `SELECT ` + assignmentCols + ` FROM task_assignments WHERE room_id = ? AND due_date >= ? AND due_date <= ?`
	args := []any{roomID, from.UTC(), to.UTC()}

	if userID != nil {
		query += ` AND assigned_to_user_id = ?`
		args = append(args, *userID)
	}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY due_date ASC, id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments by room: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func collectAssignments(rows *sql.Rows) ([]model.TaskAssignment, error) {
	var assignments []model.TaskAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// MarkCompleted transitions a pending assignment to completed. The status
// guard in the WHERE clause makes the check-and-set atomic: a false return
// means the assignment was not pending when the write landed.
func (s *AssignmentStore) MarkCompleted(id, actorID int64, note, proofImageURL string, completedAt time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE task_assignments
		 SET status = ?, completed_at = ?, completed_by_user_id = ?, note = ?, proof_image_url = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.StatusCompleted, completedAt.UTC(), actorID, note, proofImageURL, id, model.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	return rowChanged(result)
}

// MarkSkipped transitions a pending assignment to skipped with the supplied
// reason, under the same status guard as MarkCompleted.
func (s *AssignmentStore) MarkSkipped(id, actorID int64, reason string, skippedAt time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE task_assignments
		 SET status = ?, completed_at = ?, completed_by_user_id = ?, note = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.StatusSkipped, skippedAt.UTC(), actorID, reason, id, model.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark skipped: %w", err)
	}
	return rowChanged(result)
}

// MarkOverdue transitions a pending assignment to the terminal overdue state.
func (s *AssignmentStore) MarkOverdue(id int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE task_assignments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		model.StatusOverdue, id, model.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark overdue: %w", err)
	}
	return rowChanged(result)
}

// UpdateAssignee reassigns a pending assignment without touching its status.
func (s *AssignmentStore) UpdateAssignee(id, toUserID int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE task_assignments SET assigned_to_user_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		toUserID, id, model.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("update assignee: %w", err)
	}
	return rowChanged(result)
}

func rowChanged(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
