package rotation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/bagshot/internal/frequency"
	"github.com/dukerupert/bagshot/internal/metrics"
	"github.com/dukerupert/bagshot/internal/model"
	"github.com/dukerupert/bagshot/internal/store"
)

// generationWindowDays is the rolling horizon for bulk generation runs.
const generationWindowDays = 30

// Uploader stores a proof image and returns its public URL. The S3-backed
// implementation lives in internal/upload; a nil Uploader disables proof
// images.
type Uploader interface {
	Upload(ctx context.Context, contentType string, data []byte) (string, error)
}

// ProofImage is an optional photo attached to a completion.
type ProofImage struct {
	ContentType string
	Data        []byte
}

// Engine owns assignment scheduling: bulk and single-occurrence generation,
// the complete/skip/swap lifecycle, and the overdue sweep. Lifecycle
// transitions that touch both an assignment and its template's rotation index
// run inside a single transaction.
type Engine struct {
	db          *sql.DB
	templates   *store.TemplateStore
	assignments *store.AssignmentStore
	rooms       *store.RoomStore
	uploader    Uploader
	logger      *slog.Logger

	now func() time.Time
}

func NewEngine(db *sql.DB, templates *store.TemplateStore, assignments *store.AssignmentStore, rooms *store.RoomStore, uploader Uploader, logger *slog.Logger) *Engine {
	return &Engine{
		db:          db,
		templates:   templates,
		assignments: assignments,
		rooms:       rooms,
		uploader:    uploader,
		logger:      logger,
		now:         time.Now,
	}
}

func (e *Engine) today() time.Time {
	return frequency.DateOf(e.now())
}

// TemplateParams carries the caller-editable template fields.
type TemplateParams struct {
	RoomID         int64
	Title          string
	Description    string
	Icon           string
	FrequencyType  string
	FrequencyValue int
	RotationOrder  []int64
	StartDate      time.Time
}

// ValidateRotationOrder rejects an empty list and any id that is not an
// active member of the room. Callers must treat false as a hard rejection of
// the save.
func (e *Engine) ValidateRotationOrder(roomID int64, userIDs []int64) (bool, error) {
	if len(userIDs) == 0 {
		return false, nil
	}
	for _, id := range userIDs {
		ok, err := e.rooms.IsActiveMember(roomID, id)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (e *Engine) validateParams(p TemplateParams) error {
	typ, err := frequency.ParseType(p.FrequencyType)
	if err != nil {
		return validationErrorf("%v", err)
	}
	if _, err := frequency.New(typ, p.FrequencyValue); err != nil {
		return validationErrorf("%v", err)
	}

	ok, err := e.ValidateRotationOrder(p.RoomID, p.RotationOrder)
	if err != nil {
		return err
	}
	if !ok {
		return validationErrorf("rotation order must be a non-empty list of active room members")
	}
	return nil
}

// CreateTemplate validates and persists a new template, then generates its
// first window of assignments starting at the template's start date.
func (e *Engine) CreateTemplate(p TemplateParams) (*model.TaskTemplate, error) {
	if err := e.validateParams(p); err != nil {
		return nil, err
	}

	t, err := e.templates.Create(p.RoomID, p.Title, p.Description, p.Icon, p.FrequencyType, p.FrequencyValue, p.RotationOrder, frequency.DateOf(p.StartDate))
	if err != nil {
		return nil, err
	}

	start := frequency.DateOf(p.StartDate)
	if err := e.Generate(t.ID, start, start.AddDate(0, 0, generationWindowDays)); err != nil {
		return nil, fmt.Errorf("generate initial window: %w", err)
	}
	return t, nil
}

// UpdateTemplate validates and persists edited template fields, then
// regenerates the rolling window anchored at today.
func (e *Engine) UpdateTemplate(templateID int64, p TemplateParams, isActive bool) (*model.TaskTemplate, error) {
	existing, err := e.templates.GetByID(templateID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	if err := e.validateParams(p); err != nil {
		return nil, err
	}

	t, err := e.templates.Update(templateID, p.Title, p.Description, p.Icon, p.FrequencyType, p.FrequencyValue, p.RotationOrder, frequency.DateOf(p.StartDate), isActive)
	if err != nil {
		return nil, err
	}

	today := e.today()
	if err := e.Generate(templateID, today, today.AddDate(0, 0, generationWindowDays)); err != nil {
		return nil, fmt.Errorf("regenerate window: %w", err)
	}
	return t, nil
}

// PauseTemplate deactivates a template. Its future assignments stay in place
// until the next regeneration trigger; the daily sweep skips paused templates.
func (e *Engine) PauseTemplate(templateID int64) error {
	t, err := e.templates.GetByID(templateID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrNotFound
	}
	return e.templates.SetActive(templateID, false)
}

// ResumeTemplate reactivates a paused template and regenerates its window
// from today.
func (e *Engine) ResumeTemplate(templateID int64) error {
	t, err := e.templates.GetByID(templateID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrNotFound
	}
	if err := e.templates.SetActive(templateID, true); err != nil {
		return err
	}

	today := e.today()
	if err := e.Generate(templateID, today, today.AddDate(0, 0, generationWindowDays)); err != nil {
		return fmt.Errorf("regenerate window: %w", err)
	}
	return nil
}

// DeleteTemplate removes a template's future assignments, then the template
// itself. Completed, skipped, and overdue history is retained.
func (e *Engine) DeleteTemplate(templateID int64) error {
	if err := e.assignments.DeleteFuture(templateID, e.today()); err != nil {
		return err
	}
	return e.templates.Delete(templateID)
}

// Generate bulk-generates pending assignments for a template across
// [windowStart, windowEnd] inclusive. Existing assignments due on or after
// windowStart are deleted first, so re-running with unchanged template state
// is a no-op relative to stored state.
//
// Every occurrence in the window goes to the assignee the rotation index
// pointed at when the run started; the index only advances through lifecycle
// transitions. The current holder owns the whole known future until they act.
func (e *Engine) Generate(templateID int64, windowStart, windowEnd time.Time) error {
	t, err := e.templates.GetByID(templateID)
	if err != nil {
		return err
	}
	if t == nil || !t.IsActive {
		return nil
	}
	// Unreachable for templates that passed save-time validation.
	if len(t.RotationOrder) == 0 {
		e.logger.Warn("template has empty rotation order, skipping generation", "template_id", templateID)
		return nil
	}

	typ, err := frequency.ParseType(t.FrequencyType)
	if err != nil {
		return fmt.Errorf("template %d: %w", templateID, err)
	}
	desc, err := frequency.New(typ, t.FrequencyValue)
	if err != nil {
		return fmt.Errorf("template %d: %w", templateID, err)
	}

	windowStart = frequency.DateOf(windowStart)
	windowEnd = frequency.DateOf(windowEnd)
	assignee := CurrentAssignee(t)

	var batch []model.TaskAssignment
	for cursor := windowStart; !cursor.After(windowEnd); cursor = desc.Next(cursor) {
		batch = append(batch, model.TaskAssignment{
			TemplateID:       t.ID,
			RoomID:           t.RoomID,
			AssignedToUserID: assignee,
			DueDate:          cursor,
		})
	}

	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	as := e.assignments.WithTx(tx)
	if err := as.DeleteFuture(t.ID, windowStart); err != nil {
		return err
	}
	if err := as.CreateBatch(batch); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit generation: %w", err)
	}

	metrics.AssignmentsGenerated.Add(float64(len(batch)))
	return nil
}

// Complete marks a pending assignment done by its assignee, advances the
// template's rotation, and schedules the next occurrence for the new
// assignee. The status write, index advance, and new insert land in one
// transaction; a failed precondition leaves no side effects.
func (e *Engine) Complete(ctx context.Context, assignmentID, actorID int64, note string, proof *ProofImage) (*model.TaskAssignment, error) {
	a, err := e.assignments.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	if a.AssignedToUserID != actorID {
		return nil, ErrForbidden
	}
	if !CanTransition(a.Status, model.StatusCompleted) {
		return nil, ErrInvalidState
	}

	// Upload before any mutation so an upload failure surfaces with the
	// assignment untouched.
	var proofURL string
	if proof != nil && e.uploader != nil {
		proofURL, err = e.uploader.Upload(ctx, proof.ContentType, proof.Data)
		if err != nil {
			return nil, fmt.Errorf("upload proof image: %w", err)
		}
	}

	tx, err := e.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	as := e.assignments.WithTx(tx)
	ok, err := as.MarkCompleted(a.ID, actorID, note, proofURL, e.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with a concurrent transition.
		return nil, ErrInvalidState
	}

	if err := e.advanceAndScheduleNext(tx, a.TemplateID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit complete: %w", err)
	}

	return e.assignments.GetByID(a.ID)
}

// Skip behaves like Complete for rotation advance but records the assignment
// as skipped with the supplied reason. No proof image path.
func (e *Engine) Skip(assignmentID, actorID int64, reason string) (*model.TaskAssignment, error) {
	a, err := e.assignments.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	if a.AssignedToUserID != actorID {
		return nil, ErrForbidden
	}
	if !CanTransition(a.Status, model.StatusSkipped) {
		return nil, ErrInvalidState
	}

	tx, err := e.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	as := e.assignments.WithTx(tx)
	ok, err := as.MarkSkipped(a.ID, actorID, reason, e.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	if err := e.advanceAndScheduleNext(tx, a.TemplateID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit skip: %w", err)
	}

	return e.assignments.GetByID(a.ID)
}

// advanceAndScheduleNext performs the rotation advance half of a complete or
// skip: bump the template index and insert exactly one new pending occurrence
// for the new assignee, due at the next occurrence after today. Other future
// assignments are left untouched. A template deleted underneath the
// assignment leaves the transition itself intact.
func (e *Engine) advanceAndScheduleNext(tx *sql.Tx, templateID int64) error {
	ts := e.templates.WithTx(tx)
	as := e.assignments.WithTx(tx)

	t, err := ts.GetByID(templateID)
	if err != nil {
		return err
	}
	if t == nil || len(t.RotationOrder) == 0 {
		e.logger.Warn("template missing during rotation advance", "template_id", templateID)
		return nil
	}

	idx := Advance(t)
	if err := ts.UpdateRotationIndex(t.ID, idx); err != nil {
		return err
	}

	typ, err := frequency.ParseType(t.FrequencyType)
	if err != nil {
		return fmt.Errorf("template %d: %w", t.ID, err)
	}
	desc, err := frequency.New(typ, t.FrequencyValue)
	if err != nil {
		return fmt.Errorf("template %d: %w", t.ID, err)
	}

	due := desc.Next(e.today())
	if _, err := as.Create(t.ID, t.RoomID, CurrentAssignee(t), due); err != nil {
		return err
	}
	return nil
}

// Swap reassigns a pending assignment from its current assignee to another
// user. The rotation index does not move, and the target is not checked
// against room membership.
func (e *Engine) Swap(assignmentID, fromUserID, toUserID int64) (*model.TaskAssignment, error) {
	a, err := e.assignments.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	if a.AssignedToUserID != fromUserID {
		return nil, ErrForbidden
	}
	if a.Status != model.StatusPending {
		return nil, ErrInvalidState
	}

	ok, err := e.assignments.UpdateAssignee(a.ID, toUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}
	return e.assignments.GetByID(a.ID)
}

// ListAssignments returns a room's assignments due within [from, to],
// optionally filtered by assignee and status.
func (e *Engine) ListAssignments(roomID int64, from, to time.Time, userID *int64, status *model.Status) ([]model.TaskAssignment, error) {
	return e.assignments.ListByRoom(roomID, frequency.DateOf(from), frequency.DateOf(to), userID, status)
}

// RunDailyGeneration bulk-generates the rolling window for every active
// template. One template's failure is logged and does not abort the sweep.
func (e *Engine) RunDailyGeneration(ctx context.Context) error {
	metrics.GenerationRuns.Inc()

	templates, err := e.templates.ListActive()
	if err != nil {
		metrics.GenerationFailures.Inc()
		return fmt.Errorf("list active templates: %w", err)
	}

	today := e.today()
	windowEnd := today.AddDate(0, 0, generationWindowDays)

	for _, t := range templates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Generate(t.ID, today, windowEnd); err != nil {
			metrics.GenerationFailures.Inc()
			e.logger.Error("generation failed for template", "template_id", t.ID, "error", err)
		}
	}
	return nil
}

// RunOverdueSweep transitions stale pending assignments to overdue and
// returns the newly overdue set. An assignment is stale once its due date is
// strictly before today; work due today keeps the full day. Overdue is
// terminal, so complete and skip reject these afterwards.
func (e *Engine) RunOverdueSweep(ctx context.Context) ([]model.TaskAssignment, error) {
	cutoff := e.today()

	stale, err := e.assignments.ListPendingBefore(cutoff)
	if err != nil {
		return nil, err
	}
	if len(stale) == 0 {
		return nil, nil
	}

	tx, err := e.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	as := e.assignments.WithTx(tx)
	var swept []model.TaskAssignment
	for _, a := range stale {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := as.MarkOverdue(a.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			a.Status = model.StatusOverdue
			swept = append(swept, a)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit overdue sweep: %w", err)
	}

	metrics.AssignmentsOverdue.Add(float64(len(swept)))
	return swept, nil
}
