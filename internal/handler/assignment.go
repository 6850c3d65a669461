package handler

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/bagshot/internal/model"
	"github.com/dukerupert/bagshot/internal/rotation"
	"github.com/dukerupert/bagshot/internal/websocket"
)

type AssignmentHandler struct {
	engine *rotation.Engine
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAssignmentHandler(engine *rotation.Engine, hub *websocket.Hub, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{engine: engine, hub: hub, logger: logger}
}

func (h *AssignmentHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

// List serves a room's assignments for a date range. from/to default to the
// current week; user_id and status narrow the result.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	q := r.URL.Query()
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -int(now.Weekday()))
	to := from.AddDate(0, 0, 6)

	if v := q.Get("from"); v != "" {
		from, err = time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
	}
	if v := q.Get("to"); v != "" {
		to, err = time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
	}

	var userID *int64
	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "user_id must be an integer")
			return
		}
		userID = &id
	}

	var status *model.Status
	if v := q.Get("status"); v != "" {
		s := model.Status(v)
		if !s.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		status = &s
	}

	assignments, err := h.engine.ListAssignments(roomID, from, to, userID, status)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	if assignments == nil {
		assignments = []model.TaskAssignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

type completeRequest struct {
	UserID           int64  `json:"user_id"`
	Note             string `json:"note"`
	ProofImage       string `json:"proof_image"`
	ProofContentType string `json:"proof_content_type"`
}

func (h *AssignmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var proof *rotation.ProofImage
	if req.ProofImage != "" {
		data, err := base64.StdEncoding.DecodeString(req.ProofImage)
		if err != nil {
			writeError(w, http.StatusBadRequest, "proof_image must be base64")
			return
		}
		proof = &rotation.ProofImage{ContentType: req.ProofContentType, Data: data}
	}

	assignment, err := h.engine.Complete(r.Context(), id, req.UserID, req.Note, proof)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("assignment", "completed", id, nil))
	writeJSON(w, http.StatusOK, assignment)
}

func (h *AssignmentHandler) Skip(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		UserID int64  `json:"user_id"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	assignment, err := h.engine.Skip(id, req.UserID, req.Reason)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("assignment", "skipped", id, nil))
	writeJSON(w, http.StatusOK, assignment)
}

func (h *AssignmentHandler) Swap(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		FromUserID int64 `json:"from_user_id"`
		ToUserID   int64 `json:"to_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.FromUserID == 0 || req.ToUserID == 0 {
		writeError(w, http.StatusBadRequest, "from_user_id and to_user_id are required")
		return
	}

	assignment, err := h.engine.Swap(id, req.FromUserID, req.ToUserID)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("assignment", "swapped", id, nil))
	writeJSON(w, http.StatusOK, assignment)
}
