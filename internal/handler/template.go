package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/bagshot/internal/model"
	"github.com/dukerupert/bagshot/internal/rotation"
	"github.com/dukerupert/bagshot/internal/store"
	"github.com/dukerupert/bagshot/internal/websocket"
)

const dateLayout = "2006-01-02"

type TemplateHandler struct {
	engine    *rotation.Engine
	templates *store.TemplateStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewTemplateHandler(engine *rotation.Engine, templates *store.TemplateStore, hub *websocket.Hub, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{engine: engine, templates: templates, hub: hub, logger: logger}
}

func (h *TemplateHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

type templateRequest struct {
	RoomID         int64   `json:"room_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Icon           string  `json:"icon"`
	FrequencyType  string  `json:"frequency_type"`
	FrequencyValue int     `json:"frequency_value"`
	RotationOrder  []int64 `json:"rotation_order"`
	StartDate      string  `json:"start_date"`
	IsActive       *bool   `json:"is_active"`
}

func (req *templateRequest) params() (rotation.TemplateParams, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return rotation.TemplateParams{}, err
	}
	return rotation.TemplateParams{
		RoomID:         req.RoomID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Icon:           req.Icon,
		FrequencyType:  req.FrequencyType,
		FrequencyValue: req.FrequencyValue,
		RotationOrder:  req.RotationOrder,
		StartDate:      start,
	}, nil
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	p, err := req.params()
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	if p.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	tmpl, err := h.engine.CreateTemplate(p)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("template", "created", tmpl.ID, nil))
	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	templates, err := h.templates.ListByRoom(roomID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []model.TaskTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	tmpl, err := h.templates.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if tmpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	p, err := req.params()
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	if p.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	tmpl, err := h.engine.UpdateTemplate(id, p, isActive)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("template", "updated", id, nil))
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *TemplateHandler) Pause(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.engine.PauseTemplate(id); err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("template", "paused", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (h *TemplateHandler) Resume(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.engine.ResumeTemplate(id); err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("template", "resumed", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.templates.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	if err := h.engine.DeleteTemplate(id); err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("template", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
