package handler

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/services"
)

type RuleRequest struct {
	DayOfWeek    *int              `json:"day_of_week" validate:"required,min=0,max=6"`
	SlotType     string            `json:"slot_type" validate:"required,oneof=daily hourly"`
	SlotDuration int               `json:"slot_duration" validate:"gte=0,lte=24"`
	StartTime    *domain.TimeOfDay `json:"start_time" validate:"required"`
	EndTime      *domain.TimeOfDay `json:"end_time" validate:"required"`
	IsEnabled    *bool             `json:"is_enabled"`
}

type ExceptionRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=500"`
}

type ScheduleHandler struct {
	editor   *services.ScheduleEditor
	validate *validator.Validate
	logger   *zap.Logger
}

func NewScheduleHandler(editor *services.ScheduleEditor, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{editor: editor, validate: validator.New(), logger: logger}
}

func (h *ScheduleHandler) SetRule(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	assetID, err := pathID(r, "assetID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req RuleRequest
	if err := decode(r, &req, h.validate); err != nil {
		writeError(w, h.logger, err)
		return
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}

	rule, err := h.editor.SetRule(r.Context(), assetID, time.Weekday(*req.DayOfWeek), domain.SlotType(req.SlotType), services.RulePayload{
		StartTime:    *req.StartTime,
		EndTime:      *req.EndTime,
		SlotDuration: req.SlotDuration,
		Enabled:      enabled,
	}, actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

func (h *ScheduleHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	assetID, err := pathID(r, "assetID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	rules, err := h.editor.ListRules(r.Context(), assetID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, rules)
}

func (h *ScheduleHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "ruleID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.editor.DeleteRule(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) SetException(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	assetID, err := pathID(r, "assetID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req ExceptionRequest
	if err := decode(r, &req, h.validate); err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	exc, err := h.editor.SetException(r.Context(), assetID, date, req.Description, actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, exc)
}

func (h *ScheduleHandler) ListExceptions(w http.ResponseWriter, r *http.Request) {
	assetID, err := pathID(r, "assetID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out, err := h.editor.ListExceptions(r.Context(), assetID, from, to)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *ScheduleHandler) RemoveException(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "exceptionID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.editor.RemoveException(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
