package backoffice

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/edumeal/backoffice/pkg/enums/role"
	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
	"github.com/edumeal/backoffice/services/backoffice/internal/health"
	"github.com/edumeal/backoffice/services/backoffice/internal/validation"
)

const (
	defaultSeriesStep = 7
	maxSeriesStep     = 90
)

type selectChildRequest struct {
	StudentID int `json:"studentId" validate:"gt=0"`
}

type bmiSeriesResponse struct {
	StudentID int            `json:"studentId"`
	StepDays  int            `json:"stepDays"`
	Points    []health.Point `json:"points"`
}

// GetSelectedChild handles GET /parent/selected-child. Nothing selected
// answers with null data.
func (h *Handler) GetSelectedChild(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetSelectedChild")
	defer finish()
	log := h.log(r)

	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	sel, err := h.selections.Load(r.Context(), s.UserID)
	if errors.Is(err, ErrSelectionNotFound) {
		aqm.RespondSuccess(w, nil)
		return
	}
	if err != nil {
		log.Error("cannot load child selection", "user_id", s.UserID, "error", err)
		aqm.RespondError(w, http.StatusServiceUnavailable, msgStorageUnavailable)
		return
	}
	aqm.RespondSuccess(w, sel)
}

// SelectChild handles PUT /parent/selected-child. The student must be one
// of the parent's children.
func (h *Handler) SelectChild(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SelectChild")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req selectChildRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}
	if err := validation.Struct(req); err != nil {
		h.respondError(w, r, err, msgValidationFailed)
		return
	}

	student, err := h.childOf(r, req.StudentID)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}
	if student == nil {
		log.Info("student not linked to parent", "user_id", s.UserID, "student_id", req.StudentID)
		aqm.RespondError(w, http.StatusForbidden, msgStudentNotLinked)
		return
	}

	sel := &ChildSelection{
		UserID:      s.UserID,
		StudentID:   student.ID,
		StudentName: student.FullName,
		SelectedAt:  time.Now().UTC(),
	}
	if err := h.selections.Save(ctx, sel); err != nil {
		log.Error("cannot save child selection", "user_id", s.UserID, "error", err)
		aqm.RespondError(w, http.StatusServiceUnavailable, msgStorageUnavailable)
		return
	}
	aqm.RespondSuccess(w, sel)
}

// ClearSelectedChild handles DELETE /parent/selected-child
func (h *Handler) ClearSelectedChild(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ClearSelectedChild")
	defer finish()

	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	if err := h.selections.Clear(r.Context(), s.UserID); err != nil {
		h.log(r).Error("cannot clear child selection", "user_id", s.UserID, "error", err)
		aqm.RespondError(w, http.StatusServiceUnavailable, msgStorageUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBMISeries handles GET /students/{studentId}/bmi-series?step=. Parents
// only see their own children.
func (h *Handler) GetBMISeries(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetBMISeries")
	defer finish()
	log := h.log(r)

	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	studentID, ok := h.parseIntParam(w, r, "studentId", log)
	if !ok {
		return
	}

	step := defaultSeriesStep
	if raw := r.URL.Query().Get("step"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSeriesStep {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid step parameter")
			return
		}
		step = n
	}

	if !s.HasRole(role.Roles.Admin, role.Roles.Warden) {
		student, err := h.childOf(r, studentID)
		if err != nil {
			h.respondError(w, r, err, msgLoadFailed)
			return
		}
		if student == nil {
			aqm.RespondError(w, http.StatusForbidden, msgStudentNotLinked)
			return
		}
	}

	records, err := h.backend.HealthRecords(r.Context(), studentID)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}

	points := health.Series(records, step)
	if points == nil {
		points = []health.Point{}
	}
	aqm.RespondSuccess(w, bmiSeriesResponse{StudentID: studentID, StepDays: step, Points: points})
}

// childOf looks the student up among the session user's children. It
// returns nil when the student is not linked.
func (h *Handler) childOf(r *http.Request, studentID int) (*edumeal.Student, error) {
	children, err := h.backend.Children(r.Context())
	if err != nil {
		return nil, err
	}
	for i := range children {
		if children[i].ID == studentID {
			return &children[i], nil
		}
	}
	return nil, nil
}
