package backoffice

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/aquamarinepk/aqm"
	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
	"github.com/edumeal/backoffice/services/backoffice/internal/validation"
	"github.com/go-chi/chi/v5"
)

type plannerResponse struct {
	DraftView
	Warning string `json:"warning,omitempty"`
}

func plannerOf(v DraftView) plannerResponse {
	resp := plannerResponse{DraftView: v}
	if v.OffDaysStale {
		resp.Warning = msgOffDaysFailed
	}
	return resp
}

type setWeekRequest struct {
	WeekStart string `json:"weekStart" validate:"notblank"`
}

type addDishRequest struct {
	Day      planning.Day `json:"dayOfWeek"`
	MealType string       `json:"mealType"`
	FoodID   int          `json:"foodId"`
	FoodName string       `json:"foodName"`
	ImageURL string       `json:"imageUrl,omitempty"`
	FoodType string       `json:"foodType,omitempty"`
}

type suggestionsRequest struct {
	Suggestions []planning.Suggestion `json:"suggestions"`
}

type applyResponse struct {
	Applied int             `json:"applied"`
	Planner plannerResponse `json:"planner"`
}

func (h *Handler) draftFor(w http.ResponseWriter, r *http.Request) (*Draft, bool, bool) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return nil, false, false
	}
	d, fresh := h.drafts.Get(s.ID)
	return d, fresh, true
}

// GetPlanner handles GET /planner
func (h *Handler) GetPlanner(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetPlanner")
	defer finish()

	d, fresh, ok := h.draftFor(w, r)
	if !ok {
		return
	}

	aqm.RespondSuccess(w, plannerOf(h.planner.Open(r.Context(), d, fresh)))
}

// SetPlannerWeek handles PUT /planner/week
func (h *Handler) SetPlannerWeek(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetPlannerWeek")
	defer finish()
	log := h.log(r)

	d, _, ok := h.draftFor(w, r)
	if !ok {
		return
	}

	var req setWeekRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}
	if err := validation.Struct(req); err != nil {
		h.respondError(w, r, err, msgValidationFailed)
		return
	}

	week, err := planning.ParseWeekWindow(req.WeekStart)
	if err != nil {
		log.Debug("invalid week start", "value", req.WeekStart, "error", err)
		h.respondValidationErrors(w, http.StatusBadRequest, msgValidationFailed, []validation.FieldError{
			{Field: "weekStart", Message: "ngày không hợp lệ"},
		})
		return
	}

	view, err := h.planner.SetWeek(r.Context(), d, week)
	if err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}
	aqm.RespondSuccess(w, plannerOf(view))
}

// RefreshOffDays handles POST /planner/offdays/refresh
func (h *Handler) RefreshOffDays(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RefreshOffDays")
	defer finish()

	d, _, ok := h.draftFor(w, r)
	if !ok {
		return
	}

	aqm.RespondSuccess(w, plannerOf(h.planner.RefreshOffDays(r.Context(), d)))
}

// AddDish handles POST /planner/dishes
func (h *Handler) AddDish(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddDish")
	defer finish()
	log := h.log(r)

	d, _, ok := h.draftFor(w, r)
	if !ok {
		return
	}

	var req addDishRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	dish := planning.Dish{
		FoodID:   req.FoodID,
		FoodName: req.FoodName,
		ImageURL: req.ImageURL,
		FoodType: req.FoodType,
	}
	view, err := h.planner.AddDish(d, dish, req.Day, req.MealType)
	if err != nil {
		h.respondError(w, r, err, msgInvalidCell)
		return
	}
	aqm.RespondSuccess(w, plannerOf(view))
}

// RemoveDish handles DELETE /planner/dishes/{day}/{mealType}/{foodId}
func (h *Handler) RemoveDish(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RemoveDish")
	defer finish()
	log := h.log(r)

	d, _, ok := h.draftFor(w, r)
	if !ok {
		return
	}

	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		log.Debug("invalid day parameter", "value", chi.URLParam(r, "day"))
		aqm.RespondError(w, http.StatusBadRequest, msgInvalidCell)
		return
	}
	foodID, ok := h.parseIntParam(w, r, "foodId", log)
	if !ok {
		return
	}

	view, err := h.planner.RemoveDish(d, planning.Day(day), chi.URLParam(r, "mealType"), foodID)
	if err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}
	aqm.RespondSuccess(w, plannerOf(view))
}

// ClearPlanner handles DELETE /planner/dishes
func (h *Handler) ClearPlanner(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ClearPlanner")
	defer finish()

	d, _, ok := h.draftFor(w, r)
	if !ok {
		return
	}

	view, err := h.planner.Clear(d)
	if err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}
	aqm.RespondSuccess(w, plannerOf(view))
}

// ApplyTemplate handles POST /planner/templates/{menuId}/apply
func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ApplyTemplate")
	defer finish()
	log := h.log(r)

	d, _, ok := h.draftFor(w, r)
	if !ok {
		return
	}
	menuID, ok := h.parseIntParam(w, r, "menuId", log)
	if !ok {
		return
	}

	applied, view, err := h.planner.ApplyTemplate(r.Context(), d, menuID)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}
	aqm.RespondSuccess(w, applyResponse{Applied: applied, Planner: plannerOf(view)})
}

// ApplySuggestions handles POST /planner/suggestions
func (h *Handler) ApplySuggestions(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ApplySuggestions")
	defer finish()
	log := h.log(r)

	d, _, ok := h.draftFor(w, r)
	if !ok {
		return
	}

	var req suggestionsRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	applied, view, err := h.planner.ApplySuggestions(d, req.Suggestions)
	if err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}
	aqm.RespondSuccess(w, applyResponse{Applied: applied, Planner: plannerOf(view)})
}

// SubmitPlanner handles POST /planner/submit
func (h *Handler) SubmitPlanner(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SubmitPlanner")
	defer finish()
	log := h.log(r)

	d, _, ok := h.draftFor(w, r)
	if !ok {
		return
	}

	result, err := h.planner.Submit(r.Context(), d)
	if err != nil {
		h.respondError(w, r, err, msgSubmitFailed)
		return
	}

	log.Info("schedule submitted",
		"schedule_meal_id", result.ScheduleMealID,
		"week_start", result.WeekStart,
		"meals", result.MealCount,
		"plan_error", result.PlanError,
	)

	if result.PlanLocation != "" {
		w.Header().Set("Location", result.PlanLocation)
	}
	aqm.Respond(w, http.StatusCreated, result, nil)
}

// DerivePlan handles POST /purchase-plans/from-schedule/{scheduleMealId}
func (h *Handler) DerivePlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DerivePlan")
	defer finish()
	log := h.log(r)

	scheduleMealID, ok := h.parseIntParam(w, r, "scheduleMealId", log)
	if !ok {
		return
	}

	plan, err := h.planner.DerivePlan(r.Context(), scheduleMealID)
	if err != nil {
		h.respondError(w, r, err, msgDeriveFailed)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/purchase-plans/%d", plan.ID))
	aqm.Respond(w, http.StatusCreated, planOf(plan), nil)
}
