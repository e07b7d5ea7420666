package backoffice

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aquamarinepk/aqm"
	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
)

// ListFoods handles GET /foods?mainDish=&keyword=&includeInactive=
func (h *Handler) ListFoods(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListFoods")
	defer finish()

	q := r.URL.Query()
	query := edumeal.FoodQuery{Keyword: strings.TrimSpace(q.Get("keyword"))}
	if raw := q.Get("mainDish"); raw != "" {
		mainDish, err := strconv.ParseBool(raw)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid mainDish parameter")
			return
		}
		query.MainDish = &mainDish
	}
	query.IncludeInactive, _ = strconv.ParseBool(q.Get("includeInactive"))

	foods, err := h.backend.FoodItems(r.Context(), query)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}
	if foods == nil {
		foods = []planning.Dish{}
	}
	aqm.RespondSuccess(w, foods)
}

// ListTemplates handles GET /templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTemplates")
	defer finish()

	templates, err := h.backend.Templates(r.Context())
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}
	if templates == nil {
		templates = []edumeal.TemplateSummary{}
	}
	aqm.RespondSuccess(w, templates)
}

// GetTemplate handles GET /templates/{menuId}
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTemplate")
	defer finish()
	log := h.log(r)

	menuID, ok := h.parseIntParam(w, r, "menuId", log)
	if !ok {
		return
	}

	tmpl, err := h.backend.Template(r.Context(), menuID)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}
	aqm.RespondSuccess(w, tmpl)
}

// GetScheduleByWeek handles GET /schedules?weekStart=. A week without a
// schedule answers with null data.
func (h *Handler) GetScheduleByWeek(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetScheduleByWeek")
	defer finish()
	log := h.log(r)

	week, err := planning.ParseWeekWindow(r.URL.Query().Get("weekStart"))
	if err != nil {
		log.Debug("invalid week start", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid weekStart parameter")
		return
	}

	schedule, err := h.backend.ScheduleByWeek(r.Context(), week)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}
	aqm.RespondSuccess(w, schedule)
}
