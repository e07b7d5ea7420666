package backoffice

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aquamarinepk/aqm"
	"github.com/edumeal/backoffice/pkg/event"
	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
	"github.com/edumeal/backoffice/services/backoffice/internal/purchasing"
	"github.com/edumeal/backoffice/services/backoffice/internal/validation"
)

// planView is a plan with its computed totals.
type planView struct {
	*purchasing.Plan
	Totals purchasing.Totals `json:"totals"`
}

func planOf(p *purchasing.Plan) *planView {
	if p == nil {
		return nil
	}
	return &planView{Plan: p, Totals: p.Totals()}
}

type updatePlanRequest struct {
	Edits []purchasing.LineEdit `json:"edits" validate:"dive"`
}

type confirmPlanRequest struct {
	SupplierName string `json:"supplierName"`
	Note         string `json:"note"`
}

// GetPlanByDate handles GET /purchase-plans?date=. No plan for the date
// answers with null data.
func (h *Handler) GetPlanByDate(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetPlanByDate")
	defer finish()

	date, ok := planning.NormalizeDate(strings.TrimSpace(r.URL.Query().Get("date")))
	if !ok {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid date parameter")
		return
	}

	plan, err := h.backend.PlanByDate(r.Context(), date)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}
	aqm.RespondSuccess(w, planOf(plan))
}

// GetPlan handles GET /purchase-plans/{planId}
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetPlan")
	defer finish()
	log := h.log(r)

	planID, ok := h.parseIntParam(w, r, "planId", log)
	if !ok {
		return
	}

	plan, err := h.backend.Plan(r.Context(), planID)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}
	aqm.RespondSuccess(w, planOf(plan))
}

// UpdatePlan handles PUT /purchase-plans/{planId}. Edits are applied to the
// current plan and the result is saved as a draft.
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdatePlan")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	planID, ok := h.parseIntParam(w, r, "planId", log)
	if !ok {
		return
	}

	var req updatePlanRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}
	if err := validation.Struct(req); err != nil {
		h.respondError(w, r, err, msgValidationFailed)
		return
	}

	plan, err := h.backend.Plan(ctx, planID)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}

	if err := plan.ApplyEdits(req.Edits); err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}
	update, err := plan.UpdateRequest()
	if err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}

	saved, err := h.backend.UpdatePlan(ctx, update)
	h.audit.Record(ctx, "update-purchase-plan", fmt.Sprintf("plan/%d", planID), req, err)
	if err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}

	h.notifier.PlanChanged(ctx, event.EventPurchasePlanUpdated, saved)
	aqm.RespondSuccess(w, planOf(saved))
}

// DeletePlan handles DELETE /purchase-plans/{planId}. Only drafts can go.
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeletePlan")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	planID, ok := h.parseIntParam(w, r, "planId", log)
	if !ok {
		return
	}

	plan, err := h.backend.Plan(ctx, planID)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}
	if err := plan.CanDelete(); err != nil {
		h.respondError(w, r, err, msgPlanNotDraft)
		return
	}

	err = h.backend.DeletePlan(ctx, planID)
	h.audit.Record(ctx, "delete-purchase-plan", fmt.Sprintf("plan/%d", planID), nil, err)
	if err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}

	h.notifier.PlanDeleted(ctx, planID)
	w.WriteHeader(http.StatusNoContent)
}

// ConfirmPlan handles POST /purchase-plans/{planId}/confirm. The request is
// validated before the backend is contacted at all.
func (h *Handler) ConfirmPlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ConfirmPlan")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	planID, ok := h.parseIntParam(w, r, "planId", log)
	if !ok {
		return
	}

	var body confirmPlanRequest
	if !h.decodePayload(w, r, &body, log) {
		return
	}

	req := purchasing.OrderRequest{
		PlanID:       planID,
		SupplierName: body.SupplierName,
		Note:         body.Note,
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.respondError(w, r, err, msgValidationFailed)
		return
	}

	plan, err := h.backend.Plan(ctx, planID)
	if err != nil {
		h.respondError(w, r, err, msgLoadFailed)
		return
	}
	if !plan.IsDraft() {
		h.respondError(w, r, fmt.Errorf("plan %d: %w", planID, purchasing.ErrPlanNotDraft), msgPlanNotDraft)
		return
	}

	order, err := h.backend.CreateOrderFromPlan(ctx, req)
	h.audit.Record(ctx, "create-purchase-order", fmt.Sprintf("plan/%d", planID), req, err)
	if err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}

	h.notifier.OrderChanged(ctx, event.EventPurchaseOrderCreated, order, "")
	aqm.Respond(w, http.StatusCreated, order, nil)
}

// ReceiveOrder handles POST /purchase-orders/{orderId}/receive
func (h *Handler) ReceiveOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ReceiveOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseIntParam(w, r, "orderId", log)
	if !ok {
		return
	}

	order, err := h.backend.ConfirmOrderReceipt(ctx, orderID)
	h.audit.Record(ctx, "receive-purchase-order", fmt.Sprintf("order/%d", orderID), nil, err)
	if err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}

	h.notifier.OrderChanged(ctx, event.EventPurchaseOrderReceived, order, "")
	aqm.RespondSuccess(w, order)
}

// RejectOrder handles POST /purchase-orders/{orderId}/reject
func (h *Handler) RejectOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RejectOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseIntParam(w, r, "orderId", log)
	if !ok {
		return
	}

	var req purchasing.RejectRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if err := req.Validate(); err != nil {
		h.respondError(w, r, err, msgReasonRequired)
		return
	}

	order, err := h.backend.RejectOrderReceipt(ctx, orderID, req)
	h.audit.Record(ctx, "reject-purchase-order", fmt.Sprintf("order/%d", orderID), req, err)
	if err != nil {
		h.respondError(w, r, err, msgGenericFailure)
		return
	}

	h.notifier.OrderChanged(ctx, event.EventPurchaseOrderRejected, order, req.Reason)
	aqm.RespondSuccess(w, order)
}
