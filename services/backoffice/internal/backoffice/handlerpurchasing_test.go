package backoffice

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/edumeal/backoffice/pkg/enums/role"
	"github.com/edumeal/backoffice/pkg/event"
	"github.com/edumeal/backoffice/services/backoffice/internal/purchasing"
	"github.com/shopspring/decimal"
)

func draftPlan(id int) *purchasing.Plan {
	return &purchasing.Plan{
		ID:     id,
		Status: "Draft",
		Lines: []purchasing.Line{
			{LineID: 1, IngredientName: "Gạo", Quantity: decimal.NewFromInt(10), EstimatedPrice: decimal.NewFromInt(20000)},
		},
	}
}

func TestConfirmPlan(t *testing.T) {
	t.Run("emptySupplierSendsNothing", func(t *testing.T) {
		env := newTestEnv(t, nil)
		cookie := env.session(t, role.Roles.Manager)

		rec := env.do(t, http.MethodPost, "/purchase-plans/3/confirm", confirmPlanRequest{SupplierName: "   "}, cookie)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}

		var body struct {
			Error  string `json:"error"`
			Errors []struct {
				Field string `json:"field"`
			} `json:"errors"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Error != msgSupplierRequired {
			t.Errorf("error = %q, want %q", body.Error, msgSupplierRequired)
		}
		if len(body.Errors) != 1 || body.Errors[0].Field != "supplierName" {
			t.Errorf("field errors = %+v, want supplierName", body.Errors)
		}
		if n := env.backend.totalCalls(); n != 0 {
			t.Errorf("backend called %d times, want 0", n)
		}
	})

	t.Run("supplierForwarded", func(t *testing.T) {
		var sent purchasing.OrderRequest
		backend := &fakeBackend{
			PlanFunc: func(ctx context.Context, planID int) (*purchasing.Plan, error) {
				return draftPlan(planID), nil
			},
			CreateOrderFromPlanFunc: func(ctx context.Context, order purchasing.OrderRequest) (*purchasing.Order, error) {
				sent = order
				return &purchasing.Order{ID: 77, PlanID: order.PlanID, SupplierName: order.SupplierName, Status: "Pending"}, nil
			},
		}
		env := newTestEnv(t, backend)
		cookie := env.session(t, role.Roles.Manager)

		rec := env.do(t, http.MethodPost, "/purchase-plans/3/confirm", confirmPlanRequest{SupplierName: " ACME Co ", Note: "giao sáng"}, cookie)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
		}
		if sent.SupplierName != "ACME Co" || sent.PlanID != 3 || sent.Note != "giao sáng" {
			t.Errorf("order request = %+v", sent)
		}

		var order purchasing.Order
		decodeData(t, rec, &order)
		if order.ID != 77 {
			t.Errorf("order id = %d, want 77", order.ID)
		}

		var evt event.PurchaseOrderEvent
		if len(env.publisher.PublishedEvents) != 1 {
			t.Fatalf("published %d events, want 1", len(env.publisher.PublishedEvents))
		}
		json.Unmarshal(env.publisher.PublishedEvents[0].Data, &evt)
		if evt.EventType != event.EventPurchaseOrderCreated || evt.SupplierName != "ACME Co" || evt.ActorID != "user-1" {
			t.Errorf("event = %+v", evt)
		}
	})

	t.Run("confirmedPlanRejected", func(t *testing.T) {
		backend := &fakeBackend{
			PlanFunc: func(ctx context.Context, planID int) (*purchasing.Plan, error) {
				p := draftPlan(planID)
				p.Status = "Confirmed"
				return p, nil
			},
		}
		env := newTestEnv(t, backend)
		cookie := env.session(t, role.Roles.Admin)

		rec := env.do(t, http.MethodPost, "/purchase-plans/3/confirm", confirmPlanRequest{SupplierName: "ACME Co"}, cookie)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
		if n := backend.Calls("CreateOrderFromPlan"); n != 0 {
			t.Errorf("CreateOrderFromPlan called %d times, want 0", n)
		}
	})
}

func TestUpdatePlan(t *testing.T) {
	t.Run("editsSavedAsDraft", func(t *testing.T) {
		var sent purchasing.UpdateRequest
		backend := &fakeBackend{
			PlanFunc: func(ctx context.Context, planID int) (*purchasing.Plan, error) {
				return draftPlan(planID), nil
			},
			UpdatePlanFunc: func(ctx context.Context, update purchasing.UpdateRequest) (*purchasing.Plan, error) {
				sent = update
				return &purchasing.Plan{ID: update.PlanID, Status: update.PlanStatus, Lines: update.Lines}, nil
			},
		}
		env := newTestEnv(t, backend)
		cookie := env.session(t, role.Roles.Manager)

		qty := decimal.NewFromInt(12)
		supplier := "Chợ Bến Thành"
		payload := updatePlanRequest{Edits: []purchasing.LineEdit{{LineID: 1, Quantity: &qty, Supplier: &supplier}}}

		rec := env.do(t, http.MethodPut, "/purchase-plans/3", payload, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
		if sent.PlanID != 3 || sent.PlanStatus != "Draft" || len(sent.Lines) != 1 {
			t.Fatalf("update request = %+v", sent)
		}
		if !sent.Lines[0].Quantity.Equal(qty) || sent.Lines[0].Supplier != supplier {
			t.Errorf("line = %+v", sent.Lines[0])
		}

		var view planView
		decodeData(t, rec, &view)
		if !view.Totals.Estimated.Equal(decimal.NewFromInt(240000)) {
			t.Errorf("estimated total = %s, want 240000", view.Totals.Estimated)
		}
	})

	t.Run("unknownLine", func(t *testing.T) {
		backend := &fakeBackend{
			PlanFunc: func(ctx context.Context, planID int) (*purchasing.Plan, error) {
				return draftPlan(planID), nil
			},
		}
		env := newTestEnv(t, backend)
		cookie := env.session(t, role.Roles.Manager)

		qty := decimal.NewFromInt(1)
		rec := env.do(t, http.MethodPut, "/purchase-plans/3", updatePlanRequest{Edits: []purchasing.LineEdit{{LineID: 9, Quantity: &qty}}}, cookie)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		if n := backend.Calls("UpdatePlan"); n != 0 {
			t.Errorf("UpdatePlan called %d times, want 0", n)
		}
	})

	t.Run("confirmedPlanReadOnly", func(t *testing.T) {
		backend := &fakeBackend{
			PlanFunc: func(ctx context.Context, planID int) (*purchasing.Plan, error) {
				p := draftPlan(planID)
				p.Status = "Confirmed"
				return p, nil
			},
		}
		env := newTestEnv(t, backend)
		cookie := env.session(t, role.Roles.Manager)

		qty := decimal.NewFromInt(1)
		rec := env.do(t, http.MethodPut, "/purchase-plans/3", updatePlanRequest{Edits: []purchasing.LineEdit{{LineID: 1, Quantity: &qty}}}, cookie)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
		if n := backend.Calls("UpdatePlan"); n != 0 {
			t.Errorf("UpdatePlan called %d times, want 0", n)
		}
	})
}

func TestDeletePlan(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantCode   int
		wantDelete int
	}{
		{name: "draft", status: "Draft", wantCode: http.StatusNoContent, wantDelete: 1},
		{name: "confirmed", status: "Confirmed", wantCode: http.StatusConflict, wantDelete: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{
				PlanFunc: func(ctx context.Context, planID int) (*purchasing.Plan, error) {
					p := draftPlan(planID)
					p.Status = tt.status
					return p, nil
				},
				DeletePlanFunc: func(ctx context.Context, planID int) error {
					return nil
				},
			}
			env := newTestEnv(t, backend)
			cookie := env.session(t, role.Roles.Manager)

			rec := env.do(t, http.MethodDelete, "/purchase-plans/3", nil, cookie)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if n := backend.Calls("DeletePlan"); n != tt.wantDelete {
				t.Errorf("DeletePlan called %d times, want %d", n, tt.wantDelete)
			}
		})
	}
}

func TestGetPlanByDate(t *testing.T) {
	backend := &fakeBackend{
		PlanByDateFunc: func(ctx context.Context, date string) (*purchasing.Plan, error) {
			if date != "2024-01-03" {
				t.Errorf("date = %q, want 2024-01-03", date)
			}
			return nil, nil
		},
	}
	env := newTestEnv(t, backend)
	cookie := env.session(t, role.Roles.Manager)

	rec := env.do(t, http.MethodGet, "/purchase-plans?date=2024-01-03T00:00:00Z", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var plan *planView
	decodeData(t, rec, &plan)
	if plan != nil {
		t.Errorf("plan = %+v, want null", plan)
	}

	rec = env.do(t, http.MethodGet, "/purchase-plans?date=soon", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid date: status = %d, want 400", rec.Code)
	}
}

func TestOrderReceipt(t *testing.T) {
	var reason string
	backend := &fakeBackend{
		ConfirmOrderReceiptFunc: func(ctx context.Context, orderID int) (*purchasing.Order, error) {
			return &purchasing.Order{ID: orderID, Status: "Received"}, nil
		},
		RejectOrderReceiptFunc: func(ctx context.Context, orderID int, reject purchasing.RejectRequest) (*purchasing.Order, error) {
			reason = reject.Reason
			return &purchasing.Order{ID: orderID, Status: "Rejected"}, nil
		},
	}
	env := newTestEnv(t, backend)
	cookie := env.session(t, role.Roles.Manager)

	rec := env.do(t, http.MethodPost, "/purchase-orders/8/receive", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Errorf("receive: status = %d, want 200", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/purchase-orders/8/reject", purchasing.RejectRequest{Reason: ""}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reject without reason: status = %d, want 400", rec.Code)
	}
	if n := backend.Calls("RejectOrderReceipt"); n != 0 {
		t.Errorf("RejectOrderReceipt called %d times, want 0", n)
	}

	rec = env.do(t, http.MethodPost, "/purchase-orders/8/reject", purchasing.RejectRequest{Reason: "  Rau bị dập  "}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("reject: status = %d, want 200", rec.Code)
	}
	if reason != "Rau bị dập" {
		t.Errorf("reason = %q", reason)
	}
	if n := env.publisher.count(); n != 2 {
		t.Errorf("published %d events, want 2", n)
	}
}
