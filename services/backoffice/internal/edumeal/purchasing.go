package edumeal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/edumeal/backoffice/services/backoffice/internal/purchasing"
)

// DerivePlan asks the backend to build the purchase plan of a schedule.
func (c *Client) DerivePlan(ctx context.Context, scheduleMealID int) (*purchasing.Plan, error) {
	req := request{
		method: http.MethodPost,
		path:   "/purchase-plans/from-schedule",
		query:  url.Values{"scheduleMealId": {strconv.Itoa(scheduleMealID)}},
	}

	var dto planDTO
	if err := c.call(ctx, req, &dto); err != nil {
		return nil, err
	}
	plan := dto.plan()
	if plan.ScheduleMealID == 0 {
		plan.ScheduleMealID = scheduleMealID
	}
	return plan, nil
}

// PlanByDate returns nil without error when no plan covers the date.
func (c *Client) PlanByDate(ctx context.Context, date string) (*purchasing.Plan, error) {
	req := request{
		method: http.MethodGet,
		path:   "/purchase-plans/by-date",
		query:  url.Values{"date": {date}},
	}

	var dto planDTO
	if err := c.call(ctx, req, &dto); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dto.plan(), nil
}

func (c *Client) Plan(ctx context.Context, planID int) (*purchasing.Plan, error) {
	var dto planDTO
	path := fmt.Sprintf("/purchase-plans/%d", planID)
	if err := c.call(ctx, request{method: http.MethodGet, path: path}, &dto); err != nil {
		return nil, err
	}
	return dto.plan(), nil
}

func (c *Client) UpdatePlan(ctx context.Context, update purchasing.UpdateRequest) (*purchasing.Plan, error) {
	req, err := jsonRequest(http.MethodPut, fmt.Sprintf("/purchase-plans/%d", update.PlanID), update)
	if err != nil {
		return nil, err
	}

	var dto planDTO
	if err := c.call(ctx, req, &dto); err != nil {
		return nil, err
	}

	plan := dto.plan()
	if plan.ID == 0 {
		plan = &purchasing.Plan{ID: update.PlanID, Status: update.PlanStatus, Lines: update.Lines}
	}
	return plan, nil
}

func (c *Client) DeletePlan(ctx context.Context, planID int) error {
	path := fmt.Sprintf("/purchase-plans/%d", planID)
	return c.call(ctx, request{method: http.MethodDelete, path: path}, nil)
}

// CreateOrderFromPlan submits the order as a multipart form. The request is
// validated first; an invalid one never reaches the backend.
func (c *Client) CreateOrderFromPlan(ctx context.Context, order purchasing.OrderRequest) (*purchasing.Order, error) {
	order.Normalize()
	if err := order.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"planId", strconv.Itoa(order.PlanID)},
		{"supplierName", order.SupplierName},
		{"note", order.Note},
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("encode order form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("encode order form: %w", err)
	}

	req := request{
		method:      http.MethodPost,
		path:        "/kitchen/purchase-orders/from-plan",
		body:        buf.Bytes(),
		contentType: form.FormDataContentType(),
	}

	var dto orderDTO
	if err := c.call(ctx, req, &dto); err != nil {
		return nil, err
	}

	created := dto.order()
	if created.PlanID == 0 {
		created.PlanID = order.PlanID
	}
	if created.SupplierName == "" {
		created.SupplierName = order.SupplierName
	}
	return created, nil
}

// ConfirmOrderReceipt records that the delivery of an order was accepted.
func (c *Client) ConfirmOrderReceipt(ctx context.Context, orderID int) (*purchasing.Order, error) {
	path := fmt.Sprintf("/kitchen/purchase-orders/%d/confirm", orderID)

	var dto orderDTO
	if err := c.call(ctx, request{method: http.MethodPost, path: path}, &dto); err != nil {
		return nil, err
	}
	return withOrderID(dto.order(), orderID), nil
}

func (c *Client) RejectOrderReceipt(ctx context.Context, orderID int, reject purchasing.RejectRequest) (*purchasing.Order, error) {
	if err := reject.Validate(); err != nil {
		return nil, err
	}

	req, err := jsonRequest(http.MethodPost, fmt.Sprintf("/kitchen/purchase-orders/%d/reject", orderID), reject)
	if err != nil {
		return nil, err
	}

	var dto orderDTO
	if err := c.call(ctx, req, &dto); err != nil {
		return nil, err
	}
	return withOrderID(dto.order(), orderID), nil
}

func withOrderID(o *purchasing.Order, id int) *purchasing.Order {
	if o.ID == 0 {
		o.ID = id
	}
	return o
}
