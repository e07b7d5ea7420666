package purchasing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edumeal/backoffice/services/backoffice/internal/validation"
)

var (
	ErrSupplierRequired = errors.New("supplier name is required")
	ErrReasonRequired   = errors.New("reject reason is required")
)

// OrderRequest turns a draft plan into a purchase order.
type OrderRequest struct {
	PlanID       int    `json:"planId" validate:"gt=0"`
	SupplierName string `json:"supplierName" validate:"notblank,max=200"`
	Note         string `json:"note,omitempty" validate:"max=1000"`
}

// Normalize trims the free-text fields.
func (r *OrderRequest) Normalize() {
	r.SupplierName = strings.TrimSpace(r.SupplierName)
	r.Note = strings.TrimSpace(r.Note)
}

// Validate checks the request before anything is sent. An empty supplier
// name is reported as ErrSupplierRequired alongside the field errors.
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.SupplierName) == "" {
		return fmt.Errorf("%w: %w", ErrSupplierRequired, validation.Errors{
			{Field: "supplierName", Message: "không được để trống"},
		})
	}
	return validation.Struct(r)
}

// Order is a purchase order created from a plan. It is read-only here.
type Order struct {
	ID           int       `json:"orderId"`
	PlanID       int       `json:"planId"`
	SupplierName string    `json:"supplierName"`
	Note         string    `json:"note,omitempty"`
	Status       string    `json:"purchaseOrderStatus"`
	OrderDate    time.Time `json:"orderDate,omitzero"`
}

// RejectRequest carries a manager's reason for refusing a delivery.
type RejectRequest struct {
	Reason string `json:"reason" validate:"notblank,max=500"`
}

func (r RejectRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return ErrReasonRequired
	}
	return validation.Struct(r)
}
