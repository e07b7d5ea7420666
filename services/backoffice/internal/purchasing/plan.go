package purchasing

import (
	"errors"
	"fmt"
	"time"

	"github.com/edumeal/backoffice/pkg/enums/planstatus"
	"github.com/shopspring/decimal"
)

var (
	ErrPlanNotDraft   = errors.New("purchase plan is not a draft")
	ErrLineNotFound   = errors.New("purchase plan line not found")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Line is one ingredient of a purchase plan. Prices are per unit of quantity.
type Line struct {
	LineID         int              `json:"lineId"`
	IngredientID   int              `json:"ingredientId"`
	IngredientName string           `json:"ingredientName"`
	Unit           string           `json:"unit,omitempty"`
	Quantity       decimal.Decimal  `json:"requestedQuantity"`
	EstimatedPrice decimal.Decimal  `json:"estimatedPrice"`
	ActualPrice    *decimal.Decimal `json:"actualPrice,omitempty"`
	Supplier       string           `json:"supplier,omitempty"`
	BatchNo        string           `json:"batchNo,omitempty"`
	Origin         string           `json:"origin,omitempty"`
}

// EstimatedCost is quantity times the estimated unit price.
func (l Line) EstimatedCost() decimal.Decimal {
	return l.Quantity.Mul(l.EstimatedPrice)
}

// EffectiveCost prices the line at its actual price when one is known.
func (l Line) EffectiveCost() decimal.Decimal {
	if l.ActualPrice != nil {
		return l.Quantity.Mul(*l.ActualPrice)
	}
	return l.EstimatedCost()
}

// Totals are recomputed from the lines; they are never stored.
type Totals struct {
	Estimated decimal.Decimal `json:"estimatedTotal"`
	Effective decimal.Decimal `json:"effectiveTotal"`
	LineCount int             `json:"lineCount"`
}

// Plan is a purchase plan derived from a weekly schedule.
type Plan struct {
	ID             int       `json:"planId"`
	ScheduleMealID int       `json:"scheduleMealId"`
	Status         string    `json:"planStatus"`
	GeneratedAt    time.Time `json:"generatedAt,omitzero"`
	Lines          []Line    `json:"lines"`
}

// PlanStatus resolves the status string; unknown values are treated as
// Confirmed so they are never editable.
func (p *Plan) PlanStatus() planstatus.Status {
	if s := planstatus.ByName(p.Status); s != nil {
		return *s
	}
	return planstatus.Statuses.Confirmed
}

func (p *Plan) IsDraft() bool {
	return !p.PlanStatus().Terminal()
}

func (p *Plan) Totals() Totals {
	t := Totals{Estimated: decimal.Zero, Effective: decimal.Zero, LineCount: len(p.Lines)}
	for _, l := range p.Lines {
		t.Estimated = t.Estimated.Add(l.EstimatedCost())
		t.Effective = t.Effective.Add(l.EffectiveCost())
	}
	return t
}

// LineEdit overrides fields of one line. Nil fields are left unchanged.
type LineEdit struct {
	LineID         int              `json:"lineId" validate:"gt=0"`
	Quantity       *decimal.Decimal `json:"requestedQuantity,omitempty"`
	EstimatedPrice *decimal.Decimal `json:"estimatedPrice,omitempty"`
	ActualPrice    *decimal.Decimal `json:"actualPrice,omitempty"`
	Supplier       *string          `json:"supplier,omitempty"`
	BatchNo        *string          `json:"batchNo,omitempty"`
	Origin         *string          `json:"origin,omitempty"`
}

// ApplyEdits applies every edit or none of them.
func (p *Plan) ApplyEdits(edits []LineEdit) error {
	if !p.IsDraft() {
		return fmt.Errorf("plan %d (%s): %w", p.ID, p.Status, ErrPlanNotDraft)
	}

	lines := append([]Line(nil), p.Lines...)
	index := make(map[int]int, len(lines))
	for i, l := range lines {
		index[l.LineID] = i
	}

	for _, e := range edits {
		i, ok := index[e.LineID]
		if !ok {
			return fmt.Errorf("line %d: %w", e.LineID, ErrLineNotFound)
		}
		if err := e.apply(&lines[i]); err != nil {
			return fmt.Errorf("line %d: %w", e.LineID, err)
		}
	}

	p.Lines = lines
	return nil
}

func (e LineEdit) apply(l *Line) error {
	for _, d := range []*decimal.Decimal{e.Quantity, e.EstimatedPrice, e.ActualPrice} {
		if d != nil && d.IsNegative() {
			return ErrNegativeAmount
		}
	}

	if e.Quantity != nil {
		l.Quantity = *e.Quantity
	}
	if e.EstimatedPrice != nil {
		l.EstimatedPrice = *e.EstimatedPrice
	}
	if e.ActualPrice != nil {
		price := *e.ActualPrice
		l.ActualPrice = &price
	}
	if e.Supplier != nil {
		l.Supplier = *e.Supplier
	}
	if e.BatchNo != nil {
		l.BatchNo = *e.BatchNo
	}
	if e.Origin != nil {
		l.Origin = *e.Origin
	}
	return nil
}

// CanDelete reports whether the plan may still be removed.
func (p *Plan) CanDelete() error {
	if !p.IsDraft() {
		return fmt.Errorf("plan %d (%s): %w", p.ID, p.Status, ErrPlanNotDraft)
	}
	return nil
}

// UpdateRequest is the save-draft payload.
type UpdateRequest struct {
	PlanID     int    `json:"planId"`
	PlanStatus string `json:"planStatus"`
	Lines      []Line `json:"lines"`
}

// UpdateRequest builds the save-draft payload from the current lines.
func (p *Plan) UpdateRequest() (UpdateRequest, error) {
	if !p.IsDraft() {
		return UpdateRequest{}, fmt.Errorf("plan %d (%s): %w", p.ID, p.Status, ErrPlanNotDraft)
	}
	return UpdateRequest{
		PlanID:     p.ID,
		PlanStatus: planstatus.Statuses.Draft.Code(),
		Lines:      append([]Line(nil), p.Lines...),
	}, nil
}
