package backoffice

import (
	"context"
	"errors"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/edumeal/backoffice/pkg/event"
	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
	"github.com/edumeal/backoffice/services/backoffice/internal/purchasing"
)

var ErrSubmitInProgress = errors.New("a submit is already in progress for this draft")

// MenuPlanner runs the weekly menu workflow on a user's draft: off-day
// resolution, grid edits, schedule submission and plan derivation.
type MenuPlanner struct {
	backend  Backend
	resolver *planning.OffDayResolver
	notifier *WorkflowNotifier
	audit    *AuditLogger
	logger   aqm.Logger
}

func NewMenuPlanner(backend Backend, notifier *WorkflowNotifier, audit *AuditLogger, logger aqm.Logger) *MenuPlanner {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if notifier == nil {
		notifier = NewWorkflowNotifier(nil, logger)
	}
	if audit == nil {
		audit = NewAuditLogger(logger)
	}
	return &MenuPlanner{
		backend:  backend,
		resolver: planning.NewOffDayResolver(backend, logger),
		notifier: notifier,
		audit:    audit,
		logger:   logger,
	}
}

// SubmitResult reports a created schedule and, when derivation worked, its
// purchase plan. PlanError is set when the schedule exists but no plan does.
type SubmitResult struct {
	ScheduleMealID int                `json:"scheduleMealId"`
	WeekStart      string             `json:"weekStart"`
	WeekEnd        string             `json:"weekEnd"`
	MealCount      int                `json:"mealCount"`
	Plan           *purchasing.Plan   `json:"plan,omitempty"`
	PlanTotals     *purchasing.Totals `json:"planTotals,omitempty"`
	PlanLocation   string             `json:"planLocation,omitempty"`
	PlanError      string             `json:"planError,omitempty"`
}

// Open returns the draft view, resolving off days for a fresh draft.
func (p *MenuPlanner) Open(ctx context.Context, d *Draft, fresh bool) DraftView {
	d.mu.Lock()
	defer d.mu.Unlock()

	if fresh {
		p.resolveLocked(ctx, d)
	}
	return d.view()
}

// SetWeek moves the draft to another week, dropping its cells, and resolves
// the new week's off days. A failed lookup leaves the draft usable and
// flagged stale.
func (p *MenuPlanner) SetWeek(ctx context.Context, d *Draft, week planning.WeekWindow) (DraftView, error) {
	if week.IsZero() {
		return DraftView{}, errors.New("week start is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.submitting {
		return d.view(), ErrSubmitInProgress
	}

	d.grid.SetWeek(week)
	d.offDaysStale = false
	p.resolveLocked(ctx, d)
	return d.view(), nil
}

func (p *MenuPlanner) RefreshOffDays(ctx context.Context, d *Draft) DraftView {
	d.mu.Lock()
	defer d.mu.Unlock()

	p.resolveLocked(ctx, d)
	return d.view()
}

func (p *MenuPlanner) resolveLocked(ctx context.Context, d *Draft) {
	err := p.resolver.Resolve(ctx, d.grid)
	d.offDaysStale = err != nil
}

func (p *MenuPlanner) AddDish(d *Draft, dish planning.Dish, day planning.Day, mealType string) (DraftView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.submitting {
		return d.view(), ErrSubmitInProgress
	}
	err := d.grid.AddDish(dish, day, mealType)
	return d.view(), err
}

func (p *MenuPlanner) RemoveDish(d *Draft, day planning.Day, mealType string, foodID int) (DraftView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.submitting {
		return d.view(), ErrSubmitInProgress
	}
	d.grid.RemoveDish(day, mealType, foodID)
	return d.view(), nil
}

// ApplyTemplate loads a menu template and imports it into the draft.
func (p *MenuPlanner) ApplyTemplate(ctx context.Context, d *Draft, menuID int) (int, DraftView, error) {
	tmpl, err := p.backend.Template(ctx, menuID)
	if err != nil {
		d.mu.Lock()
		defer d.mu.Unlock()
		return 0, d.view(), fmt.Errorf("load template %d: %w", menuID, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.submitting {
		return 0, d.view(), ErrSubmitInProgress
	}
	written := d.grid.ApplyTemplate(tmpl)
	return written, d.view(), nil
}

func (p *MenuPlanner) ApplySuggestions(d *Draft, suggestions []planning.Suggestion) (int, DraftView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.submitting {
		return 0, d.view(), ErrSubmitInProgress
	}
	written := d.grid.ApplySuggestions(suggestions)
	return written, d.view(), nil
}

func (p *MenuPlanner) Clear(d *Draft) (DraftView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.submitting {
		return d.view(), ErrSubmitInProgress
	}
	d.grid.Clear()
	return d.view(), nil
}

// Submit validates and flattens the draft, creates the schedule and then
// derives its purchase plan once. Validation failures never reach the
// backend. The draft cells are cleared only once the plan is derived; when
// derivation fails they stay and the result carries PlanError.
func (p *MenuPlanner) Submit(ctx context.Context, d *Draft) (*SubmitResult, error) {
	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	req, err := planning.BuildScheduleRequest(d.grid)
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	d.submitting = true
	week := d.grid.Week()
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.submitting = false
		d.mu.Unlock()
	}()

	id, err := p.backend.CreateSchedule(ctx, req)
	p.audit.Record(ctx, "create-schedule", req.WeekStart, req, err)
	if err != nil {
		return nil, fmt.Errorf("create schedule for %s: %w", req.WeekStart, err)
	}
	p.notifier.ScheduleCreated(ctx, id, req)

	result := &SubmitResult{
		ScheduleMealID: id,
		WeekStart:      req.WeekStart,
		WeekEnd:        req.WeekEnd,
		MealCount:      len(req.DailyMeals),
	}

	// The schedule exists now; derivation must not depend on the caller
	// staying connected.
	plan, err := p.DerivePlan(context.WithoutCancel(ctx), id)
	if err != nil {
		result.PlanError = withServerMessage(err, msgDeriveFailed)
		return result, nil
	}

	d.mu.Lock()
	if d.grid.Week().Start().Equal(week.Start()) {
		d.grid.Clear()
	}
	d.mu.Unlock()

	totals := plan.Totals()
	result.Plan = plan
	result.PlanTotals = &totals
	result.PlanLocation = fmt.Sprintf("/purchase-plans/%d", plan.ID)
	return result, nil
}

// DerivePlan asks the backend for the purchase plan of a schedule. It is
// called once per created schedule and again only on explicit request.
func (p *MenuPlanner) DerivePlan(ctx context.Context, scheduleMealID int) (*purchasing.Plan, error) {
	plan, err := p.backend.DerivePlan(ctx, scheduleMealID)
	p.audit.Record(ctx, "derive-purchase-plan", fmt.Sprintf("schedule/%d", scheduleMealID), nil, err)
	if err != nil {
		p.logger.Error("cannot derive purchase plan",
			"request_id", aqm.RequestIDFrom(ctx),
			"schedule_meal_id", scheduleMealID,
			"error", err,
		)
		return nil, fmt.Errorf("derive plan for schedule %d: %w", scheduleMealID, err)
	}

	p.notifier.PlanChanged(ctx, event.EventPurchasePlanDerived, plan)
	return plan, nil
}
