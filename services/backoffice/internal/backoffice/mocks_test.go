package backoffice

import (
	"context"
	"errors"
	"sync"

	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
	"github.com/edumeal/backoffice/services/backoffice/internal/health"
	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
	"github.com/edumeal/backoffice/services/backoffice/internal/purchasing"
)

var errNotImplemented = errors.New("not implemented")

// MockPublisher records published events.
type MockPublisher struct {
	mu              sync.Mutex
	PublishedEvents []struct {
		Topic string
		Data  []byte
	}
	PublishFunc func(ctx context.Context, topic string, data []byte) error
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, topic, data); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishedEvents = append(m.PublishedEvents, struct {
		Topic string
		Data  []byte
	}{Topic: topic, Data: data})
	return nil
}

func (m *MockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.PublishedEvents)
}

// fakeBackend implements Backend with overridable functions. Unset
// functions fail with errNotImplemented and count as unexpected calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	CheckOffDatesFunc       func(ctx context.Context, week planning.WeekWindow) (planning.OffDaySet, error)
	LoginFunc               func(ctx context.Context, email, password string) (edumeal.Tokens, error)
	FoodItemsFunc           func(ctx context.Context, q edumeal.FoodQuery) ([]planning.Dish, error)
	TemplatesFunc           func(ctx context.Context) ([]edumeal.TemplateSummary, error)
	TemplateFunc            func(ctx context.Context, menuID int) (planning.Template, error)
	CreateScheduleFunc      func(ctx context.Context, schedule planning.ScheduleRequest) (int, error)
	ScheduleByWeekFunc      func(ctx context.Context, week planning.WeekWindow) (*edumeal.Schedule, error)
	DerivePlanFunc          func(ctx context.Context, scheduleMealID int) (*purchasing.Plan, error)
	PlanByDateFunc          func(ctx context.Context, date string) (*purchasing.Plan, error)
	PlanFunc                func(ctx context.Context, planID int) (*purchasing.Plan, error)
	UpdatePlanFunc          func(ctx context.Context, update purchasing.UpdateRequest) (*purchasing.Plan, error)
	DeletePlanFunc          func(ctx context.Context, planID int) error
	CreateOrderFromPlanFunc func(ctx context.Context, order purchasing.OrderRequest) (*purchasing.Order, error)
	ConfirmOrderReceiptFunc func(ctx context.Context, orderID int) (*purchasing.Order, error)
	RejectOrderReceiptFunc  func(ctx context.Context, orderID int, reject purchasing.RejectRequest) (*purchasing.Order, error)
	ChildrenFunc            func(ctx context.Context) ([]edumeal.Student, error)
	HealthRecordsFunc       func(ctx context.Context, studentID int) ([]health.Measurement, error)
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeBackend) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) CheckOffDates(ctx context.Context, week planning.WeekWindow) (planning.OffDaySet, error) {
	f.record("CheckOffDates")
	if f.CheckOffDatesFunc != nil {
		return f.CheckOffDatesFunc(ctx, week)
	}
	return planning.NewOffDaySet(), nil
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (edumeal.Tokens, error) {
	f.record("Login")
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, email, password)
	}
	return edumeal.Tokens{}, errNotImplemented
}

func (f *fakeBackend) FoodItems(ctx context.Context, q edumeal.FoodQuery) ([]planning.Dish, error) {
	f.record("FoodItems")
	if f.FoodItemsFunc != nil {
		return f.FoodItemsFunc(ctx, q)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) Templates(ctx context.Context) ([]edumeal.TemplateSummary, error) {
	f.record("Templates")
	if f.TemplatesFunc != nil {
		return f.TemplatesFunc(ctx)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) Template(ctx context.Context, menuID int) (planning.Template, error) {
	f.record("Template")
	if f.TemplateFunc != nil {
		return f.TemplateFunc(ctx, menuID)
	}
	return planning.Template{}, errNotImplemented
}

func (f *fakeBackend) CreateSchedule(ctx context.Context, schedule planning.ScheduleRequest) (int, error) {
	f.record("CreateSchedule")
	if f.CreateScheduleFunc != nil {
		return f.CreateScheduleFunc(ctx, schedule)
	}
	return 0, errNotImplemented
}

func (f *fakeBackend) ScheduleByWeek(ctx context.Context, week planning.WeekWindow) (*edumeal.Schedule, error) {
	f.record("ScheduleByWeek")
	if f.ScheduleByWeekFunc != nil {
		return f.ScheduleByWeekFunc(ctx, week)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) DerivePlan(ctx context.Context, scheduleMealID int) (*purchasing.Plan, error) {
	f.record("DerivePlan")
	if f.DerivePlanFunc != nil {
		return f.DerivePlanFunc(ctx, scheduleMealID)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) PlanByDate(ctx context.Context, date string) (*purchasing.Plan, error) {
	f.record("PlanByDate")
	if f.PlanByDateFunc != nil {
		return f.PlanByDateFunc(ctx, date)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) Plan(ctx context.Context, planID int) (*purchasing.Plan, error) {
	f.record("Plan")
	if f.PlanFunc != nil {
		return f.PlanFunc(ctx, planID)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) UpdatePlan(ctx context.Context, update purchasing.UpdateRequest) (*purchasing.Plan, error) {
	f.record("UpdatePlan")
	if f.UpdatePlanFunc != nil {
		return f.UpdatePlanFunc(ctx, update)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) DeletePlan(ctx context.Context, planID int) error {
	f.record("DeletePlan")
	if f.DeletePlanFunc != nil {
		return f.DeletePlanFunc(ctx, planID)
	}
	return errNotImplemented
}

func (f *fakeBackend) CreateOrderFromPlan(ctx context.Context, order purchasing.OrderRequest) (*purchasing.Order, error) {
	f.record("CreateOrderFromPlan")
	if f.CreateOrderFromPlanFunc != nil {
		return f.CreateOrderFromPlanFunc(ctx, order)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) ConfirmOrderReceipt(ctx context.Context, orderID int) (*purchasing.Order, error) {
	f.record("ConfirmOrderReceipt")
	if f.ConfirmOrderReceiptFunc != nil {
		return f.ConfirmOrderReceiptFunc(ctx, orderID)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) RejectOrderReceipt(ctx context.Context, orderID int, reject purchasing.RejectRequest) (*purchasing.Order, error) {
	f.record("RejectOrderReceipt")
	if f.RejectOrderReceiptFunc != nil {
		return f.RejectOrderReceiptFunc(ctx, orderID, reject)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) Children(ctx context.Context) ([]edumeal.Student, error) {
	f.record("Children")
	if f.ChildrenFunc != nil {
		return f.ChildrenFunc(ctx)
	}
	return nil, errNotImplemented
}

func (f *fakeBackend) HealthRecords(ctx context.Context, studentID int) ([]health.Measurement, error) {
	f.record("HealthRecords")
	if f.HealthRecordsFunc != nil {
		return f.HealthRecordsFunc(ctx, studentID)
	}
	return nil, errNotImplemented
}

var _ Backend = (*fakeBackend)(nil)

// fakeSelectionRepo lets tests inject storage failures.
type fakeSelectionRepo struct {
	LoadFunc  func(ctx context.Context, userID string) (*ChildSelection, error)
	SaveFunc  func(ctx context.Context, selection *ChildSelection) error
	ClearFunc func(ctx context.Context, userID string) error
}

func (f *fakeSelectionRepo) Load(ctx context.Context, userID string) (*ChildSelection, error) {
	if f.LoadFunc != nil {
		return f.LoadFunc(ctx, userID)
	}
	return nil, ErrSelectionNotFound
}

func (f *fakeSelectionRepo) Save(ctx context.Context, selection *ChildSelection) error {
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, selection)
	}
	return nil
}

func (f *fakeSelectionRepo) Clear(ctx context.Context, userID string) error {
	if f.ClearFunc != nil {
		return f.ClearFunc(ctx, userID)
	}
	return nil
}
