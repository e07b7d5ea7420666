package backoffice

import (
	"context"

	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
	"github.com/edumeal/backoffice/services/backoffice/internal/health"
	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
	"github.com/edumeal/backoffice/services/backoffice/internal/purchasing"
)

// Backend is the slice of the EduMeal API the service relies on.
// *edumeal.Client implements it.
type Backend interface {
	planning.OffDaySource

	Login(ctx context.Context, email, password string) (edumeal.Tokens, error)

	FoodItems(ctx context.Context, q edumeal.FoodQuery) ([]planning.Dish, error)
	Templates(ctx context.Context) ([]edumeal.TemplateSummary, error)
	Template(ctx context.Context, menuID int) (planning.Template, error)
	CreateSchedule(ctx context.Context, schedule planning.ScheduleRequest) (int, error)
	ScheduleByWeek(ctx context.Context, week planning.WeekWindow) (*edumeal.Schedule, error)

	DerivePlan(ctx context.Context, scheduleMealID int) (*purchasing.Plan, error)
	PlanByDate(ctx context.Context, date string) (*purchasing.Plan, error)
	Plan(ctx context.Context, planID int) (*purchasing.Plan, error)
	UpdatePlan(ctx context.Context, update purchasing.UpdateRequest) (*purchasing.Plan, error)
	DeletePlan(ctx context.Context, planID int) error
	CreateOrderFromPlan(ctx context.Context, order purchasing.OrderRequest) (*purchasing.Order, error)
	ConfirmOrderReceipt(ctx context.Context, orderID int) (*purchasing.Order, error)
	RejectOrderReceipt(ctx context.Context, orderID int, reject purchasing.RejectRequest) (*purchasing.Order, error)

	Children(ctx context.Context) ([]edumeal.Student, error)
	HealthRecords(ctx context.Context, studentID int) ([]health.Measurement, error)
}

var _ Backend = (*edumeal.Client)(nil)
