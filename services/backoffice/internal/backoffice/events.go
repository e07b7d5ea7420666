package backoffice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/edumeal/backoffice/pkg/event"
	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
	"github.com/edumeal/backoffice/services/backoffice/internal/purchasing"
	"github.com/google/uuid"
)

// WorkflowNotifier publishes planning workflow events. Publishing never
// fails the action that triggered it.
type WorkflowNotifier struct {
	publisher events.Publisher
	logger    aqm.Logger
}

func NewWorkflowNotifier(publisher events.Publisher, logger aqm.Logger) *WorkflowNotifier {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &WorkflowNotifier{publisher: publisher, logger: logger}
}

func (n *WorkflowNotifier) ScheduleCreated(ctx context.Context, id int, req planning.ScheduleRequest) {
	n.publish(ctx, event.ScheduleCreatedEvent{
		WorkflowEventMetadata: metadata(ctx, event.EventScheduleCreated),
		ScheduleMealID:        id,
		WeekStart:             req.WeekStart,
		WeekEnd:               req.WeekEnd,
		MealCount:             len(req.DailyMeals),
	})
}

func (n *WorkflowNotifier) PlanChanged(ctx context.Context, eventType string, plan *purchasing.Plan) {
	if plan == nil {
		return
	}
	n.publish(ctx, event.PurchasePlanEvent{
		WorkflowEventMetadata: metadata(ctx, eventType),
		PlanID:                plan.ID,
		ScheduleMealID:        plan.ScheduleMealID,
		Status:                plan.Status,
		LineCount:             len(plan.Lines),
		EstimatedTotal:        plan.Totals().Estimated.String(),
	})
}

func (n *WorkflowNotifier) PlanDeleted(ctx context.Context, planID int) {
	n.publish(ctx, event.PurchasePlanEvent{
		WorkflowEventMetadata: metadata(ctx, event.EventPurchasePlanDeleted),
		PlanID:                planID,
	})
}

func (n *WorkflowNotifier) OrderChanged(ctx context.Context, eventType string, order *purchasing.Order, reason string) {
	if order == nil {
		return
	}
	n.publish(ctx, event.PurchaseOrderEvent{
		WorkflowEventMetadata: metadata(ctx, eventType),
		OrderID:               order.ID,
		PlanID:                order.PlanID,
		SupplierName:          order.SupplierName,
		Status:                order.Status,
		Reason:                reason,
	})
}

func (n *WorkflowNotifier) publish(ctx context.Context, evt interface{}) {
	payload, err := json.Marshal(evt)
	if err != nil {
		n.logger.Error("cannot encode workflow event", "error", err)
		return
	}

	if err := n.publisher.Publish(ctx, event.PlanningWorkflowTopic, payload); err != nil {
		n.logger.Error("cannot publish workflow event",
			"request_id", aqm.RequestIDFrom(ctx),
			"topic", event.PlanningWorkflowTopic,
			"error", err,
		)
	}
}

func metadata(ctx context.Context, eventType string) event.WorkflowEventMetadata {
	md := event.WorkflowEventMetadata{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
	}
	if s := sessionFrom(ctx); s != nil {
		md.ActorID = s.UserID
		md.ActorName = s.Name
	}
	return md
}

// NoopPublisher drops events; used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	return nil
}
