package event

import "time"

const (
	PlanningWorkflowTopic = "planning.workflow"

	EventScheduleCreated       = "schedule.created"
	EventPurchasePlanDerived   = "purchase_plan.derived"
	EventPurchasePlanUpdated   = "purchase_plan.updated"
	EventPurchasePlanDeleted   = "purchase_plan.deleted"
	EventPurchaseOrderCreated  = "purchase_order.created"
	EventPurchaseOrderReceived = "purchase_order.received"
	EventPurchaseOrderRejected = "purchase_order.rejected"
)

// WorkflowEventMetadata is shared by every planning workflow event.
type WorkflowEventMetadata struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name,omitempty"`
}

type ScheduleCreatedEvent struct {
	WorkflowEventMetadata
	ScheduleMealID int    `json:"schedule_meal_id"`
	WeekStart      string `json:"week_start"`
	WeekEnd        string `json:"week_end"`
	MealCount      int    `json:"meal_count"`
}

type PurchasePlanEvent struct {
	WorkflowEventMetadata
	PlanID         int    `json:"plan_id"`
	ScheduleMealID int    `json:"schedule_meal_id,omitempty"`
	Status         string `json:"status"`
	LineCount      int    `json:"line_count"`
	EstimatedTotal string `json:"estimated_total,omitempty"`
}

type PurchaseOrderEvent struct {
	WorkflowEventMetadata
	OrderID      int    `json:"order_id"`
	PlanID       int    `json:"plan_id,omitempty"`
	SupplierName string `json:"supplier_name,omitempty"`
	Status       string `json:"status,omitempty"`
	Reason       string `json:"reason,omitempty"`
}
