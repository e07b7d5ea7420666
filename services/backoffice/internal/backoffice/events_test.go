package backoffice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/edumeal/backoffice/pkg/event"
	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
	"github.com/edumeal/backoffice/services/backoffice/internal/purchasing"
)

func TestWorkflowNotifierScheduleCreated(t *testing.T) {
	pub := &MockPublisher{}
	n := NewWorkflowNotifier(pub, nil)
	ctx := withSession(context.Background(), &Session{ID: "s", UserID: "u-1", Name: "Quản lý"})

	n.ScheduleCreated(ctx, 42, planning.ScheduleRequest{
		WeekStart:  "2024-01-01",
		WeekEnd:    "2024-01-05",
		DailyMeals: []planning.DailyMeal{{MealDate: "2024-01-03", MealType: "Lunch", FoodIDs: []int{1}}},
	})

	if len(pub.PublishedEvents) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.PublishedEvents))
	}
	if pub.PublishedEvents[0].Topic != event.PlanningWorkflowTopic {
		t.Errorf("topic = %s", pub.PublishedEvents[0].Topic)
	}

	var evt event.ScheduleCreatedEvent
	if err := json.Unmarshal(pub.PublishedEvents[0].Data, &evt); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if evt.EventType != event.EventScheduleCreated || evt.ScheduleMealID != 42 || evt.MealCount != 1 {
		t.Errorf("event = %+v", evt)
	}
	if evt.ActorID != "u-1" || evt.EventID == "" {
		t.Errorf("metadata = %+v", evt.WorkflowEventMetadata)
	}
}

func TestWorkflowNotifierPublishFailureIsNotFatal(t *testing.T) {
	pub := &MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, data []byte) error {
			return errors.New("nats: connection closed")
		},
	}
	n := NewWorkflowNotifier(pub, nil)

	n.PlanChanged(context.Background(), event.EventPurchasePlanUpdated, &purchasing.Plan{ID: 1, Status: "Draft"})
	n.PlanChanged(context.Background(), event.EventPurchasePlanUpdated, nil)
	n.OrderChanged(context.Background(), event.EventPurchaseOrderRejected, nil, "")

	if len(pub.PublishedEvents) != 0 {
		t.Errorf("recorded %d events, want 0", len(pub.PublishedEvents))
	}
}

func TestNewWorkflowNotifierDefaultsToNoop(t *testing.T) {
	n := NewWorkflowNotifier(nil, nil)
	if _, ok := n.publisher.(NoopPublisher); !ok {
		t.Errorf("publisher = %T, want NoopPublisher", n.publisher)
	}
	n.PlanDeleted(context.Background(), 3)
}
