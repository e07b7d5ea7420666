package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/edumeal/backoffice/pkg"
	"github.com/edumeal/backoffice/pkg/event"
)

const (
	defaultNATSURL   = "nats://localhost:4222"
	replayConsumer   = "utils-replay"
	planningStream   = "PLANNING_EVENTS"
	defaultEventPage = 100
)

// workflowHeader is the part every workflow event shares.
type workflowHeader struct {
	event.WorkflowEventMetadata
}

// ReplayEvents prints up to limit stored workflow events, one line each.
// Events are acknowledged, so the durable consumer resumes after them.
func ReplayEvents(ctx context.Context, config *aqm.Config, logger aqm.Logger, out io.Writer, limit int) (int, error) {
	natsURL, _ := config.GetString("nats.url")
	if natsURL == "" {
		natsURL = defaultNATSURL
	}
	if limit <= 0 {
		limit = defaultEventPage
	}

	stream, err := pkg.NewNATSStream(pkg.NATSStreamConfig{
		URL:          natsURL,
		StreamName:   planningStream,
		Topic:        event.PlanningWorkflowTopic,
		ConsumerName: replayConsumer,
		MaxAge:       7 * 24 * time.Hour,
	})
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	msgs, err := stream.Fetch(ctx, limit)
	if err != nil {
		return 0, err
	}

	return printEvents(out, msgs, logger), nil
}

// printEvents writes one line per decodable event and returns how many it wrote.
func printEvents(out io.Writer, msgs []events.StreamMessage, logger aqm.Logger) int {
	printed := 0
	for _, m := range msgs {
		var h workflowHeader
		if err := json.Unmarshal(m.Data, &h); err != nil {
			logger.Info("skipping undecodable event", "sequence", m.Sequence, "error", err)
			continue
		}
		fmt.Fprintf(out, "%6d  %s  %-26s  %-12s  %s\n",
			m.Sequence,
			time.Unix(0, m.Timestamp).UTC().Format(time.RFC3339),
			h.EventType,
			h.ActorID,
			string(m.Data),
		)
		printed++
	}
	return printed
}
