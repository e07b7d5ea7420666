package planning

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
)

// OffDaySource looks up the off days of a week.
type OffDaySource interface {
	CheckOffDates(ctx context.Context, week WeekWindow) (OffDaySet, error)
}

// OffDayResolver refreshes a grid's off days from the backend.
type OffDayResolver struct {
	source OffDaySource
	logger aqm.Logger
}

func NewOffDayResolver(source OffDaySource, logger aqm.Logger) *OffDayResolver {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OffDayResolver{source: source, logger: logger}
}

// Resolve fetches the off days for the grid's week and installs them. On
// failure the grid keeps its previous off days and cells stay editable; the
// error is returned so the caller can flag the set as stale.
func (r *OffDayResolver) Resolve(ctx context.Context, g *Grid) error {
	week := g.Week()
	if week.IsZero() {
		return nil
	}
	if r == nil || r.source == nil {
		return fmt.Errorf("off-day source not configured")
	}

	set, err := r.source.CheckOffDates(ctx, week)
	if err != nil {
		r.logger.Error("cannot resolve off days, keeping previous set",
			"week_start", week.StartDate(),
			"previous", g.OffDays().Dates(),
			"error", err,
		)
		return fmt.Errorf("resolve off days for %s: %w", week.StartDate(), err)
	}

	// The week may have moved while the request was in flight.
	if !g.Week().Start().Equal(week.Start()) {
		return nil
	}

	g.SetOffDays(set)
	r.logger.Debug("off days resolved", "week_start", week.StartDate(), "dates", set.Dates())
	return nil
}
