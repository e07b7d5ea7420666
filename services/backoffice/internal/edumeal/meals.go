package edumeal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
)

// CheckOffDates implements planning.OffDaySource.
func (c *Client) CheckOffDates(ctx context.Context, week planning.WeekWindow) (planning.OffDaySet, error) {
	req := request{
		method: http.MethodGet,
		path:   "/meal/ScheduleMeals/check-off-dates",
		query: url.Values{
			"weekStart": {week.StartDate()},
			"weekEnd":   {week.EndDate()},
		},
	}

	var raw json.RawMessage
	if err := c.call(ctx, req, &raw); err != nil {
		return planning.OffDaySet{}, err
	}

	dates, err := offDateStrings(raw)
	if err != nil {
		return planning.OffDaySet{}, fmt.Errorf("decode off dates: %w", err)
	}
	return planning.NewOffDaySet(dates...).Within(week), nil
}

// FoodQuery filters the food catalogue.
type FoodQuery struct {
	MainDish        *bool
	Keyword         string
	IncludeInactive bool
}

func (c *Client) FoodItems(ctx context.Context, q FoodQuery) ([]planning.Dish, error) {
	query := url.Values{"includeInactive": {strconv.FormatBool(q.IncludeInactive)}}
	if q.MainDish != nil {
		query.Set("isMainDish", strconv.FormatBool(*q.MainDish))
	}
	if q.Keyword != "" {
		query.Set("keyword", q.Keyword)
	}

	var dtos []foodItemDTO
	req := request{method: http.MethodGet, path: "/nutrition/FoodItems/by-main-dish", query: query}
	if err := c.call(ctx, req, &dtos); err != nil {
		return nil, err
	}
	return dishes(dtos), nil
}

func (c *Client) Templates(ctx context.Context) ([]TemplateSummary, error) {
	var dtos []menuDTO
	if err := c.call(ctx, request{method: http.MethodGet, path: "/Menus"}, &dtos); err != nil {
		return nil, err
	}

	out := make([]TemplateSummary, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.summary())
	}
	return out, nil
}

func (c *Client) Template(ctx context.Context, menuID int) (planning.Template, error) {
	var dto menuDTO
	path := fmt.Sprintf("/Menus/%d", menuID)
	if err := c.call(ctx, request{method: http.MethodGet, path: path}, &dto); err != nil {
		return planning.Template{}, err
	}

	tmpl := dto.template()
	if tmpl.ID == 0 {
		tmpl.ID = menuID
	}
	return tmpl, nil
}

// CreateSchedule posts a flattened week and returns the new schedule id.
func (c *Client) CreateSchedule(ctx context.Context, schedule planning.ScheduleRequest) (int, error) {
	req, err := jsonRequest(http.MethodPost, "/meal/ScheduleMeals", schedule)
	if err != nil {
		return 0, err
	}

	var dto scheduleCreatedDTO
	if err := c.call(ctx, req, &dto); err != nil {
		return 0, err
	}

	id := firstInt(dto.ScheduleMealID, dto.ID)
	if id == 0 {
		return 0, errors.New("create schedule: response carries no scheduleMealId")
	}
	return id, nil
}

// ScheduleByWeek returns nil without error when the week has no schedule.
func (c *Client) ScheduleByWeek(ctx context.Context, week planning.WeekWindow) (*Schedule, error) {
	req := request{
		method: http.MethodGet,
		path:   "/meal/ScheduleMeals/by-week",
		query:  url.Values{"weekStart": {week.StartDate()}},
	}

	var dto scheduleDTO
	if err := c.call(ctx, req, &dto); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dto.schedule(), nil
}
