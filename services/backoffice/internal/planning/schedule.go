package planning

import (
	"errors"

	"github.com/edumeal/backoffice/pkg/enums/mealtype"
)

var ErrEmptySchedule = errors.New("no dishes assigned to any day")

// DailyMeal is one day's meal as sent to the schedule endpoint.
type DailyMeal struct {
	MealDate string `json:"mealDate"`
	MealType string `json:"mealType"`
	FoodIDs  []int  `json:"foodIds"`
}

// ScheduleRequest creates a weekly schedule.
type ScheduleRequest struct {
	WeekStart  string      `json:"weekStart"`
	WeekEnd    string      `json:"weekEnd"`
	DailyMeals []DailyMeal `json:"dailyMeals"`
}

// Flatten walks the five weekdays and every meal type, skipping off days,
// and emits one DailyMeal per populated cell.
func (g *Grid) Flatten() []DailyMeal {
	var meals []DailyMeal
	for _, day := range Weekdays {
		if g.IsOffDay(day) {
			continue
		}
		for _, mt := range mealtype.All {
			dishes := g.cells[CellKey{Day: day, MealType: mt.Code()}]
			if len(dishes) == 0 {
				continue
			}

			ids := make([]int, 0, len(dishes))
			for _, d := range dishes {
				ids = append(ids, d.FoodID)
			}
			meals = append(meals, DailyMeal{
				MealDate: g.week.DateOf(day),
				MealType: mt.Code(),
				FoodIDs:  ids,
			})
		}
	}
	return meals
}

// BuildScheduleRequest validates the grid and produces the create-schedule
// payload. Nothing is sent when it fails.
func BuildScheduleRequest(g *Grid) (ScheduleRequest, error) {
	if err := g.week.Validate(); err != nil {
		return ScheduleRequest{}, err
	}

	meals := g.Flatten()
	if len(meals) == 0 {
		return ScheduleRequest{}, ErrEmptySchedule
	}

	return ScheduleRequest{
		WeekStart:  g.week.StartDate(),
		WeekEnd:    g.week.EndDate(),
		DailyMeals: meals,
	}, nil
}
