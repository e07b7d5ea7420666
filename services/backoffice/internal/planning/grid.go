package planning

import (
	"errors"
	"fmt"
	"sort"

	"github.com/edumeal/backoffice/pkg/enums/mealtype"
)

var (
	ErrOffDay          = errors.New("day is an off day")
	ErrDuplicateDish   = errors.New("dish already in this meal")
	ErrInvalidDay      = errors.New("day must be between Monday (1) and Friday (5)")
	ErrInvalidMealType = errors.New("unknown meal type")
	ErrInvalidDish     = errors.New("dish has no food id")
)

// Dish is a read-only reference to a backend food item.
type Dish struct {
	FoodID   int    `json:"foodId"`
	FoodName string `json:"foodName"`
	ImageURL string `json:"imageUrl,omitempty"`
	FoodType string `json:"foodType,omitempty"`
}

// CellKey addresses one cell of the weekly grid.
type CellKey struct {
	Day      Day
	MealType string
}

func (k CellKey) String() string {
	return fmt.Sprintf("%d_%s", int(k.Day), k.MealType)
}

// Cell is a populated grid cell as exposed to callers.
type Cell struct {
	Day      Day    `json:"dayOfWeek"`
	Date     string `json:"date"`
	MealType string `json:"mealType"`
	Dishes   []Dish `json:"dishes"`
}

// Template is a reusable weekly menu. Cells may name any day and meal type;
// invalid ones are ignored when applied.
type Template struct {
	ID    int    `json:"menuId"`
	Name  string `json:"menuName"`
	Cells []Cell `json:"cells"`
}

// Grid is a sparse day × meal type mapping of selected dishes. An absent key
// means an empty cell. Cells for off days are always empty.
type Grid struct {
	week    WeekWindow
	offDays OffDaySet
	cells   map[CellKey][]Dish
}

func NewGrid(week WeekWindow) *Grid {
	return &Grid{
		week:  week,
		cells: make(map[CellKey][]Dish),
	}
}

func (g *Grid) Week() WeekWindow {
	return g.week
}

// SetWeek moves the grid to another week. Cells and off days belong to a
// specific week, so both are dropped.
func (g *Grid) SetWeek(week WeekWindow) {
	g.week = week
	g.offDays = OffDaySet{}
	g.cells = make(map[CellKey][]Dish)
}

func (g *Grid) OffDays() OffDaySet {
	return g.offDays
}

// SetOffDays installs a freshly resolved off-day set and empties every cell
// whose day became an off day.
func (g *Grid) SetOffDays(set OffDaySet) {
	g.offDays = set.Within(g.week)
	for key := range g.cells {
		if g.IsOffDay(key.Day) {
			delete(g.cells, key)
		}
	}
}

func (g *Grid) IsOffDay(d Day) bool {
	if g.offDays.Len() == 0 || g.week.IsZero() {
		return false
	}
	return g.offDays.Contains(g.week.DateOf(d))
}

// AddDish appends dish to the cell. Off days, duplicates and unknown keys
// are rejected and leave the grid untouched.
func (g *Grid) AddDish(dish Dish, day Day, mealType string) error {
	key, err := g.key(day, mealType)
	if err != nil {
		return err
	}
	if dish.FoodID <= 0 {
		return ErrInvalidDish
	}
	if g.IsOffDay(day) {
		return fmt.Errorf("%s (%s): %w", day, g.week.DateOf(day), ErrOffDay)
	}

	for _, existing := range g.cells[key] {
		if existing.FoodID == dish.FoodID {
			return fmt.Errorf("%s in %s: %w", dish.FoodName, key, ErrDuplicateDish)
		}
	}

	g.cells[key] = append(g.cells[key], dish)
	return nil
}

// RemoveDish drops foodID from the cell. Removing an absent dish is a no-op.
func (g *Grid) RemoveDish(day Day, mealType string, foodID int) {
	key, err := g.key(day, mealType)
	if err != nil {
		return
	}

	dishes, ok := g.cells[key]
	if !ok {
		return
	}

	kept := dishes[:0:0]
	for _, d := range dishes {
		if d.FoodID != foodID {
			kept = append(kept, d)
		}
	}

	if len(kept) == 0 {
		delete(g.cells, key)
		return
	}
	g.cells[key] = kept
}

// ApplyTemplate replaces every cell the template names, skipping off days and
// invalid keys. It returns the number of cells written.
func (g *Grid) ApplyTemplate(t Template) int {
	return g.replaceCells(t.Cells)
}

// Suggestion is one cell proposed by the menu recommendation service.
type Suggestion struct {
	Day      Day    `json:"dayOfWeek"`
	MealType string `json:"mealType"`
	Dishes   []Dish `json:"dishes"`
}

// ApplySuggestions imports recommended cells with the same replacement rules
// as templates.
func (g *Grid) ApplySuggestions(suggestions []Suggestion) int {
	cells := make([]Cell, 0, len(suggestions))
	for _, s := range suggestions {
		cells = append(cells, Cell{Day: s.Day, MealType: s.MealType, Dishes: s.Dishes})
	}
	return g.replaceCells(cells)
}

func (g *Grid) replaceCells(cells []Cell) int {
	written := 0
	for _, c := range cells {
		key, err := g.key(c.Day, c.MealType)
		if err != nil || g.IsOffDay(c.Day) {
			continue
		}

		dishes := uniqueDishes(c.Dishes)
		if len(dishes) == 0 {
			delete(g.cells, key)
		} else {
			g.cells[key] = dishes
		}
		written++
	}
	return written
}

// Dishes returns a copy of the cell's dishes.
func (g *Grid) Dishes(day Day, mealType string) []Dish {
	key, err := g.key(day, mealType)
	if err != nil {
		return nil
	}
	dishes, ok := g.cells[key]
	if !ok {
		return nil
	}
	return append([]Dish(nil), dishes...)
}

// HasCell reports whether the key is present in the sparse mapping.
func (g *Grid) HasCell(day Day, mealType string) bool {
	key, err := g.key(day, mealType)
	if err != nil {
		return false
	}
	_, ok := g.cells[key]
	return ok
}

// Cells returns the populated cells ordered by day then meal type.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, 0, len(g.cells))
	for key, dishes := range g.cells {
		out = append(out, Cell{
			Day:      key.Day,
			Date:     g.week.DateOf(key.Day),
			MealType: key.MealType,
			Dishes:   append([]Dish(nil), dishes...),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return mealOrder(out[i].MealType) < mealOrder(out[j].MealType)
	})
	return out
}

func (g *Grid) IsEmpty() bool {
	return len(g.cells) == 0
}

// Clear empties every cell but keeps the week and its off days.
func (g *Grid) Clear() {
	g.cells = make(map[CellKey][]Dish)
}

func (g *Grid) key(day Day, mealType string) (CellKey, error) {
	if !day.Valid() {
		return CellKey{}, ErrInvalidDay
	}
	mt := mealtype.ByName(mealType)
	if mt == nil {
		return CellKey{}, fmt.Errorf("%q: %w", mealType, ErrInvalidMealType)
	}
	return CellKey{Day: day, MealType: mt.Code()}, nil
}

func mealOrder(mealType string) int {
	for i, m := range mealtype.All {
		if m.Code() == mealType {
			return i
		}
	}
	return len(mealtype.All)
}

func uniqueDishes(dishes []Dish) []Dish {
	seen := make(map[int]struct{}, len(dishes))
	out := make([]Dish, 0, len(dishes))
	for _, d := range dishes {
		if d.FoodID <= 0 {
			continue
		}
		if _, dup := seen[d.FoodID]; dup {
			continue
		}
		seen[d.FoodID] = struct{}{}
		out = append(out, d)
	}
	return out
}
