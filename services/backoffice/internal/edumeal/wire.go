package edumeal

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/edumeal/backoffice/pkg/enums/mealtype"
	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
	"github.com/edumeal/backoffice/services/backoffice/internal/purchasing"
	"github.com/shopspring/decimal"
)

// Wire types mirror the backend DTOs. encoding/json matches keys without
// regard to case, so camelCase and PascalCase payloads land in the same field.

type foodItemDTO struct {
	ID         int    `json:"id"`
	FoodID     int    `json:"foodId"`
	FoodName   string `json:"foodName"`
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl"`
	FoodType   string `json:"foodType"`
	IsMainDish bool   `json:"isMainDish"`
	IsActive   *bool  `json:"isActive"`
}

func (d foodItemDTO) dish() planning.Dish {
	return planning.Dish{
		FoodID:   firstInt(d.FoodID, d.ID),
		FoodName: firstString(d.FoodName, d.Name),
		ImageURL: d.ImageURL,
		FoodType: d.FoodType,
	}
}

func dishes(dtos []foodItemDTO) []planning.Dish {
	out := make([]planning.Dish, 0, len(dtos))
	for _, d := range dtos {
		if dish := d.dish(); dish.FoodID > 0 {
			out = append(out, dish)
		}
	}
	return out
}

type menuDTO struct {
	MenuID      int            `json:"menuId"`
	ID          int            `json:"id"`
	MenuName    string         `json:"menuName"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	MenuDays    []menuEntryDTO `json:"menuDays"`
	Items       []menuEntryDTO `json:"items"`
}

type menuEntryDTO struct {
	DayOfWeek int           `json:"dayOfWeek"`
	MealType  string        `json:"mealType"`
	FoodItems []foodItemDTO `json:"foodItems"`
	Foods     []foodItemDTO `json:"foods"`
}

// TemplateSummary is a menu template as listed, without its cells.
type TemplateSummary struct {
	ID          int    `json:"menuId"`
	Name        string `json:"menuName"`
	Description string `json:"description,omitempty"`
}

func (d menuDTO) summary() TemplateSummary {
	return TemplateSummary{
		ID:          firstInt(d.MenuID, d.ID),
		Name:        firstString(d.MenuName, d.Name),
		Description: d.Description,
	}
}

// template groups entries by cell. Entries repeating a cell are merged, with
// meal types matched regardless of case.
func (d menuDTO) template() planning.Template {
	entries := append(append([]menuEntryDTO(nil), d.MenuDays...), d.Items...)

	index := make(map[planning.CellKey]int)
	var cells []planning.Cell
	for _, e := range entries {
		key := planning.CellKey{Day: planning.Day(e.DayOfWeek), MealType: canonicalMealType(e.MealType)}
		foods := dishes(append(append([]foodItemDTO(nil), e.FoodItems...), e.Foods...))

		if i, ok := index[key]; ok {
			cells[i].Dishes = append(cells[i].Dishes, foods...)
			continue
		}
		index[key] = len(cells)
		cells = append(cells, planning.Cell{Day: key.Day, MealType: key.MealType, Dishes: foods})
	}

	s := d.summary()
	return planning.Template{ID: s.ID, Name: s.Name, Cells: cells}
}

func canonicalMealType(name string) string {
	if m := mealtype.ByName(name); m != nil {
		return m.Name
	}
	return strings.TrimSpace(name)
}

type offDatesDTO struct {
	OffDates []json.RawMessage `json:"offDates"`
}

// offDateStrings accepts a bare array or an {offDates: [...]} object whose
// entries are strings or {date: ...} objects.
func offDateStrings(body []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var entries []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
	} else {
		var dto offDatesDTO
		if err := json.Unmarshal(trimmed, &dto); err != nil {
			return nil, err
		}
		entries = dto.OffDates
	}

	out := make([]string, 0, len(entries))
	for _, raw := range entries {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out = append(out, s)
			continue
		}

		var obj struct {
			Date    string `json:"date"`
			OffDate string `json:"offDate"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil {
			if d := firstString(obj.Date, obj.OffDate); d != "" {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

type scheduleCreatedDTO struct {
	ScheduleMealID int `json:"scheduleMealId"`
	ID             int `json:"id"`
}

type scheduleDTO struct {
	ScheduleMealID int                `json:"scheduleMealId"`
	WeekStart      string             `json:"weekStart"`
	WeekEnd        string             `json:"weekEnd"`
	Status         string             `json:"status"`
	DailyMeals     []scheduledMealDTO `json:"dailyMeals"`
}

type scheduledMealDTO struct {
	MealDate  string        `json:"mealDate"`
	MealType  string        `json:"mealType"`
	FoodItems []foodItemDTO `json:"foodItems"`
	Foods     []foodItemDTO `json:"foods"`
}

// Schedule is a weekly schedule as stored by the backend.
type Schedule struct {
	ID         int             `json:"scheduleMealId"`
	WeekStart  string          `json:"weekStart"`
	WeekEnd    string          `json:"weekEnd"`
	Status     string          `json:"status,omitempty"`
	DailyMeals []ScheduledMeal `json:"dailyMeals"`
}

type ScheduledMeal struct {
	MealDate string          `json:"mealDate"`
	MealType string          `json:"mealType"`
	Dishes   []planning.Dish `json:"dishes"`
}

func (d scheduleDTO) schedule() *Schedule {
	s := &Schedule{
		ID:        d.ScheduleMealID,
		WeekStart: normalizeDate(d.WeekStart),
		WeekEnd:   normalizeDate(d.WeekEnd),
		Status:    d.Status,
	}
	for _, m := range d.DailyMeals {
		s.DailyMeals = append(s.DailyMeals, ScheduledMeal{
			MealDate: normalizeDate(m.MealDate),
			MealType: m.MealType,
			Dishes:   dishes(append(append([]foodItemDTO(nil), m.FoodItems...), m.Foods...)),
		})
	}
	return s
}

type planDTO struct {
	PlanID         int           `json:"planId"`
	ID             int           `json:"id"`
	ScheduleMealID int           `json:"scheduleMealId"`
	PlanStatus     string        `json:"planStatus"`
	Status         string        `json:"status"`
	GeneratedAt    string        `json:"generatedAt"`
	Lines          []planLineDTO `json:"lines"`
	PlanLines      []planLineDTO `json:"planLines"`
}

type planLineDTO struct {
	LineID            int              `json:"lineId"`
	IngredientID      int              `json:"ingredientId"`
	IngredientName    string           `json:"ingredientName"`
	Unit              string           `json:"unit"`
	RequestedQuantity decimal.Decimal  `json:"requestedQuantity"`
	RqQuanityGram     decimal.Decimal  `json:"rqQuanityGram"`
	EstimatedPrice    decimal.Decimal  `json:"estimatedPrice"`
	ActualPrice       *decimal.Decimal `json:"actualPrice"`
	Supplier          string           `json:"supplier"`
	BatchNo           string           `json:"batchNo"`
	Origin            string           `json:"origin"`
}

func (d planDTO) plan() *purchasing.Plan {
	p := &purchasing.Plan{
		ID:             firstInt(d.PlanID, d.ID),
		ScheduleMealID: d.ScheduleMealID,
		Status:         firstString(d.PlanStatus, d.Status),
		GeneratedAt:    parseTime(d.GeneratedAt),
	}

	for _, l := range append(append([]planLineDTO(nil), d.Lines...), d.PlanLines...) {
		qty := l.RequestedQuantity
		if qty.IsZero() {
			qty = l.RqQuanityGram
		}
		p.Lines = append(p.Lines, purchasing.Line{
			LineID:         l.LineID,
			IngredientID:   l.IngredientID,
			IngredientName: l.IngredientName,
			Unit:           l.Unit,
			Quantity:       qty,
			EstimatedPrice: l.EstimatedPrice,
			ActualPrice:    l.ActualPrice,
			Supplier:       l.Supplier,
			BatchNo:        l.BatchNo,
			Origin:         l.Origin,
		})
	}
	return p
}

type orderDTO struct {
	OrderID             int    `json:"orderId"`
	ID                  int    `json:"id"`
	PlanID              int    `json:"planId"`
	SupplierName        string `json:"supplierName"`
	Note                string `json:"note"`
	PurchaseOrderStatus string `json:"purchaseOrderStatus"`
	Status              string `json:"status"`
	OrderDate           string `json:"orderDate"`
}

func (d orderDTO) order() *purchasing.Order {
	return &purchasing.Order{
		ID:           firstInt(d.OrderID, d.ID),
		PlanID:       d.PlanID,
		SupplierName: d.SupplierName,
		Note:         d.Note,
		Status:       firstString(d.PurchaseOrderStatus, d.Status),
		OrderDate:    parseTime(d.OrderDate),
	}
}

type tokensDTO struct {
	AccessToken  string `json:"accessToken"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (d tokensDTO) tokens() Tokens {
	return Tokens{AccessToken: firstString(d.AccessToken, d.Token), RefreshToken: d.RefreshToken}
}

// Student is a child linked to the signed-in parent.
type Student struct {
	ID          int    `json:"studentId"`
	FullName    string `json:"fullName"`
	ClassName   string `json:"className,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

type studentDTO struct {
	StudentID   int    `json:"studentId"`
	ID          int    `json:"id"`
	FullName    string `json:"fullName"`
	ClassName   string `json:"className"`
	DateOfBirth string `json:"dateOfBirth"`
}

func (d studentDTO) student() Student {
	return Student{
		ID:          firstInt(d.StudentID, d.ID),
		FullName:    d.FullName,
		ClassName:   d.ClassName,
		DateOfBirth: normalizeDate(d.DateOfBirth),
	}
}

type healthRecordDTO struct {
	RecordAt   string  `json:"recordAt"`
	RecordDate string  `json:"recordDate"`
	HeightCm   float64 `json:"heightCm"`
	WeightKg   float64 `json:"weightKg"`
}

func firstInt(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func normalizeDate(raw string) string {
	if d, ok := planning.NormalizeDate(raw); ok {
		return d
	}
	return raw
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	planning.DateLayout,
}

// parseTime reads the timestamp shapes the backend emits; unknown shapes give
// the zero time.
func parseTime(raw string) time.Time {
	s := strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
