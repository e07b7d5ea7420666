package mealtype

import "strings"

type MealType struct {
	Name string
}

func (m MealType) Code() string {
	return m.Name
}

func (m MealType) Label() string {
	switch m.Name {
	case Meals.Lunch.Name:
		return "Bữa trưa"
	case Meals.Snack.Name:
		return "Bữa xế"
	}
	return m.Name
}

type Enum struct {
	Lunch MealType
	Snack MealType
}

var Meals = Enum{
	Lunch: MealType{Name: "Lunch"},
	Snack: MealType{Name: "Snack"},
}

// All lists meal types in the order they appear in a day.
var All = []MealType{
	Meals.Lunch,
	Meals.Snack,
}

// ByName returns the meal type for a given name, or nil if not found.
// Matching ignores case since the backend is not consistent about it.
func ByName(name string) *MealType {
	for _, m := range All {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return &m
		}
	}
	return nil
}
