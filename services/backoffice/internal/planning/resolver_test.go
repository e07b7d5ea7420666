package planning

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeOffDaySource struct {
	CheckFunc func(ctx context.Context, week WeekWindow) (OffDaySet, error)
	Calls     int
}

func (f *fakeOffDaySource) CheckOffDates(ctx context.Context, week WeekWindow) (OffDaySet, error) {
	f.Calls++
	if f.CheckFunc != nil {
		return f.CheckFunc(ctx, week)
	}
	return OffDaySet{}, nil
}

func TestOffDayResolverInstallsSet(t *testing.T) {
	source := &fakeOffDaySource{
		CheckFunc: func(ctx context.Context, week WeekWindow) (OffDaySet, error) {
			if week.StartDate() != "2024-01-01" {
				t.Errorf("week start = %s, want 2024-01-01", week.StartDate())
			}
			return NewOffDaySet("2024-01-03", "2024-02-01"), nil
		},
	}
	g := newTestGrid(t, "2024-01-01")
	if err := g.AddDish(Dish{FoodID: 1}, Wednesday, "Lunch"); err != nil {
		t.Fatalf("AddDish() error = %v", err)
	}

	if err := NewOffDayResolver(source, nil).Resolve(context.Background(), g); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if got, want := g.OffDays().Dates(), []string{"2024-01-03"}; !reflect.DeepEqual(got, want) {
		t.Errorf("off days = %v, want %v", got, want)
	}
	if !g.IsOffDay(Wednesday) {
		t.Error("Wednesday not marked off")
	}
	if g.HasCell(Wednesday, "Lunch") {
		t.Error("cell on the new off day was kept")
	}
	if err := g.AddDish(Dish{FoodID: 10}, Wednesday, "Lunch"); !errors.Is(err, ErrOffDay) {
		t.Errorf("AddDish() on off day error = %v, want ErrOffDay", err)
	}
}

func TestOffDayResolverFailsOpen(t *testing.T) {
	source := &fakeOffDaySource{
		CheckFunc: func(ctx context.Context, week WeekWindow) (OffDaySet, error) {
			return OffDaySet{}, errors.New("connection refused")
		},
	}
	g := newTestGrid(t, "2024-01-01", "2024-01-02")

	err := NewOffDayResolver(source, nil).Resolve(context.Background(), g)

	if err == nil {
		t.Fatal("Resolve() error = nil, want lookup failure")
	}
	if !strings.Contains(err.Error(), "2024-01-01") {
		t.Errorf("error %q does not name the week", err.Error())
	}
	if got, want := g.OffDays().Dates(), []string{"2024-01-02"}; !reflect.DeepEqual(got, want) {
		t.Errorf("off days = %v, want previous set %v", got, want)
	}
	if err := g.AddDish(Dish{FoodID: 1}, Thursday, "Lunch"); err != nil {
		t.Errorf("AddDish() after failed lookup error = %v", err)
	}
}

func TestOffDayResolverSkipsZeroWeek(t *testing.T) {
	source := &fakeOffDaySource{}
	g := NewGrid(WeekWindow{})

	if err := NewOffDayResolver(source, nil).Resolve(context.Background(), g); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if source.Calls != 0 {
		t.Errorf("source called %d times, want 0", source.Calls)
	}
}

func TestOffDayResolverWithoutSource(t *testing.T) {
	g := newTestGrid(t, "2024-01-01")

	if err := NewOffDayResolver(nil, nil).Resolve(context.Background(), g); err == nil {
		t.Error("Resolve() without source error = nil")
	}
}
