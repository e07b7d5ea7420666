package planning

import (
	"reflect"
	"testing"
)

func TestNewOffDaySetNormalizes(t *testing.T) {
	set := NewOffDaySet("2024-01-03 00:00:00", "2024-01-03T00:00:00Z", "2024-01-04", "bogus", "")

	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2", set.Len())
	}
	want := []string{"2024-01-03", "2024-01-04"}
	if got := set.Dates(); !reflect.DeepEqual(got, want) {
		t.Errorf("Dates() = %v, want %v", got, want)
	}
}

func TestOffDaySetWithin(t *testing.T) {
	week, err := ParseWeekWindow("2024-01-01")
	if err != nil {
		t.Fatalf("ParseWeekWindow() error = %v", err)
	}

	set := NewOffDaySet("2023-12-31", "2024-01-01", "2024-01-07", "2024-01-08").Within(week)

	want := []string{"2024-01-01", "2024-01-07"}
	if got := set.Dates(); !reflect.DeepEqual(got, want) {
		t.Errorf("Dates() = %v, want %v", got, want)
	}
}

func TestOffDaySetZeroValue(t *testing.T) {
	var set OffDaySet

	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
	if set.Contains("2024-01-01") {
		t.Error("zero set contains 2024-01-01")
	}
	if len(set.Dates()) != 0 {
		t.Errorf("Dates() = %v, want empty", set.Dates())
	}
}
