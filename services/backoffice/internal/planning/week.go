package planning

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and display format of calendar dates.
const DateLayout = "2006-01-02"

var ErrWeekStartNotMonday = errors.New("week must start on a Monday")

// Day is a school day index numbered like time.Weekday: Monday = 1 through
// Friday = 5.
type Day int

const (
	Monday    Day = Day(time.Monday)
	Tuesday   Day = Day(time.Tuesday)
	Wednesday Day = Day(time.Wednesday)
	Thursday  Day = Day(time.Thursday)
	Friday    Day = Day(time.Friday)
)

// Weekdays lists the days a menu is planned for, in order.
var Weekdays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

func (d Day) Valid() bool {
	return d >= Monday && d <= Friday
}

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return time.Weekday(d).String()
}

// offset is the number of days between the week start and d.
func (d Day) offset() int {
	return int(d - Monday)
}

// WeekWindow is a planning week. The end is always derived from the start.
type WeekWindow struct {
	start time.Time
}

// NewWeekWindow truncates start to its calendar date. It does not require a
// Monday so that a form can hold any date; Validate reports that instead.
func NewWeekWindow(start time.Time) WeekWindow {
	y, m, d := start.Date()
	return WeekWindow{start: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseWeekWindow reads a yyyy-MM-dd week start.
func ParseWeekWindow(s string) (WeekWindow, error) {
	date, ok := NormalizeDate(s)
	if !ok {
		return WeekWindow{}, fmt.Errorf("invalid week start %q", s)
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return WeekWindow{}, fmt.Errorf("invalid week start %q: %w", s, err)
	}
	return NewWeekWindow(t), nil
}

// CurrentWeek returns the window starting on the Monday of the week holding t.
func CurrentWeek(t time.Time) WeekWindow {
	offset := (int(t.Weekday()) + 6) % 7
	return NewWeekWindow(t.AddDate(0, 0, -offset))
}

func (w WeekWindow) IsZero() bool {
	return w.start.IsZero()
}

func (w WeekWindow) Start() time.Time {
	return w.start
}

func (w WeekWindow) End() time.Time {
	return w.start.AddDate(0, 0, 6)
}

func (w WeekWindow) StartDate() string {
	return w.start.Format(DateLayout)
}

func (w WeekWindow) EndDate() string {
	return w.End().Format(DateLayout)
}

// DateOf maps a grid day to its calendar date within the window.
func (w WeekWindow) DateOf(d Day) string {
	return w.start.AddDate(0, 0, d.offset()).Format(DateLayout)
}

// Contains reports whether the yyyy-MM-dd date falls within the window.
func (w WeekWindow) Contains(date string) bool {
	return date >= w.StartDate() && date <= w.EndDate()
}

func (w WeekWindow) Validate() error {
	if w.IsZero() {
		return errors.New("week start is required")
	}
	if w.start.Weekday() != time.Monday {
		return ErrWeekStartNotMonday
	}
	return nil
}

// NormalizeDate reduces the date-time shapes the backend emits
// ("2024-01-03", "2024-01-03 00:00:00", "2024-01-03T00:00:00Z") to yyyy-MM-dd.
func NormalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, " T"); i >= 0 {
		s = s[:i]
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", false
	}
	return s, true
}
