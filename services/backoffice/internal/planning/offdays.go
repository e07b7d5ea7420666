package planning

import "sort"

// OffDaySet holds the dates of a week on which no meal may be scheduled.
// The zero value is an empty set.
type OffDaySet struct {
	dates map[string]struct{}
}

// NewOffDaySet normalizes raw dates; unparsable entries are dropped.
func NewOffDaySet(raw ...string) OffDaySet {
	set := OffDaySet{dates: make(map[string]struct{}, len(raw))}
	for _, r := range raw {
		if date, ok := NormalizeDate(r); ok {
			set.dates[date] = struct{}{}
		}
	}
	return set
}

// Within drops dates that fall outside the week.
func (s OffDaySet) Within(week WeekWindow) OffDaySet {
	out := OffDaySet{dates: make(map[string]struct{}, len(s.dates))}
	for date := range s.dates {
		if week.Contains(date) {
			out.dates[date] = struct{}{}
		}
	}
	return out
}

func (s OffDaySet) Contains(date string) bool {
	_, ok := s.dates[date]
	return ok
}

func (s OffDaySet) Len() int {
	return len(s.dates)
}

// Dates returns the set sorted ascending.
func (s OffDaySet) Dates() []string {
	out := make([]string, 0, len(s.dates))
	for date := range s.dates {
		out = append(out, date)
	}
	sort.Strings(out)
	return out
}
