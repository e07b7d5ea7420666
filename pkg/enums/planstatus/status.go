package planstatus

import "strings"

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	return s.Name
}

// Terminal reports whether the plan can no longer be edited.
func (s Status) Terminal() bool {
	return s.Name != Statuses.Draft.Name
}

type Enum struct {
	Draft     Status
	Confirmed Status
}

var Statuses = Enum{
	Draft:     Status{Name: "Draft"},
	Confirmed: Status{Name: "Confirmed"},
}

var All = []Status{
	Statuses.Draft,
	Statuses.Confirmed,
}

// ByName returns the status for a given name, or nil if not found.
func ByName(name string) *Status {
	for _, s := range All {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return &s
		}
	}
	return nil
}
