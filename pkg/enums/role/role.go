package role

import "strings"

type Role struct {
	Name string
	home string
}

func (r Role) Code() string {
	return r.Name
}

func (r Role) Label() string {
	parts := strings.Split(r.Name, "_")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

// HomePath is the landing route for users holding this role.
func (r Role) HomePath() string {
	if r.home == "" {
		return "/"
	}
	return r.home
}

type Enum struct {
	Admin        Role
	Manager      Role
	KitchenStaff Role
	Warden       Role
	Parent       Role
}

var Roles = Enum{
	Admin:        Role{Name: "admin", home: "/admin"},
	Manager:      Role{Name: "manager", home: "/manager"},
	KitchenStaff: Role{Name: "kitchen_staff", home: "/kitchen-staff"},
	Warden:       Role{Name: "warden", home: "/warden"},
	Parent:       Role{Name: "parent", home: "/parent"},
}

var All = []Role{
	Roles.Admin,
	Roles.Manager,
	Roles.KitchenStaff,
	Roles.Warden,
	Roles.Parent,
}

// ByName resolves a role claim value. The backend emits "KitchenStaff",
// "kitchen_staff" and "Kitchen Staff" depending on the endpoint.
func ByName(name string) *Role {
	key := normalize(name)
	for _, r := range All {
		if normalize(r.Name) == key {
			return &r
		}
	}
	return nil
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}
