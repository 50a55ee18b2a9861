// Package dashboard maps a user's primary role to the dashboard variant the
// UI should render.
package dashboard

import (
	"strings"

	userDatamodel "github.com/gradsync/portal/internal/core/datamodel/user"
)

type Dashboard string

const (
	Student             Dashboard = "student"
	Supervisor          Dashboard = "supervisor"
	CoSupervisor        Dashboard = "co-supervisor"
	DepartmentHead      Dashboard = "department-head"
	Dean                Dashboard = "dean"
	UniversityPresident Dashboard = "university-president"
	SystemManager       Dashboard = "system-manager"
	Ministry            Dashboard = "ministry"
	ExternalCompany     Dashboard = "external-company"

	// Unknown is a terminal state, not an error: the UI renders an
	// "unknown role" screen and the user has to sign out manually.
	Unknown Dashboard = "unknown"
)

// ForRole selects the dashboard for a role label. Matching is
// case-insensitive and ignores surrounding whitespace.
func ForRole(label string) Dashboard {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "student":
		return Student
	case "supervisor":
		return Supervisor
	case "co-supervisor":
		return CoSupervisor
	case "department head":
		return DepartmentHead
	case "dean":
		return Dean
	case "university president":
		return UniversityPresident
	case "system manager":
		return SystemManager
	case "ministry":
		return Ministry
	case "external_company":
		return ExternalCompany
	default:
		return Unknown
	}
}

// ForUser routes on the user's primary role (the first element of the role
// sequence). A nil user or an empty role list lands on Unknown.
func ForUser(u *userDatamodel.User) Dashboard {
	if u == nil {
		return Unknown
	}
	return ForRole(u.PrimaryRole())
}
