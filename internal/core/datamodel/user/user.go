package user

import (
	"encoding/json"
	"strings"
)

// Role is the single canonical role representation. The backend sends roles
// either as plain strings ("student") or as records shaped like
// {"role__role_ID": 1, "role__type": "student"}; both decode into Role so no
// downstream code ever has to re-guess the shape.
type Role struct {
	ID    int64  `json:"role__role_ID,omitempty"`
	Label string `json:"role__type"`
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		r.Label = label
		return nil
	}

	var record struct {
		ID        int64  `json:"role__role_ID"`
		RoleType  string `json:"role__type"`
		PlainType string `json:"type"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	r.ID = record.ID
	r.Label = record.RoleType
	if r.Label == "" {
		r.Label = record.PlainType
	}
	return nil
}

// Normalized returns the label lower-cased and trimmed, the form used for
// role comparison and dashboard routing.
func (r Role) Normalized() string {
	return strings.ToLower(strings.TrimSpace(r.Label))
}

// APIUser is the raw login payload shape. Field presence varies between
// backend versions: some send a split first/last name, some a single name,
// and the primary key may arrive as either "id" or "pk".
type APIUser struct {
	ID           int64    `json:"id"`
	PK           int64    `json:"pk"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Roles        []Role   `json:"roles"`
	Permissions  []string `json:"permissions"`
	DepartmentID *int64   `json:"department_id"`
	CollegeID    *int64   `json:"college_id"`
}

// User is the normalized in-memory shape produced once at login and used
// everywhere else. Roles is always non-nil; its first element is the primary
// role used to pick a dashboard.
type User struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Roles        []Role   `json:"roles"`
	Permissions  []string `json:"permissions"`
	DepartmentID *int64   `json:"department_id,omitempty"`
	CollegeID    *int64   `json:"college_id,omitempty"`
}

// PrimaryRole returns the normalized label of the first role, or "" when the
// user has no roles.
func (u *User) PrimaryRole() string {
	if u == nil || len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0].Normalized()
}

func (u *User) HasRole(label string) bool {
	if u == nil {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(label))
	for _, r := range u.Roles {
		if r.Normalized() == want {
			return true
		}
	}
	return false
}

func (u *User) HasAnyRole(labels []string) bool {
	for _, label := range labels {
		if u.HasRole(label) {
			return true
		}
	}
	return false
}

func (u *User) HasPermission(permission string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
