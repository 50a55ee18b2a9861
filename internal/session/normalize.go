package session

import (
	"strings"

	"github.com/gradsync/portal/internal"
	userDatamodel "github.com/gradsync/portal/internal/core/datamodel/user"
)

// Normalize converts a login payload into the canonical User. The payload
// may already be normalized (detected by a non-empty display name plus a
// roles array, the same heuristic the web client used); otherwise the split
// name fields are joined, roles come from the explicit argument, and
// permissions default to empty. A payload with neither id nor pk is
// rejected: silently defaulting the identifier to zero corrupts every
// downstream lookup.
func Normalize(raw userDatamodel.APIUser, roles []userDatamodel.Role) (*userDatamodel.User, error) {
	id := raw.ID
	if id == 0 {
		id = raw.PK
	}
	if id == 0 {
		return nil, internal.ErrMissingUserID
	}

	alreadyNormalized := raw.Name != "" && raw.Roles != nil

	u := &userDatamodel.User{
		ID:           id,
		Username:     raw.Username,
		Email:        raw.Email,
		DepartmentID: raw.DepartmentID,
		CollegeID:    raw.CollegeID,
	}

	if alreadyNormalized {
		u.Name = raw.Name
		u.Roles = raw.Roles
		u.Permissions = raw.Permissions
	} else {
		u.Name = strings.TrimSpace(raw.FirstName + " " + raw.LastName)
		if u.Name == "" {
			u.Name = raw.Name
		}
		u.Roles = roles
		u.Permissions = raw.Permissions
	}

	// roles and permissions are always present, possibly empty
	if u.Roles == nil {
		u.Roles = []userDatamodel.Role{}
	}
	if u.Permissions == nil {
		u.Permissions = []string{}
	}

	return u, nil
}
