package api

import (
	"github.com/gradsync/portal/internal/core/common/validation"
	userDatamodel "github.com/gradsync/portal/internal/core/datamodel/user"
)

// LoginRequest is the transport shape for POST auth/login/.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if err := validation.ValidateCredentials(r.Username, r.Password); err != nil {
		return err
	}
	return nil
}

// LoginResponse is the unified login envelope: SimpleJWT token pair plus the
// serialized user, which still needs normalization before use.
type LoginResponse struct {
	Access  string                `json:"access"`
	Refresh string                `json:"refresh"`
	User    userDatamodel.APIUser `json:"user"`
}
