package policy

import (
	"context"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/internal/models"
)

// NewOwnershipPolicy allows access to targets of the caller's own company.
// Child records are checked through their parent site, so targets are always
// company-scoped entities.
func NewOwnershipPolicy() gate.Policy[auth.Identity] {
	return gate.PolicyFunc[auth.Identity](func(_ context.Context, id auth.Identity, _ gate.Action, target any) bool {
		scoped, ok := target.(models.CompanyScoped)
		if !ok {
			return false
		}
		return id.CompanyID != 0 && scoped.GetCompanyID() == id.CompanyID
	})
}
