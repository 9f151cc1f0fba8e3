package services

import (
	"context"
	"fmt"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/middleware"
)

// capabilityRoles maps each gated capability to the session roles granting
// it. Roles are claims issued by the external permission subsystem and
// carried in the bearer token; the ledger never stores credentials itself.
var capabilityRoles = map[portssvc.Capability][]string{
	portssvc.CapabilityDecreaseCredit: {"supervisor", "admin"},
	portssvc.CapabilityDeleteAccount:  {"admin"},
}

// roleAuthorizationService answers capability checks from the role claims of
// the current session.
type roleAuthorizationService struct{}

// NewRoleAuthorizationService creates an AuthorizationSvcFacade backed by the
// session role claims placed in the context by the auth middleware.
func NewRoleAuthorizationService() portssvc.AuthorizationSvcFacade {
	return &roleAuthorizationService{}
}

var _ portssvc.AuthorizationSvcFacade = (*roleAuthorizationService)(nil)

// Authorize implements portssvc.AuthorizationSvcFacade.
func (s *roleAuthorizationService) Authorize(ctx context.Context, actorID string, capability portssvc.Capability) error {
	granted, known := capabilityRoles[capability]
	if !known {
		return fmt.Errorf("%w: unknown capability %s", apperrors.ErrForbidden, capability)
	}
	roles := middleware.GetActorRolesFromCtx(ctx)
	for _, role := range roles {
		for _, grant := range granted {
			if role == grant {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: actor %s lacks capability %s", apperrors.ErrForbidden, actorID, capability)
}
