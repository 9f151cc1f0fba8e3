package services

import "context"

// Capability names an action the permission collaborator can grant. The
// ledger core never evaluates credentials itself; it only asks whether the
// already-authenticated actor holds a capability.
type Capability string

const (
	// CapabilityDecreaseCredit gates negative deltas in a bulk reconciliation commit.
	CapabilityDecreaseCredit Capability = "ledger:decrease_credit"

	// CapabilityDeleteAccount gates hard deletion of an account.
	CapabilityDeleteAccount Capability = "account:hard_delete"
)

// AuthorizationSvcFacade is the single call each gated operation makes to the
// external permission collaborator. It returns nil when the actor holds the
// capability and apperrors.ErrForbidden otherwise.
type AuthorizationSvcFacade interface {
	Authorize(ctx context.Context, actorID string, capability Capability) error
}
