package identity

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// SaveContext provides context for the pre-transmit save guard.
type SaveContext struct {
	Mode      Mode
	LockedID  string
	PayloadID string
}

// CanSave evaluates whether an outgoing payload may be transmitted.
// Rules:
//   - In edit mode the payload id must equal the locked edit id. A mismatch
//     is an integrity violation: transmitting would write to the wrong record,
//     so the save must abort rather than send or requeue.
func CanSave(ctx SaveContext) GuardResult {
	if ctx.Mode == ModeEdit && ctx.PayloadID != ctx.LockedID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("edit integrity check failed: locked id %s but payload id %s", ctx.LockedID, ctx.PayloadID),
		}
	}
	return GuardResult{Allowed: true}
}

// ResponseContext provides context for the post-delivery identity guard.
type ResponseContext struct {
	Mode       Mode
	LockedID   string
	ResponseID string // empty when the store did not echo an id
}

// CanAcceptResponse evaluates whether a delivery response is consistent with
// the locked identity.
// Rules:
//   - An update response echoing a different submission id than the locked
//     edit id is fatal, not recoverable. Requeueing could write to the wrong
//     record.
func CanAcceptResponse(ctx ResponseContext) GuardResult {
	if ctx.Mode == ModeEdit && ctx.ResponseID != "" && ctx.ResponseID != ctx.LockedID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("store responded with id %s for update of %s", ctx.ResponseID, ctx.LockedID),
		}
	}
	return GuardResult{Allowed: true}
}
