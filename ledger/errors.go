package ledger

import "errors"

var (
	// ErrUnauthorized is returned when the caller may not perform the
	// operation on this campaign.
	ErrUnauthorized = errors.New("caller not authorized")
	// ErrNotEligible is returned when the caller does not clear the
	// reputation gate required to launch.
	ErrNotEligible = errors.New("creator not eligible")
	// ErrInvalidParams is returned when launch parameters are out of
	// bounds.
	ErrInvalidParams = errors.New("invalid campaign parameters")
	// ErrInvalidPhase is returned when the campaign is not in the phase
	// the operation requires.
	ErrInvalidPhase = errors.New("operation not allowed in current phase")
	// ErrCampaignPaused is returned when the campaign is paused.
	ErrCampaignPaused = errors.New("campaign is paused")
	// ErrWindowClosed is returned when a contribution arrives outside the
	// funding window.
	ErrWindowClosed = errors.New("funding window closed")
	// ErrWindowOpen is returned when finalize is attempted before the
	// funding window has elapsed.
	ErrWindowOpen = errors.New("funding window still open")
	// ErrContributionBounds is returned when the amount violates the
	// campaign's contribution limits.
	ErrContributionBounds = errors.New("contribution outside allowed bounds")
	// ErrProofInvalid is returned when the commitment opening does not
	// verify.
	ErrProofInvalid = errors.New("commitment opening proof invalid")
	// ErrNoRefund is returned when the caller has no unclaimed backings to
	// refund.
	ErrNoRefund = errors.New("no refundable backings")
	// ErrNothingVested is returned when no reward tokens are claimable
	// yet.
	ErrNothingVested = errors.New("no vested tokens claimable")
)
