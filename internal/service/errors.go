package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by the engine wraps exactly one of them.
var (
	ErrNotFound           = errors.New("not found")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidRating      = errors.New("invalid rating")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateMilestone = errors.New("duplicate milestone")
	ErrDuplicateRating    = errors.New("duplicate rating")
	ErrFeeExceedsMaximum  = errors.New("fee exceeds maximum")
	ErrInsufficientEscrow = errors.New("insufficient escrow")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)

var (
	ErrMissingCaller = fmt.Errorf("%w: caller identity missing", ErrNotAuthorized)
	ErrNotClient     = fmt.Errorf("%w: caller is not the contract client", ErrNotAuthorized)
	ErrNotFreelancer = fmt.Errorf("%w: caller is not the contract freelancer", ErrNotAuthorized)
	ErrNotOwner      = fmt.Errorf("%w: caller is not the platform owner", ErrNotAuthorized)
	ErrNotParty      = fmt.Errorf("%w: caller is not a party to the contract", ErrNotAuthorized)
	ErrNotHolder     = fmt.Errorf("%w: caller does not hold the account", ErrNotAuthorized)

	ErrContractNotFound  = fmt.Errorf("%w: contract", ErrNotFound)
	ErrMilestoneNotFound = fmt.Errorf("%w: milestone", ErrNotFound)
	ErrDisputeNotFound   = fmt.Errorf("%w: dispute", ErrNotFound)
	ErrRatingNotFound    = fmt.Errorf("%w: rating", ErrNotFound)

	ErrInsufficientAmount    = fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	ErrAmountTooLarge        = fmt.Errorf("%w: amount exceeds the storable maximum", ErrInvalidAmount)
	ErrExceedsContractAmount = fmt.Errorf("%w: milestones would exceed the contract total", ErrInvalidAmount)

	ErrSelfContract      = fmt.Errorf("%w: client and freelancer must differ", ErrInvalidInput)
	ErrInvalidResolution = fmt.Errorf("%w: resolution must be client or freelancer", ErrInvalidInput)
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrMissingCaller, "missing_caller"},
	{ErrNotClient, "not_client"},
	{ErrNotFreelancer, "not_freelancer"},
	{ErrNotOwner, "not_owner"},
	{ErrNotParty, "not_party"},
	{ErrNotHolder, "not_holder"},
	{ErrNotAuthorized, "not_authorized"},
	{ErrContractNotFound, "contract_not_found"},
	{ErrMilestoneNotFound, "milestone_not_found"},
	{ErrDisputeNotFound, "dispute_not_found"},
	{ErrRatingNotFound, "rating_not_found"},
	{ErrNotFound, "not_found"},
	{ErrInvalidStatus, "invalid_status"},
	{ErrInsufficientAmount, "insufficient_amount"},
	{ErrAmountTooLarge, "amount_too_large"},
	{ErrExceedsContractAmount, "exceeds_contract_amount"},
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInvalidRating, "invalid_rating"},
	{ErrSelfContract, "self_contract"},
	{ErrInvalidResolution, "invalid_resolution"},
	{ErrInvalidInput, "invalid_input"},
	{ErrDuplicateMilestone, "duplicate_milestone"},
	{ErrDuplicateRating, "duplicate_rating"},
	{ErrFeeExceedsMaximum, "fee_exceeds_maximum"},
	{ErrInsufficientEscrow, "insufficient_escrow"},
	{ErrInsufficientFunds, "insufficient_funds"},
}

// ErrorCode returns a stable machine-readable code for err, "ok" for nil and
// "internal" for errors outside the engine's taxonomy.
func ErrorCode(err error) string {
	if err == nil {
		return "ok"
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
