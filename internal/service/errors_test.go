package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	require.Equal(t, "ok", ErrorCode(nil))
	require.Equal(t, "not_client", ErrorCode(ErrNotClient))
	require.Equal(t, "not_owner", ErrorCode(fmt.Errorf("wrapped: %w", ErrNotOwner)))
	require.Equal(t, "not_authorized", ErrorCode(ErrNotAuthorized))
	require.Equal(t, "insufficient_amount", ErrorCode(ErrInsufficientAmount))
	require.Equal(t, "exceeds_contract_amount", ErrorCode(ErrExceedsContractAmount))
	require.Equal(t, "milestone_not_found", ErrorCode(fmt.Errorf("%w: 3", ErrMilestoneNotFound)))
	require.Equal(t, "fee_exceeds_maximum", ErrorCode(ErrFeeExceedsMaximum))
	require.Equal(t, "internal", ErrorCode(errors.New("disk on fire")))
}

func TestNamedErrorsWrapKinds(t *testing.T) {
	require.ErrorIs(t, ErrNotClient, ErrNotAuthorized)
	require.ErrorIs(t, ErrNotFreelancer, ErrNotAuthorized)
	require.ErrorIs(t, ErrNotOwner, ErrNotAuthorized)
	require.ErrorIs(t, ErrContractNotFound, ErrNotFound)
	require.ErrorIs(t, ErrInsufficientAmount, ErrInvalidAmount)
	require.ErrorIs(t, ErrSelfContract, ErrInvalidInput)
	require.False(t, errors.Is(ErrNotClient, ErrNotFreelancer))
}
