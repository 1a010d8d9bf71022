package verification

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vitwit/yieldagent/types"
	"github.com/vitwit/yieldagent/utils"
)

// Verifier decides whether a payment claim unlocks the protected resource.
// A rejected claim is reported through VerificationResult, not an error.
type Verifier interface {
	Verify(ctx context.Context, claim *types.PaymentClaim) (*types.VerificationResult, error)
}

// ClaimVerifier accepts a claim when it names a transaction hash and its amount
// equals the required amount exactly. Nothing is checked on chain: the claim is
// trusted as sent.
type ClaimVerifier struct {
	requirements types.PaymentRequirements
	amount       decimal.Decimal
}

var _ Verifier = (*ClaimVerifier)(nil)

// NewClaimVerifier creates a verifier for the given requirements
func NewClaimVerifier(requirements types.PaymentRequirements) (*ClaimVerifier, error) {
	if err := utils.ValidateRequirements(&requirements); err != nil {
		return nil, err
	}

	amount, err := utils.ValidateAmount(requirements.MaxAmountRequired)
	if err != nil {
		return nil, &types.X402Error{
			Code:    types.ErrInvalidRequirements,
			Message: fmt.Sprintf("invalid maxAmountRequired: %v", err),
		}
	}

	return &ClaimVerifier{
		requirements: requirements,
		amount:       *amount,
	}, nil
}

// Verify applies the acceptance predicate to claim
func (v *ClaimVerifier) Verify(
	ctx context.Context,
	claim *types.PaymentClaim,
) (*types.VerificationResult, error) {
	if claim == nil {
		return &types.VerificationResult{
			IsValid:       false,
			InvalidReason: "payment claim is missing",
		}, nil
	}

	if err := utils.ValidateStruct(claim); err != nil {
		return &types.VerificationResult{
			IsValid:       false,
			InvalidReason: "txHash is required",
		}, nil
	}

	if !claim.HasAmount() {
		return &types.VerificationResult{
			IsValid:       false,
			InvalidReason: "amount is required",
			TxHash:        claim.TxHash,
		}, nil
	}

	if !claim.Amount.Equal(v.amount) {
		return &types.VerificationResult{
			IsValid:       false,
			InvalidReason: fmt.Sprintf("amount %s does not match required %s", claim.Amount.String(), v.amount.String()),
			TxHash:        claim.TxHash,
			Amount:        claim.Amount.String(),
		}, nil
	}

	return &types.VerificationResult{
		IsValid:   true,
		TxHash:    claim.TxHash,
		Amount:    claim.Amount.String(),
		Asset:     v.requirements.Asset,
		Recipient: v.requirements.PayTo,
	}, nil
}

// Requirements returns the terms this verifier enforces
func (v *ClaimVerifier) Requirements() types.PaymentRequirements {
	return v.requirements
}
