package utils

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/vitwit/yieldagent/types"
)

var validate *validator.Validate

// claimAPI keeps numbers as json.Number so the claimed amount is compared
// against its literal decimal text instead of a float64.
var claimAPI = sonic.Config{UseNumber: true}.Froze()

func init() {
	validate = validator.New()
}

// ValidateStruct runs the struct-tag validations on v.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

// ParsePaymentClaim decodes the X-Payment header value.
//
// Only undecodable input (bad JSON or a bare null) is reported as an error.
// Any other JSON value yields a claim, possibly empty, which the verifier then
// rejects: a non-string txHash is treated as absent, as is a non-numeric amount.
//
// txHash must be a JSON string. Truthy non-strings such as true, 42 or an
// object do not count as a transaction hash, so {"txHash":true,"amount":0.001}
// is rejected as Invalid rather than accepted.
func ParsePaymentClaim(header string) (*types.PaymentClaim, error) {
	var raw interface{}
	if err := claimAPI.UnmarshalFromString(header, &raw); err != nil {
		return nil, &types.X402Error{
			Code:    types.ErrMalformedClaim,
			Message: fmt.Sprintf("failed to parse payment claim: %v", err),
		}
	}

	if raw == nil {
		return nil, &types.X402Error{
			Code:    types.ErrMalformedClaim,
			Message: "payment claim is null",
		}
	}

	claim := &types.PaymentClaim{}

	fields, ok := raw.(map[string]interface{})
	if !ok {
		return claim, nil
	}

	if txHash, ok := fields["txHash"].(string); ok {
		claim.TxHash = txHash
	}

	if n, ok := fields["amount"].(json.Number); ok {
		if amount, err := decimal.NewFromString(n.String()); err == nil {
			claim.Amount = &amount
		}
	}

	return claim, nil
}

// ParseAgentConfig overlays a JSON document on the compiled-in defaults and
// validates the result.
func ParseAgentConfig(data []byte) (*types.AgentConfig, error) {
	config := types.DefaultAgentConfig()

	if err := sonic.Unmarshal(data, config); err != nil {
		return nil, &types.X402Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to parse agent config: %v", err),
		}
	}

	if err := ValidateAgentConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateAgentConfig checks struct tags first, then the chain-specific fields.
func ValidateAgentConfig(config *types.AgentConfig) error {
	if config == nil {
		return &types.X402Error{
			Code:    types.ErrConfigError,
			Message: "agent config is nil",
		}
	}

	if err := validate.Struct(config); err != nil {
		return &types.X402Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}

	if err := ValidateNetwork(config.Network.String()); err != nil {
		return &types.X402Error{
			Code:    types.ErrUnsupportedNetwork,
			Message: err.Error(),
		}
	}

	amount, err := ValidateAmount(config.PaymentAmount)
	if err != nil {
		return &types.X402Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("paymentAmount: %v", err),
		}
	}
	if amount.IsZero() {
		return &types.X402Error{
			Code:    types.ErrConfigError,
			Message: "paymentAmount must be greater than 0",
		}
	}

	if err := ValidateSolanaAddress(config.PaymentAddress); err != nil {
		return &types.X402Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("paymentAddress: %v", err),
		}
	}

	return nil
}

// ValidateRequirements runs both the tag and the hand-written checks on pr.
func ValidateRequirements(pr *types.PaymentRequirements) error {
	if err := validate.Struct(pr); err != nil {
		return &types.X402Error{
			Code:    types.ErrInvalidRequirements,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}

	if err := pr.Validate(); err != nil {
		return &types.X402Error{
			Code:    types.ErrInvalidRequirements,
			Message: err.Error(),
		}
	}

	if err := ValidatePaymentScheme(pr.Scheme); err != nil {
		return &types.X402Error{
			Code:    types.ErrInvalidRequirements,
			Message: err.Error(),
		}
	}

	return nil
}

// FormatTimestamp renders t the way JavaScript's Date.toISOString does:
// UTC, millisecond precision, trailing Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
