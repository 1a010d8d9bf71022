package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// X402Version represents the version of the x402 protocol
type X402Version int

const (
	X402Version1 X402Version = 1
)

// PaymentScheme represents different payment schemes
type PaymentScheme string

const (
	SchemeExact PaymentScheme = "exact"
)

func (s PaymentScheme) String() string {
	return string(s)
}

// PaymentRequirements defines the terms a client must satisfy to unlock the
// protected resource.
type PaymentRequirements struct {
	// Scheme of the payment protocol to use. Only "exact" is offered.
	Scheme string `json:"scheme" validate:"required"`

	// Network the payment is expected on (e.g., "solana").
	Network string `json:"network" validate:"required"`

	// Amount required to pay for the resource, in whole units of the asset.
	// Represented as a string so the decimal text survives the round trip.
	MaxAmountRequired string `json:"maxAmountRequired" validate:"required"`

	// Asset symbol the payment is denominated in.
	Asset string `json:"asset" validate:"required"`

	// Address to which the payment must be sent.
	PayTo string `json:"payTo" validate:"required"`

	// Description of the resource being purchased.
	Description string `json:"description"`

	// Maximum time in seconds a payment claim stays usable.
	MaxTimeoutSeconds int `json:"maxTimeoutSeconds" validate:"gt=0"`
}

// X402Response is the discovery document listing the accepted payment options.
type X402Response struct {
	// Version of the x402 payment protocol.
	ProtocolVersion int `json:"protocolVersion"`

	// List of payment requirements that the resource server accepts.
	Accepts []PaymentRequirements `json:"accepts"`

	// Message from the resource server indicating any processing error.
	Error string `json:"error,omitempty"`
}

// PaymentClaim is the unauthenticated assertion of payment a client sends in
// the X-Payment header. It lives for a single request.
type PaymentClaim struct {
	TxHash string `json:"txHash" validate:"required"`

	// Amount is nil when the header carried no numeric amount.
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// HasAmount reports whether the claim carried a numeric amount.
func (c *PaymentClaim) HasAmount() bool {
	return c != nil && c.Amount != nil
}

// VerificationResult contains the result of claim verification
type VerificationResult struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason,omitempty"`
	TxHash        string `json:"txHash,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Asset         string `json:"asset,omitempty"`
	Recipient     string `json:"recipient,omitempty"`
}

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every 402 and 404 response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Wire error messages. Clients match on these, keep them stable.
const (
	MessageInvalidClaim   = "Invalid"
	MessageMalformedClaim = "Bad header"
	MessageNotFound       = "Not found"
)

// Error types
type X402Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e X402Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrMalformedClaim      = "MALFORMED_CLAIM"
	ErrInvalidClaim        = "INVALID_CLAIM"
	ErrInvalidRequirements = "INVALID_REQUIREMENTS"
	ErrUnsupportedNetwork  = "UNSUPPORTED_NETWORK"
	ErrRouteNotFound       = "ROUTE_NOT_FOUND"
	ErrConfigError         = "CONFIG_ERROR"
)

// Validate checks that the requirements carry every field a client needs to pay.
func (pr *PaymentRequirements) Validate() error {
	if pr.Scheme == "" {
		return fmt.Errorf("paymentRequirements.scheme is required")
	}

	if pr.Network == "" {
		return fmt.Errorf("paymentRequirements.network is required")
	}

	if pr.MaxAmountRequired == "" {
		return fmt.Errorf("paymentRequirements.maxAmountRequired is required")
	}

	if pr.PayTo == "" {
		return fmt.Errorf("paymentRequirements.payTo is required")
	}

	if pr.Asset == "" {
		return fmt.Errorf("paymentRequirements.asset is required")
	}

	if pr.MaxTimeoutSeconds <= 0 {
		return fmt.Errorf("paymentRequirements.maxTimeoutSeconds must be greater than 0")
	}

	return nil
}
