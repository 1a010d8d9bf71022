package utils

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// ValidateAmount checks if an amount string is a valid decimal
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// ValidateSolanaAddress checks that address decodes to a 32-byte ed25519 public key.
func ValidateSolanaAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("invalid Solana address: %w", err)
	}

	return nil
}

// ValidateNetwork checks if a network is supported
func ValidateNetwork(network string) error {
	supportedNetworks := []string{
		"solana", "solana-mainnet", "solana-devnet",
	}

	for _, supported := range supportedNetworks {
		if network == supported {
			return nil
		}
	}

	return fmt.Errorf("unsupported network: %s", network)
}

// ValidatePaymentScheme checks if a payment scheme is supported
func ValidatePaymentScheme(scheme string) error {
	if scheme == "exact" {
		return nil
	}

	return fmt.Errorf("unsupported payment scheme: %s", scheme)
}
