package types

// Compiled-in payment terms.
const (
	DefaultPaymentAddress = "DyJjjHQyd8NYZeXXhSABpFWPn4PE98UDv4oLtaxzJuiE"
	DefaultPaymentAmount  = "0.001"
	DefaultPaymentAsset   = "SOL"
	DefaultTimeoutSeconds = 3600
	DefaultDescription    = "Real-time yields: Kamino, Marginfi, Drift, Orca, Phoenix"
	DefaultListenAddr     = ":8787"
)

// AgentConfig contains every tunable of the yield agent. The zero value is not
// usable; start from DefaultAgentConfig.
//
// MetricsAddr and EnableMetrics go together: setting one without the other is
// a validation error.
type AgentConfig struct {
	PaymentAddress       string      `json:"paymentAddress" validate:"required"`
	PaymentAmount        string      `json:"paymentAmount" validate:"required,numeric"`
	PaymentAsset         string      `json:"paymentAsset" validate:"required"`
	Network              Network     `json:"network" validate:"required"`
	TimeoutSeconds       int         `json:"timeoutSeconds" validate:"gt=0"`
	Description          string      `json:"description"`
	X402Version          X402Version `json:"x402Version" validate:"gte=1"`
	ListenAddr           string      `json:"listenAddr" validate:"required"`
	MetricsAddr          string      `json:"metricsAddr,omitempty" validate:"required_if=EnableMetrics true"`
	LogLevel             string      `json:"logLevel,omitempty" validate:"omitempty,oneof=debug info warn error"`
	EnableMetrics        bool        `json:"enableMetrics,omitempty" validate:"required_with=MetricsAddr"`
	ShutdownGraceSeconds int         `json:"shutdownGraceSeconds,omitempty" validate:"gte=0"`
}

// DefaultAgentConfig returns the compiled-in configuration.
func DefaultAgentConfig() *AgentConfig {
	return &AgentConfig{
		PaymentAddress:       DefaultPaymentAddress,
		PaymentAmount:        DefaultPaymentAmount,
		PaymentAsset:         DefaultPaymentAsset,
		Network:              NetworkSolana,
		TimeoutSeconds:       DefaultTimeoutSeconds,
		Description:          DefaultDescription,
		X402Version:          X402Version1,
		ListenAddr:           DefaultListenAddr,
		LogLevel:             "info",
		ShutdownGraceSeconds: 10,
	}
}

// Requirements derives the advertised payment requirements from the config.
func (c *AgentConfig) Requirements() PaymentRequirements {
	return PaymentRequirements{
		Scheme:            SchemeExact.String(),
		Network:           c.Network.String(),
		MaxAmountRequired: c.PaymentAmount,
		Asset:             c.PaymentAsset,
		PayTo:             c.PaymentAddress,
		Description:       c.Description,
		MaxTimeoutSeconds: c.TimeoutSeconds,
	}
}
