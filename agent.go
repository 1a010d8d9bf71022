// Package yieldagent serves a catalog of Solana DeFi yield opportunities behind
// an x402 style payment claim.
//
// The agent answers three public routes: a landing page, a liveness probe and
// the x402 payment requirements document. The catalog itself is returned from
// the root path only when the request carries an X-Payment header whose claim
// passes the configured Verifier.
package yieldagent

import (
	"time"

	"github.com/vitwit/yieldagent/logger"
	"github.com/vitwit/yieldagent/metrics"
	"github.com/vitwit/yieldagent/types"
	"github.com/vitwit/yieldagent/utils"
	"github.com/vitwit/yieldagent/verification"
	"github.com/vitwit/yieldagent/yields"
)

// Agent is the request router and responder. It holds only immutable state
// once New returns, so one Agent can serve any number of concurrent requests.
type Agent struct {
	config       *types.AgentConfig
	requirements types.PaymentRequirements
	catalog      *yields.Catalog
	verifier     verification.Verifier
	page         []byte
	routes       []route

	logger  logger.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// New creates an Agent from config. The config is copied, later changes by the
// caller have no effect.
func New(config *types.AgentConfig, opts ...Option) (*Agent, error) {
	if err := utils.ValidateAgentConfig(config); err != nil {
		return nil, err
	}

	cfg := *config
	a := &Agent{
		config:       &cfg,
		requirements: cfg.Requirements(),
		catalog:      yields.Default(),
		logger:       logger.NoopLogger{},
		metrics:      metrics.NoopRecorder{},
		now:          time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	if a.verifier == nil {
		v, err := verification.NewClaimVerifier(a.requirements)
		if err != nil {
			return nil, err
		}
		a.verifier = v
	}

	page, err := renderPage(a.requirements, a.catalog)
	if err != nil {
		return nil, err
	}
	a.page = page
	a.routes = a.buildRoutes()

	return a, nil
}

// NewWithDefaults creates an Agent with the compiled-in configuration
func NewWithDefaults(opts ...Option) (*Agent, error) {
	return New(types.DefaultAgentConfig(), opts...)
}

// Requirements returns the payment terms advertised by the agent
func (a *Agent) Requirements() types.PaymentRequirements {
	return a.requirements
}

// Catalog returns the opportunities unlocked by an accepted claim
func (a *Agent) Catalog() *yields.Catalog {
	return a.catalog
}

// Config returns a copy of the agent configuration
func (a *Agent) Config() types.AgentConfig {
	return *a.config
}

func (a *Agent) network() types.Network {
	return a.config.Network
}

// Version information
const (
	Version         = "1.0.0"
	ProtocolVersion = 1
)

// GetVersion returns version information
func GetVersion() map[string]interface{} {
	return map[string]interface{}{
		"library_version":  Version,
		"protocol_version": ProtocolVersion,
		"supported_networks": []string{
			"solana", "solana-mainnet", "solana-devnet",
		},
		"supported_schemes": []string{
			"exact",
		},
	}
}
