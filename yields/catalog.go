// Package yields holds the read-only catalog of yield opportunities served to
// paying clients.
package yields

import (
	"fmt"

	"github.com/vitwit/yieldagent/types"
)

// Catalog is an immutable, ordered set of opportunities. It is safe for
// concurrent use because nothing mutates it after NewCatalog returns.
type Catalog struct {
	items []types.YieldOpportunity
}

// NewCatalog copies items into a catalog after checking ids are unique and
// risk levels are known.
func NewCatalog(items []types.YieldOpportunity) (*Catalog, error) {
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("duplicate opportunity id %d", item.ID)
		}
		seen[item.ID] = struct{}{}

		if item.Protocol == "" {
			return nil, fmt.Errorf("opportunity %d: protocol is required", item.ID)
		}
		if !item.Risk.Valid() {
			return nil, fmt.Errorf("opportunity %d: unknown risk level %q", item.ID, item.Risk)
		}
	}

	owned := make([]types.YieldOpportunity, len(items))
	copy(owned, items)
	return &Catalog{items: owned}, nil
}

// Default returns the built-in five-protocol catalog.
func Default() *Catalog {
	return &Catalog{items: []types.YieldOpportunity{
		{ID: 1, Protocol: "Kamino", APY: "9.45%", Risk: types.RiskLow, TVL: "$385M", Asset: "USDC"},
		{ID: 2, Protocol: "Marginfi", APY: "7.5%", Risk: types.RiskLow, TVL: "$210M", Asset: "USDC/SOL"},
		{ID: 3, Protocol: "Drift", APY: "8.46%", Risk: types.RiskMedium, TVL: "$150M", Asset: "SOL"},
		{ID: 4, Protocol: "Orca", APY: "10.1%", Risk: types.RiskMedium, TVL: "$227K", Asset: "SOL-USDC"},
		{ID: 5, Protocol: "Phoenix", APY: "6.2%", Risk: types.RiskLow, TVL: "$80M", Asset: "SOL"},
	}}
}

// All returns a copy of the opportunities in catalog order.
func (c *Catalog) All() []types.YieldOpportunity {
	out := make([]types.YieldOpportunity, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// Protocols lists protocol names in catalog order.
func (c *Catalog) Protocols() []string {
	names := make([]string, 0, len(c.items))
	for _, item := range c.items {
		names = append(names, item.Protocol)
	}
	return names
}
