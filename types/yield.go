package types

// RiskLevel grades a yield opportunity.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Valid reports whether r is one of the known risk levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// YieldOpportunity is one entry of the protected catalog.
type YieldOpportunity struct {
	ID       int       `json:"id"`
	Protocol string    `json:"protocol"`
	APY      string    `json:"apy"`
	Risk     RiskLevel `json:"risk"`
	TVL      string    `json:"tvl"`
	Asset    string    `json:"asset"`
}

// YieldData is the payload unlocked by an accepted payment claim.
type YieldData struct {
	Opportunities []YieldOpportunity `json:"opportunities"`
	Network       string             `json:"network"`
	LastUpdated   string             `json:"lastUpdated"`
}

// YieldResponse wraps YieldData in the success envelope.
type YieldResponse struct {
	Success bool      `json:"success"`
	Data    YieldData `json:"data"`
}
