package yieldagent

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/vitwit/yieldagent/types"
	"github.com/vitwit/yieldagent/yields"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var landingTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

type pageData struct {
	PayTo         string
	Amount        string
	AmountJS      template.JS
	Asset         string
	NetworkName   string
	Testnet       bool
	Opportunities []types.YieldOpportunity
}

// renderPage executes the landing template once. The result never changes for
// the lifetime of the agent.
func renderPage(req types.PaymentRequirements, catalog *yields.Catalog) ([]byte, error) {
	network := types.Network(req.Network)

	// MaxAmountRequired has been validated as a decimal, so it is a safe JS
	// number literal.
	data := pageData{
		PayTo:         req.PayTo,
		Amount:        req.MaxAmountRequired,
		AmountJS:      template.JS(req.MaxAmountRequired),
		Asset:         req.Asset,
		NetworkName:   network.DisplayName(),
		Testnet:       network.IsTestnet(),
		Opportunities: catalog.All(),
	}

	var buf bytes.Buffer
	if err := landingTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render landing page: %w", err)
	}
	return buf.Bytes(), nil
}
