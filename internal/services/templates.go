package services

import (
	"github.com/markdave123-py/NexSupply/internal/models"
	"github.com/markdave123-py/NexSupply/internal/session"
)

// QuickStart is a landing-page shortcut that pre-fills the context field.
type QuickStart struct {
	Mode        string
	Title       string
	Subtitle    string
	Expectation string
	Context     string
}

var QuickStarts = []QuickStart{
	{
		Mode:        models.ModeVerify,
		Title:       "Verify a supplier",
		Subtitle:    "Check certifications, history and red flags",
		Expectation: "Typical analysis time: ~10 minutes.",
		Context:     "I want to verify a supplier before ordering. Check their certifications, years in business, trade assurance and any red flags.",
	},
	{
		Mode:        models.ModeCost,
		Title:       "Calculate landed cost",
		Subtitle:    "FOB, freight, duty and hidden costs",
		Expectation: "Typical analysis time: ~5 minutes.",
		Context:     "Break down my landed cost per unit: FOB price, ocean and inland freight, customs duty, broker fees, handling and insurance. Target quantity: 1,000 units.",
	},
	{
		Mode:        models.ModeMarket,
		Title:       "Check market demand",
		Subtitle:    "Demand, margins and competition",
		Expectation: "Typical analysis time: ~5 minutes.",
		Context:     "Is there enough demand for this product? Estimate margins after platform fees and how crowded the competition is.",
	},
	{
		Mode:        models.ModeLeadTime,
		Title:       "Plan lead time",
		Subtitle:    "Production to doorstep timeline",
		Expectation: "Typical analysis time: ~5 minutes.",
		Context:     "How long from order to delivery? Include production, sea freight, port congestion, customs clearance and when I should place the order.",
	},
}

// QuickStartFor returns the template for mode.
func QuickStartFor(mode string) (QuickStart, bool) {
	for _, q := range QuickStarts {
		if q.Mode == mode {
			return q, true
		}
	}
	return QuickStart{}, false
}

// ApplyQuickStart fills st from the template for mode.
func ApplyQuickStart(st *session.State, mode string) bool {
	q, ok := QuickStartFor(mode)
	if !ok {
		return false
	}
	st.ApplyTemplate(q.Mode, q.Context)
	return true
}
