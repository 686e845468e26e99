package llm

import (
	"strings"

	"github.com/markdave123-py/NexSupply/internal/models"
)

const baseInstruction = `You are NexSupply, a B2B sourcing analyst for importers buying from overseas factories.
Answer with one JSON object and nothing else. Use these keys when you have data:
market_snapshot {demand, demand_trend, demand_evidence, margin_estimate, margin_note, margin_trend, competition_level, competition_trend, market_size_usd},
landed_cost_breakdown {total_landed_cost_usd, cost_per_unit_usd, quantity_basis, hidden_cost_warnings[], cost_components {fob_price_usd, ocean_freight_usd, inland_freight_usd, customs_duty_usd, customs_broker_fee_usd, terminal_handling_charge_usd, insurance_usd}},
lead_time_analysis {production_lead_time_days, sea_freight_lead_time_days, port_congestion_buffer_days, customs_clearance_days, inland_delivery_days, total_lead_time_days, safety_stock_days, current_conditions, recommended_order_advance_days},
verified_suppliers [{name, location, region, rating, min_order_qty, price_range_usd, verified, response_time, certifications[], years_in_business, estimated_factory_grade, trade_assurance, estimated_quality_tier, risk_notes, green_flags[]}],
trends_with_evidence [], product_info {}, risk_analysis {overall_risk_score 0-100, ...}, risk_assessment {}, action_items [], honest_assessment {}, data_transparency {}, analysis_confidence 0-1.
Quote all money in USD. Give day counts as integers. Say so in honest_assessment when data is thin instead of inventing precision.`

var modeFocus = map[string]string{
	models.ModeVerify:   "Focus on supplier verification: certifications, years in business, trade assurance and red flags for each supplier.",
	models.ModeCost:     "Focus on the landed cost: break every cost component down and list hidden costs importers usually miss.",
	models.ModeMarket:   "Focus on market demand, margins and competition, with evidence for each trend.",
	models.ModeLeadTime: "Focus on lead time: production, freight, port congestion and customs, and when to place the order.",
}

func systemPrompt(mode string) string {
	if focus, ok := modeFocus[mode]; ok {
		return baseInstruction + "\n" + focus
	}
	return baseInstruction
}

func userPrompt(in models.AnalysisInput) string {
	var b strings.Builder
	q := strings.TrimSpace(in.Query)
	c := strings.TrimSpace(in.ContextQuery)

	switch {
	case q != "":
		b.WriteString("Product: ")
		b.WriteString(q)
	case len(in.FileBytes) > 0:
		b.WriteString("Identify the product in the attached file and analyze sourcing it.")
	default:
		b.WriteString("Analyze the sourcing request below.")
	}
	if c != "" {
		b.WriteString("\n\nRequirements and context:\n")
		b.WriteString(c)
	}
	return b.String()
}
