package llm

import (
	"strings"

	"github.com/markdave123-py/NexSupply/internal/models"
)

// MockAnalysis returns a fixed, realistic analysis for query. It backs the
// demo button shown after a failed analysis.
func MockAnalysis(query string) *models.AnalysisResponse {
	product := strings.TrimSpace(query)
	if product == "" {
		product = "Demo"
	}

	data := map[string]any{
		"product_info": map[string]any{
			"name":         product,
			"product_name": product,
			"category":     "Consumer Electronics",
			"hs_code":      "8518.22",
		},
		"market_snapshot": map[string]any{
			"demand":            "High",
			"demand_trend":      "+12%",
			"demand_evidence":   "Search volume and marketplace best-seller ranks up year over year",
			"margin_estimate":   "32%",
			"margin_note":       "After platform fees and returns",
			"margin_trend":      "-2%",
			"competition_level": "Medium",
			"competition_trend": "+5%",
			"market_size_usd":   "$4.2B",
		},
		"landed_cost_breakdown": map[string]any{
			"total_landed_cost_usd": 6400.0,
			"cost_per_unit_usd":     6.4,
			"quantity_basis":        1000.0,
			"cost_components": map[string]any{
				"fob_price_usd":                4200.0,
				"ocean_freight_usd":            950.0,
				"inland_freight_usd":           250.0,
				"customs_duty_usd":             620.0,
				"customs_broker_fee_usd":       150.0,
				"terminal_handling_charge_usd": 180.0,
				"insurance_usd":                50.0,
			},
			"hidden_cost_warnings": []any{
				"Section 301 tariffs may apply depending on origin",
				"Battery shipments need UN38.3 test reports",
			},
		},
		"lead_time_analysis": map[string]any{
			"production_lead_time_days":      "25-30",
			"sea_freight_lead_time_days":     28.0,
			"port_congestion_buffer_days":    4.0,
			"customs_clearance_days":         5.0,
			"inland_delivery_days":           3.0,
			"total_lead_time_days":           65.0,
			"safety_stock_days":              14.0,
			"current_conditions":             "Normal trans-Pacific capacity",
			"recommended_order_advance_days": 80.0,
		},
		"verified_suppliers": []any{
			map[string]any{
				"name":                    "Shenzhen Soundwave Electronics Co., Ltd.",
				"location":                "Shenzhen, Guangdong",
				"region":                  "South China",
				"rating":                  4.8,
				"min_order_qty":           "500 units",
				"price_range_usd":         "$3.80 - $4.60",
				"verified":                true,
				"response_time":           "< 12h",
				"certifications":          []any{"CE", "FCC", "RoHS"},
				"years_in_business":       9.0,
				"estimated_factory_grade": "Tier-1 Factory",
				"trade_assurance":         true,
				"estimated_quality_tier":  "High",
				"risk_notes":              "Peak-season capacity is tight from September",
				"green_flags":             []any{"In-house acoustic lab", "Exports to EU and US brands"},
			},
			map[string]any{
				"name":                    "Dongguan Audiolink Technology",
				"location":                "Dongguan, Guangdong",
				"region":                  "South China",
				"rating":                  4.5,
				"min_order_qty":           "1000 units",
				"price_range_usd":         "$3.20 - $3.90",
				"verified":                true,
				"response_time":           "< 24h",
				"certifications":          []any{"CE", "RoHS"},
				"years_in_business":       5.0,
				"estimated_factory_grade": "Tier-2 Factory",
				"trade_assurance":         false,
				"estimated_quality_tier":  "Medium",
				"risk_notes":              "No FCC certificate on file",
				"green_flags":             []any{"Accepts third-party inspection"},
			},
		},
		"trends_with_evidence": []any{
			map[string]any{"trend": "Waterproof outdoor models growing fastest", "evidence": "IPX7 listings doubled on major marketplaces"},
			map[string]any{"trend": "Private label pressure on mid-tier pricing", "evidence": "Average selling price down 6%"},
		},
		"risk_analysis": map[string]any{
			"overall_risk_score": 35.0,
			"key_risks":          []any{"Certification gaps", "Freight rate volatility"},
		},
		"action_items": []any{
			"Request FCC and UN38.3 reports from both suppliers",
			"Order pre-production samples before committing to MOQ",
			"Book a third-party inspection before shipment",
		},
		"honest_assessment": map[string]any{
			"summary": "Demo data. Figures are illustrative and not based on a live search.",
		},
		"data_transparency": map[string]any{
			"source": "demo dataset",
		},
		"analysis_confidence": 0.6,
	}

	return &models.AnalysisResponse{Success: true, Data: data, Mode: models.ModeGeneral}
}
