// Package normalizer maps the loosely shaped analysis payload returned by the
// model onto the fixed dashboard schema. Every missing field gets a default
// and no input ever makes it fail.
package normalizer

import (
	"math"
	"sort"

	"github.com/markdave123-py/NexSupply/internal/models"
)

// Default cost split used when the payload carries no usable components.
var defaultShares = [4]int{45, 25, 18, 12}

// Normalize builds an AnalysisResult from raw. A nil map is treated as empty.
func Normalize(raw map[string]any) *models.AnalysisResult {
	if raw == nil {
		raw = map[string]any{}
	}

	trends, ok := listOr(raw, "trends_with_evidence")
	if !ok {
		trends = listOrEmpty(raw, "market_trends")
	}
	if trends == nil {
		trends = []any{}
	}

	res := &models.AnalysisResult{
		MarketSnapshot:     marketSnapshot(mapOr(raw, "market_snapshot")),
		LandedCost:         landedCost(mapOr(raw, "landed_cost_breakdown")),
		LeadTime:           leadTime(mapOr(raw, "lead_time_analysis")),
		Suppliers:          suppliers(listOrEmpty(raw, "verified_suppliers")),
		Trends:             trends,
		ProductInfo:        mapOr(raw, "product_info"),
		RiskAssessment:     mapOr(raw, "risk_assessment"),
		RiskAnalysis:       mapOr(raw, "risk_analysis"),
		ActionItems:        listOrEmpty(raw, "action_items"),
		HonestAssessment:   mapOr(raw, "honest_assessment"),
		DataTransparency:   mapOr(raw, "data_transparency"),
		AnalysisConfidence: floatOr(raw, "analysis_confidence", 0.75),
		AnalysisMode:       stringOr(raw, "analysis_mode", ""),
		RawData:            raw,
	}
	return res
}

func marketSnapshot(m map[string]any) models.MarketSnapshot {
	return models.MarketSnapshot{
		Demand:            stringOr(m, "demand", "Medium"),
		DemandChange:      stringOr(m, "demand_trend", "+0%"),
		DemandEvidence:    stringOr(m, "demand_evidence", "Based on marketplace data"),
		Margin:            stringOr(m, "margin_estimate", "25%"),
		MarginNote:        stringOr(m, "margin_note", "After platform fees"),
		MarginChange:      stringOr(m, "margin_trend", "+0%"),
		Competition:       stringOr(m, "competition_level", "Medium"),
		CompetitionChange: stringOr(m, "competition_trend", "+0%"),
		MarketSize:        stringOr(m, "market_size_usd", "$10M"),
	}
}

func landedCost(m map[string]any) models.LandedCost {
	components := mapOr(m, "cost_components")
	lc := models.LandedCost{
		Product:            defaultShares[0],
		Shipping:           defaultShares[1],
		Customs:            defaultShares[2],
		Handling:           defaultShares[3],
		TotalLandedCostUSD: floatOr(m, "total_landed_cost_usd", 0),
		CostPerUnitUSD:     floatOr(m, "cost_per_unit_usd", 0),
		QuantityBasis:      intOr(m, "quantity_basis", 1000),
		Components:         components,
		HiddenCostWarnings: listOrEmpty(m, "hidden_cost_warnings"),
	}
	if len(components) == 0 {
		return lc
	}

	groups := []float64{
		floatOr(components, "fob_price_usd", 0),
		floatOr(components, "ocean_freight_usd", 0) + floatOr(components, "inland_freight_usd", 0),
		floatOr(components, "customs_duty_usd", 0) + floatOr(components, "customs_broker_fee_usd", 0),
		floatOr(components, "terminal_handling_charge_usd", 0) + floatOr(components, "insurance_usd", 0),
	}
	if shares, ok := Percentages(groups); ok {
		lc.Product, lc.Shipping, lc.Customs, lc.Handling = shares[0], shares[1], shares[2], shares[3]
	}
	return lc
}

// Percentages splits 100 points across parts with the largest-remainder
// method so the result always sums to exactly 100. Negative parts count as
// zero. Ties go to the earlier part. It returns false when the parts sum to
// zero or less.
func Percentages(parts []float64) ([]int, bool) {
	var peak float64
	for _, p := range parts {
		if p > peak && !math.IsInf(p, 0) {
			peak = p
		}
	}
	// Parts are scaled to the largest one so huge values cannot overflow the sum.
	clean := make([]float64, len(parts))
	var total float64
	for i, p := range parts {
		if p > 0 && !math.IsInf(p, 0) {
			clean[i] = p / peak
			total += clean[i]
		}
	}
	if total <= 0 || len(parts) == 0 {
		return nil, false
	}

	shares := make([]int, len(parts))
	rema := make([]float64, len(parts))
	assigned := 0
	for i, p := range clean {
		exact := p / total * 100
		shares[i] = int(math.Floor(exact))
		rema[i] = exact - float64(shares[i])
		assigned += shares[i]
	}

	order := make([]int, len(parts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rema[order[a]] > rema[order[b]] })

	for i := 0; assigned < 100; i++ {
		shares[order[i%len(order)]]++
		assigned++
	}
	return shares, true
}

func leadTime(m map[string]any) models.LeadTime {
	return models.LeadTime{
		ProductionDays:          ParseDays(m["production_lead_time_days"], 21),
		ShippingDays:            ParseDays(m["sea_freight_lead_time_days"], 30),
		PortCongestionDays:      ParseDays(m["port_congestion_buffer_days"], 5),
		CustomsDays:             ParseDays(m["customs_clearance_days"], 5),
		DeliveryDays:            ParseDays(m["inland_delivery_days"], 3),
		TotalDays:               ParseDays(m["total_lead_time_days"], 61),
		SafetyStockDays:         ParseDays(m["safety_stock_days"], 14),
		CurrentConditions:       stringOr(m, "current_conditions", ""),
		RecommendedOrderAdvance: ParseDays(m["recommended_order_advance_days"], 75),
	}
}

func suppliers(raw []any) []models.Supplier {
	out := make([]models.Supplier, 0, len(raw))
	for _, entry := range raw {
		s, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, models.Supplier{
			Name:            stringOr(s, "name", "Unknown Supplier"),
			Location:        stringOr(s, "location", "Unknown"),
			Region:          stringOr(s, "region", ""),
			Rating:          floatOr(s, "rating", 4.5),
			MinOrder:        stringOr(s, "min_order_qty", "MOQ varies"),
			PriceRange:      stringOr(s, "price_range_usd", "Contact for pricing"),
			Verified:        boolOr(s, "verified", true),
			ResponseTime:    stringOr(s, "response_time", "< 48h"),
			Certifications:  listOrEmpty(s, "certifications"),
			YearsInBusiness: ParseDays(s["years_in_business"], 3),
			FactoryGrade:    stringOr(s, "estimated_factory_grade", "Tier-2 Factory"),
			TradeAssurance:  boolOr(s, "trade_assurance", false),
			QualityTier:     stringOr(s, "estimated_quality_tier", "Medium"),
			RiskNotes:       stringOr(s, "risk_notes", "No specific risks identified"),
			GreenFlags:      listOrEmpty(s, "green_flags"),
		})
	}
	return out
}
