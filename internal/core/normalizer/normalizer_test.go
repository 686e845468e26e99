package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestNormalizeEmptyPayloadUsesDefaults(t *testing.T) {
	res := Normalize(map[string]any{})

	assert.Equal(t, "Medium", res.MarketSnapshot.Demand)
	assert.Equal(t, "+0%", res.MarketSnapshot.DemandChange)
	assert.Equal(t, "Based on marketplace data", res.MarketSnapshot.DemandEvidence)
	assert.Equal(t, "25%", res.MarketSnapshot.Margin)
	assert.Equal(t, "After platform fees", res.MarketSnapshot.MarginNote)
	assert.Equal(t, "$10M", res.MarketSnapshot.MarketSize)

	assert.Equal(t, 45, res.LandedCost.Product)
	assert.Equal(t, 25, res.LandedCost.Shipping)
	assert.Equal(t, 18, res.LandedCost.Customs)
	assert.Equal(t, 12, res.LandedCost.Handling)
	assert.Equal(t, 1000, res.LandedCost.QuantityBasis)
	assert.NotNil(t, res.LandedCost.Components)
	assert.NotNil(t, res.LandedCost.HiddenCostWarnings)

	assert.Equal(t, 21, res.LeadTime.ProductionDays)
	assert.Equal(t, 30, res.LeadTime.ShippingDays)
	assert.Equal(t, 5, res.LeadTime.PortCongestionDays)
	assert.Equal(t, 5, res.LeadTime.CustomsDays)
	assert.Equal(t, 3, res.LeadTime.DeliveryDays)
	assert.Equal(t, 61, res.LeadTime.TotalDays)
	assert.Equal(t, 14, res.LeadTime.SafetyStockDays)
	assert.Equal(t, 75, res.LeadTime.RecommendedOrderAdvance)

	assert.Empty(t, res.Suppliers)
	assert.NotNil(t, res.Suppliers)
	assert.NotNil(t, res.Trends)
	assert.NotNil(t, res.ActionItems)
	assert.NotNil(t, res.ProductInfo)
	assert.NotNil(t, res.DataTransparency)
	assert.InDelta(t, 0.75, res.AnalysisConfidence, 1e-9)
}

func TestNormalizeNilPayload(t *testing.T) {
	res := Normalize(nil)
	require.NotNil(t, res)
	assert.Equal(t, 45, res.LandedCost.Product)
	assert.NotNil(t, res.RawData)
}

func TestNormalizeEveryDocumentedKeyPresent(t *testing.T) {
	b, err := json.Marshal(Normalize(nil))
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))

	for _, key := range []string{
		"market_snapshot", "landed_cost", "lead_time", "suppliers", "trends",
		"product_info", "risk_assessment", "risk_analysis", "action_items",
		"honest_assessment", "data_transparency", "analysis_confidence", "raw_data",
	} {
		assert.Contains(t, out, key)
	}
	lc := out["landed_cost"].(map[string]any)
	for _, key := range []string{"product", "shipping", "customs", "handling", "total_landed_cost_usd", "cost_per_unit_usd", "quantity_basis", "components", "hidden_cost_warnings"} {
		assert.Contains(t, lc, key)
	}
}

func TestNormalizeRecomputesSharesFromComponents(t *testing.T) {
	raw := decode(t, `{
		"landed_cost_breakdown": {
			"total_landed_cost_usd": 8000,
			"cost_per_unit_usd": 8,
			"cost_components": {
				"fob_price_usd": 40,
				"ocean_freight_usd": 15, "inland_freight_usd": 5,
				"customs_duty_usd": 10, "customs_broker_fee_usd": 5,
				"terminal_handling_charge_usd": 3, "insurance_usd": 2
			}
		}
	}`)

	lc := Normalize(raw).LandedCost

	assert.Equal(t, []int{50, 25, 19, 6}, []int{lc.Product, lc.Shipping, lc.Customs, lc.Handling})
	assert.Equal(t, 100, lc.Product+lc.Shipping+lc.Customs+lc.Handling)
	assert.InDelta(t, 8000, lc.TotalLandedCostUSD, 1e-9)
	assert.Contains(t, lc.Components, "fob_price_usd")
}

func TestNormalizeZeroComponentsKeepDefaults(t *testing.T) {
	raw := decode(t, `{"landed_cost_breakdown": {"cost_components": {"fob_price_usd": 0}}}`)
	lc := Normalize(raw).LandedCost
	assert.Equal(t, []int{45, 25, 18, 12}, []int{lc.Product, lc.Shipping, lc.Customs, lc.Handling})
}

func TestPercentagesAlwaysSumTo100(t *testing.T) {
	cases := [][]float64{
		{1, 1, 1},
		{40, 20, 15, 5},
		{0.1, 0.2, 0.3, 0.4},
		{1, 0, 0, 0},
		{33, 33, 33, 1},
		{7, 11, 13, 17},
		{-5, 10, 10, 0},
	}
	for _, parts := range cases {
		shares, ok := Percentages(parts)
		require.True(t, ok, "%v", parts)
		sum := 0
		for _, s := range shares {
			assert.GreaterOrEqual(t, s, 0)
			sum += s
		}
		assert.Equal(t, 100, sum, "%v -> %v", parts, shares)
	}
}

func TestPercentagesTiesGoToEarlierPart(t *testing.T) {
	shares, ok := Percentages([]float64{1, 1, 1})
	require.True(t, ok)
	assert.Equal(t, []int{34, 33, 33}, shares)
}

func TestPercentagesHugeParts(t *testing.T) {
	shares, ok := Percentages([]float64{1e308, 1e308, 0, 0})
	require.True(t, ok)
	assert.Equal(t, []int{50, 50, 0, 0}, shares)

	shares, ok = Percentages([]float64{1e308, 5e307, 0, 5e307})
	require.True(t, ok)
	assert.Equal(t, []int{50, 25, 0, 25}, shares)
}

func TestNormalizeDropsNonFiniteNumbers(t *testing.T) {
	res := Normalize(decode(t, `{
		"analysis_confidence": "NaN",
		"verified_suppliers": [{"name": "Acme", "rating": "inf"}],
		"landed_cost_breakdown": {"cost_components": {"fob_price_usd": "Infinity", "ocean_freight_usd": 10}}
	}`))

	assert.InDelta(t, 0.75, res.AnalysisConfidence, 1e-9)
	require.Len(t, res.Suppliers, 1)
	assert.InDelta(t, 4.5, res.Suppliers[0].Rating, 1e-9)

	_, err := json.Marshal(res)
	assert.NoError(t, err)
}

func TestPercentagesRejectsNonPositiveTotal(t *testing.T) {
	_, ok := Percentages([]float64{0, 0, 0, 0})
	assert.False(t, ok)
	_, ok = Percentages([]float64{-1, -2})
	assert.False(t, ok)
	_, ok = Percentages(nil)
	assert.False(t, ok)
}

func TestNormalizeLeadTimeRanges(t *testing.T) {
	raw := decode(t, `{"lead_time_analysis": {
		"production_lead_time_days": "45-60",
		"sea_freight_lead_time_days": "25–35",
		"customs_clearance_days": 7.9,
		"total_lead_time_days": "soon",
		"current_conditions": "Peak season"
	}}`)

	lt := Normalize(raw).LeadTime

	assert.Equal(t, 45, lt.ProductionDays)
	assert.Equal(t, 25, lt.ShippingDays)
	assert.Equal(t, 7, lt.CustomsDays)
	assert.Equal(t, 61, lt.TotalDays)
	assert.Equal(t, "Peak season", lt.CurrentConditions)
}

func TestNormalizeSuppliersPartialAndJunk(t *testing.T) {
	raw := decode(t, `{"verified_suppliers": [
		{"name": "Shenzhen Audio Co", "rating": 4.8, "min_order_qty": "500 units", "trade_assurance": true},
		"not a supplier",
		{}
	]}`)

	sup := Normalize(raw).Suppliers

	require.Len(t, sup, 2)
	assert.Equal(t, "Shenzhen Audio Co", sup[0].Name)
	assert.InDelta(t, 4.8, sup[0].Rating, 1e-9)
	assert.Equal(t, "500 units", sup[0].MinOrder)
	assert.True(t, sup[0].TradeAssurance)
	assert.Equal(t, "Contact for pricing", sup[0].PriceRange)

	assert.Equal(t, "Unknown Supplier", sup[1].Name)
	assert.Equal(t, "Unknown", sup[1].Location)
	assert.True(t, sup[1].Verified)
	assert.Equal(t, "< 48h", sup[1].ResponseTime)
	assert.Equal(t, 3, sup[1].YearsInBusiness)
	assert.Equal(t, "Tier-2 Factory", sup[1].FactoryGrade)
	assert.Equal(t, "Medium", sup[1].QualityTier)
	assert.Equal(t, "No specific risks identified", sup[1].RiskNotes)
	assert.NotNil(t, sup[1].Certifications)
}

func TestNormalizeTrendsFallback(t *testing.T) {
	res := Normalize(decode(t, `{"market_trends": ["a", "b"]}`))
	assert.Len(t, res.Trends, 2)

	res = Normalize(decode(t, `{"trends_with_evidence": [{"trend": "x"}], "market_trends": ["a", "b"]}`))
	assert.Len(t, res.Trends, 1)
}

func TestNormalizeWrongTypesDoNotPanic(t *testing.T) {
	raw := decode(t, `{
		"market_snapshot": "oops",
		"landed_cost_breakdown": [1, 2],
		"lead_time_analysis": 12,
		"verified_suppliers": {"name": "x"},
		"analysis_confidence": "0.9"
	}`)

	var res = Normalize(raw)
	assert.Equal(t, "Medium", res.MarketSnapshot.Demand)
	assert.Equal(t, 45, res.LandedCost.Product)
	assert.Equal(t, 21, res.LeadTime.ProductionDays)
	assert.Empty(t, res.Suppliers)
	assert.InDelta(t, 0.9, res.AnalysisConfidence, 1e-9)
}

func TestParseDays(t *testing.T) {
	assert.Equal(t, 45, ParseDays("45-60", 0))
	assert.Equal(t, 45, ParseDays("45–60", 0))
	assert.Equal(t, 30, ParseDays("30", 0))
	assert.Equal(t, 30, ParseDays(" 30 ", 0))
	assert.Equal(t, 12, ParseDays(12.7, 0))
	assert.Equal(t, 9, ParseDays(nil, 9))
	assert.Equal(t, 9, ParseDays(0.0, 9))
	assert.Equal(t, 9, ParseDays("two weeks", 9))
	assert.Equal(t, 9, ParseDays(true, 9))
	assert.Equal(t, 21, ParseDays(json.Number("21"), 0))
}
