package models

// MarketSnapshot is the headline market card of the dashboard.
type MarketSnapshot struct {
	Demand            string `json:"demand"`
	DemandChange      string `json:"demand_change"`
	DemandEvidence    string `json:"demand_evidence"`
	Margin            string `json:"margin"`
	MarginNote        string `json:"margin_note"`
	MarginChange      string `json:"margin_change"`
	Competition       string `json:"competition"`
	CompetitionChange string `json:"competition_change"`
	MarketSize        string `json:"market_size"`
}

// LandedCost holds the cost split in whole percentages plus the absolute figures.
type LandedCost struct {
	Product            int            `json:"product"`
	Shipping           int            `json:"shipping"`
	Customs            int            `json:"customs"`
	Handling           int            `json:"handling"`
	TotalLandedCostUSD float64        `json:"total_landed_cost_usd"`
	CostPerUnitUSD     float64        `json:"cost_per_unit_usd"`
	QuantityBasis      int            `json:"quantity_basis"`
	Components         map[string]any `json:"components"`
	HiddenCostWarnings []any          `json:"hidden_cost_warnings"`
}

// LeadTime is expressed in days.
type LeadTime struct {
	ProductionDays          int    `json:"production_days"`
	ShippingDays            int    `json:"shipping_days"`
	PortCongestionDays      int    `json:"port_congestion_days"`
	CustomsDays             int    `json:"customs_days"`
	DeliveryDays            int    `json:"delivery_days"`
	TotalDays               int    `json:"total_days"`
	SafetyStockDays         int    `json:"safety_stock_days"`
	CurrentConditions       string `json:"current_conditions"`
	RecommendedOrderAdvance int    `json:"order_advance_days"`
}

type Supplier struct {
	Name            string  `json:"name"`
	Location        string  `json:"location"`
	Region          string  `json:"region"`
	Rating          float64 `json:"rating"`
	MinOrder        string  `json:"min_order"`
	PriceRange      string  `json:"price_range"`
	Verified        bool    `json:"verified"`
	ResponseTime    string  `json:"response_time"`
	Certifications  []any   `json:"certifications"`
	YearsInBusiness int     `json:"years_in_business"`
	FactoryGrade    string  `json:"factory_grade"`
	TradeAssurance  bool    `json:"trade_assurance"`
	QualityTier     string  `json:"quality_tier"`
	RiskNotes       string  `json:"risk_notes"`
	GreenFlags      []any   `json:"green_flags"`
}

// AnalysisResult is the fixed shape the dashboard renders. It lives in the
// session only and is never written to the database.
type AnalysisResult struct {
	MarketSnapshot     MarketSnapshot `json:"market_snapshot"`
	LandedCost         LandedCost     `json:"landed_cost"`
	LeadTime           LeadTime       `json:"lead_time"`
	Suppliers          []Supplier     `json:"suppliers"`
	Trends             []any          `json:"trends"`
	ProductInfo        map[string]any `json:"product_info"`
	RiskAssessment     map[string]any `json:"risk_assessment"`
	RiskAnalysis       map[string]any `json:"risk_analysis"`
	ActionItems        []any          `json:"action_items"`
	HonestAssessment   map[string]any `json:"honest_assessment"`
	DataTransparency   map[string]any `json:"data_transparency"`
	AnalysisConfidence float64        `json:"analysis_confidence"`
	AnalysisMode       string         `json:"analysis_mode,omitempty"`
	RawData            map[string]any `json:"raw_data"`
}

// Analysis modes selected by the quick-start templates.
const (
	ModeGeneral  = "general"
	ModeVerify   = "verify"
	ModeCost     = "cost"
	ModeMarket   = "market"
	ModeLeadTime = "leadtime"
)

// AnalysisInput is what the AI collaborator receives.
type AnalysisInput struct {
	Query        string `json:"query"`
	ContextQuery string `json:"context_query,omitempty"`
	FileBytes    []byte `json:"-"`
	FileMIMEType string `json:"file_mime_type,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	Mode         string `json:"mode,omitempty"`
}

// AnalysisResponse is the AI collaborator's envelope. Data is the raw
// structured mapping before normalization.
type AnalysisResponse struct {
	Success      bool           `json:"success"`
	Data         map[string]any `json:"data,omitempty"`
	Mode         string         `json:"mode,omitempty"`
	Error        string         `json:"error,omitempty"`
	ErrorDetails string         `json:"error_details,omitempty"`
}
