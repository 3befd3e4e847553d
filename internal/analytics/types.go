package analytics

import (
	"time"
)

// UnknownCity is the selectable bucket for orders whose customer did not
// match during the join. It only appears in filter options when enabled
// in configuration; by default such orders are excluded from every
// filtered view, matching the legacy dashboards.
const UnknownCity = "(unknown)"

// Filter selects the slice of the enriched order set a snapshot covers:
// one calendar year and a non-empty set of cities.
type Filter struct {
	Year   int      `json:"year"`
	Cities []string `json:"cities"`
}

// KPISet holds the headline scalar metrics of a filtered view.
type KPISet struct {
	TotalRevenue          float64 `json:"total_revenue"`
	TotalOrders           int     `json:"total_orders"`
	TotalParticipants     int64   `json:"total_participants"`
	AvgOrderValue         float64 `json:"avg_order_value"`
	RevenuePerParticipant float64 `json:"revenue_per_participant"`
	YoYGrowthPct          float64 `json:"yoy_growth_pct"`
	LatestMoMGrowthPct    float64 `json:"latest_mom_growth_pct"`
}

// SeriesPoint is one bucket of a chart series.
type SeriesPoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

// ParetoEntry is one ranked training in the concentration analysis.
type ParetoEntry struct {
	TrainingName       string  `json:"training_name"`
	Revenue            float64 `json:"revenue"`
	SharePct           float64 `json:"share_pct"`
	CumulativeSharePct float64 `json:"cumulative_share_pct"`
}

// Pareto is the 80/20 concentration result: the minimal ranked prefix of
// trainings whose cumulative revenue share stays within 80%.
type Pareto struct {
	DominantSet      []ParetoEntry `json:"dominant_set"`
	TotalTrainings   int           `json:"total_trainings"`
	DominantSharePct float64       `json:"dominant_share_pct"`
}

// ClientConcentration measures dependency on the single largest client.
type ClientConcentration struct {
	TopClient         string  `json:"top_client"`
	TopClientSharePct float64 `json:"top_client_share_pct"`
	Clients           int     `json:"clients"`
}

// RiskLevel buckets the integer risk score for display.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// RiskAssessment is the heuristic business risk score in [0,3] with the
// individual signals that contributed to it.
type RiskAssessment struct {
	Score                  int       `json:"score"`
	Level                  RiskLevel `json:"level"`
	NegativeMoMGrowth      bool      `json:"negative_mom_growth"`
	TopClientConcentration bool      `json:"top_client_concentration"`
	NarrowTrainingBase     bool      `json:"narrow_training_base"`
}

// ClientUpsellCandidate is a high-revenue client that buys infrequently
// or narrowly and is therefore worth an account expansion conversation.
type ClientUpsellCandidate struct {
	CompanyName       string  `json:"company_name"`
	Revenue           float64 `json:"revenue"`
	Orders            int     `json:"orders"`
	DistinctTrainings int     `json:"distinct_trainings"`
}

// TrainingUpsellCandidate is a training that earns well from few but
// large orders, suggesting headroom for more sessions.
type TrainingUpsellCandidate struct {
	TrainingName string  `json:"training_name"`
	Revenue      float64 `json:"revenue"`
	Orders       int     `json:"orders"`
	Participants int64   `json:"participants"`
}

// UpsellScore is the alternate percentile-rank blend ranking per client.
type UpsellScore struct {
	CompanyName string  `json:"company_name"`
	Score       float64 `json:"score"`
}

// Snapshot is the complete, read-only result of one filter application.
// The presentation layer renders it as-is and must not mutate it.
type Snapshot struct {
	Filter      Filter    `json:"filter"`
	GeneratedAt time.Time `json:"generated_at"`

	// Empty is true when the filter matched zero orders. All metrics are
	// zero-valued in that case.
	Empty bool `json:"empty"`

	KPIs    KPISet              `json:"kpis"`
	Pareto  Pareto              `json:"pareto"`
	Clients ClientConcentration `json:"clients"`
	Risk    RiskAssessment      `json:"risk"`

	ClientUpsell   []ClientUpsellCandidate   `json:"client_upsell"`
	TrainingUpsell []TrainingUpsellCandidate `json:"training_upsell"`
	UpsellScores   []UpsellScore             `json:"upsell_scores"`

	MonthlyRevenue    []SeriesPoint `json:"monthly_revenue"`
	RevenueByCity     []SeriesPoint `json:"revenue_by_city"`
	RevenueByTraining []SeriesPoint `json:"revenue_by_training"`
}
