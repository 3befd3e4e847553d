package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainpulse/pkg/contracts/domain"
)

// testOrder builds an enriched order with derived time features, the way
// the join produces them. An empty company marks an unmatched customer.
func testOrder(id string, date time.Time, training, company, city string, qty int64, price float64) domain.EnrichedOrder {
	q := domain.IntFrom(qty)
	p := domain.FloatFrom(price)
	return domain.EnrichedOrder{
		Order: domain.Order{
			OrderID:      id,
			OrderDate:    date,
			TrainingName: training,
			Qty:          q,
			PricePerPax:  p,
			TotalRevenue: q.Float().Mul(p),
		},
		CatalogMatched:  true,
		CustomerMatched: company != "",
		CompanyName:     company,
		City:            city,
		Year:            date.Year(),
		Month:           domain.MonthLabel(date),
		Quarter:         domain.QuarterLabel(date),
	}
}

func fixtureOrders() []domain.EnrichedOrder {
	return []domain.EnrichedOrder{
		testOrder("A", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "Leadership", "Acme", "Berlin", 10, 500),
		testOrder("B", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), "Leadership", "Acme", "Berlin", 5, 500),
		testOrder("C", time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), "Data", "Beta", "Munich", 20, 100),
		testOrder("D", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), "Leadership", "Acme", "Berlin", 10, 400),
		testOrder("E", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Excel", "", "", 2, 50),
	}
}

func TestCompute_KPIs(t *testing.T) {
	snap := Compute(fixtureOrders(), Filter{Year: 2024, Cities: []string{"Berlin", "Munich"}})

	require.False(t, snap.Empty)
	assert.InDelta(t, 9500.0, snap.KPIs.TotalRevenue, 1e-9)
	assert.Equal(t, 3, snap.KPIs.TotalOrders)
	assert.Equal(t, int64(35), snap.KPIs.TotalParticipants)
	assert.InDelta(t, 9500.0/3, snap.KPIs.AvgOrderValue, 1e-9)
	assert.InDelta(t, 9500.0/35, snap.KPIs.RevenuePerParticipant, 1e-9)

	// Latest MoM compares 2024-02 (4500) against 2024-01 (5000).
	assert.InDelta(t, -10.0, snap.KPIs.LatestMoMGrowthPct, 1e-9)

	// YoY compares against the same cities in the prior year: 4000 in
	// 2023 vs 9500 in 2024, even though the filter selects only 2024.
	assert.InDelta(t, 137.5, snap.KPIs.YoYGrowthPct, 1e-9)
}

func TestCompute_Series(t *testing.T) {
	snap := Compute(fixtureOrders(), Filter{Year: 2024, Cities: []string{"Berlin", "Munich"}})

	require.Len(t, snap.MonthlyRevenue, 2)
	assert.Equal(t, SeriesPoint{Label: "2024-01", Revenue: 5000}, snap.MonthlyRevenue[0])
	assert.Equal(t, SeriesPoint{Label: "2024-02", Revenue: 4500}, snap.MonthlyRevenue[1])

	require.Len(t, snap.RevenueByCity, 2)
	assert.Equal(t, SeriesPoint{Label: "Berlin", Revenue: 7500}, snap.RevenueByCity[0])
	assert.Equal(t, SeriesPoint{Label: "Munich", Revenue: 2000}, snap.RevenueByCity[1])

	require.Len(t, snap.RevenueByTraining, 2)
	assert.Equal(t, "Leadership", snap.RevenueByTraining[0].Label)
}

func TestCompute_ParetoAndRisk(t *testing.T) {
	snap := Compute(fixtureOrders(), Filter{Year: 2024, Cities: []string{"Berlin", "Munich"}})

	// Leadership alone holds 7500/9500 = 78.9% which stays within the
	// 80% boundary; adding Data would cross it.
	require.Len(t, snap.Pareto.DominantSet, 1)
	assert.Equal(t, "Leadership", snap.Pareto.DominantSet[0].TrainingName)
	assert.InDelta(t, 7500.0/9500*100, snap.Pareto.DominantSharePct, 1e-9)
	assert.Equal(t, 2, snap.Pareto.TotalTrainings)

	assert.Equal(t, "Acme", snap.Clients.TopClient)
	assert.InDelta(t, 7500.0/9500*100, snap.Clients.TopClientSharePct, 1e-9)
	assert.Equal(t, 2, snap.Clients.Clients)

	// Negative MoM and >40% top client share, but the dominant set is
	// half of all trainings so the base is not narrow.
	assert.True(t, snap.Risk.NegativeMoMGrowth)
	assert.True(t, snap.Risk.TopClientConcentration)
	assert.False(t, snap.Risk.NarrowTrainingBase)
	assert.Equal(t, 2, snap.Risk.Score)
	assert.Equal(t, RiskHigh, snap.Risk.Level)
}

func TestCompute_DominantTrainingNarrowsBase(t *testing.T) {
	// One of five trainings holds 90% of revenue. It alone overshoots
	// the 80% boundary, so the dominant set is empty and the narrow-base
	// signal fires. Revenue is spread over enough clients to keep the
	// concentration signal quiet.
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	orders := []domain.EnrichedOrder{
		testOrder("A", jan, "Flagship", "Acme", "Berlin", 3, 100),
		testOrder("B", jan, "Flagship", "Beta", "Berlin", 3, 100),
		testOrder("C", jan, "Flagship", "Gamma", "Berlin", 3, 100),
		testOrder("D", jan, "Niche One", "Delta", "Berlin", 1, 25),
		testOrder("E", jan, "Niche Two", "Echo", "Berlin", 1, 25),
		testOrder("F", jan, "Niche Three", "Foxtrot", "Berlin", 1, 25),
		testOrder("G", jan, "Niche Four", "Golf", "Berlin", 1, 25),
	}

	snap := Compute(orders, Filter{Year: 2024, Cities: []string{"Berlin"}})

	require.False(t, snap.Empty)
	assert.Equal(t, 5, snap.Pareto.TotalTrainings)
	assert.Empty(t, snap.Pareto.DominantSet)
	assert.Zero(t, snap.Pareto.DominantSharePct)

	assert.InDelta(t, 30.0, snap.Clients.TopClientSharePct, 1e-9)

	assert.True(t, snap.Risk.NarrowTrainingBase)
	assert.False(t, snap.Risk.NegativeMoMGrowth)
	assert.False(t, snap.Risk.TopClientConcentration)
	assert.Equal(t, 1, snap.Risk.Score)
	assert.Equal(t, RiskModerate, snap.Risk.Level)
}

func TestCompute_Upsell(t *testing.T) {
	snap := Compute(fixtureOrders(), Filter{Year: 2024, Cities: []string{"Berlin", "Munich"}})

	// Acme clears the revenue floor with only one distinct training.
	require.Len(t, snap.ClientUpsell, 1)
	assert.Equal(t, "Acme", snap.ClientUpsell[0].CompanyName)
	assert.Equal(t, 2, snap.ClientUpsell[0].Orders)
	assert.Equal(t, 1, snap.ClientUpsell[0].DistinctTrainings)

	// Leadership fails the order-count ceiling, Data the revenue floor.
	assert.Empty(t, snap.TrainingUpsell)

	// Both clients blend to 0.75; ties break on name.
	require.Len(t, snap.UpsellScores, 2)
	assert.Equal(t, "Acme", snap.UpsellScores[0].CompanyName)
	assert.Equal(t, "Beta", snap.UpsellScores[1].CompanyName)
	assert.InDelta(t, 0.75, snap.UpsellScores[0].Score, 1e-9)
	assert.InDelta(t, 0.75, snap.UpsellScores[1].Score, 1e-9)
}

func TestCompute_EmptyFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
	}{
		{name: "no cities selected", filter: Filter{Year: 2024}},
		{name: "year without data", filter: Filter{Year: 2020, Cities: []string{"Berlin"}}},
		{name: "city without data", filter: Filter{Year: 2024, Cities: []string{"Paris"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Compute(fixtureOrders(), tt.filter)
			assert.True(t, snap.Empty)
			assert.Zero(t, snap.KPIs.TotalRevenue)
			assert.Zero(t, snap.KPIs.TotalOrders)
			assert.Equal(t, RiskLow, snap.Risk.Level)
			assert.Empty(t, snap.MonthlyRevenue)
		})
	}
}

func TestCompute_UnknownCityBucket(t *testing.T) {
	// Orders with unmatched customers are reachable only through the
	// explicit unknown bucket.
	snap := Compute(fixtureOrders(), Filter{Year: 2024, Cities: []string{UnknownCity}})

	require.False(t, snap.Empty)
	assert.Equal(t, 1, snap.KPIs.TotalOrders)
	assert.InDelta(t, 100.0, snap.KPIs.TotalRevenue, 1e-9)
	require.Len(t, snap.RevenueByCity, 1)
	assert.Equal(t, UnknownCity, snap.RevenueByCity[0].Label)

	// No company name means no client aggregates.
	assert.Equal(t, 0, snap.Clients.Clients)
	assert.Empty(t, snap.UpsellScores)
}

func TestCompute_MissingRevenueExcludedFromSums(t *testing.T) {
	orders := fixtureOrders()
	// An order whose qty failed coercion contributes its count but no
	// revenue or participants.
	broken := testOrder("F", time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC), "Data", "Beta", "Munich", 0, 100)
	broken.Qty = domain.Int{}
	broken.TotalRevenue = domain.Float{}
	orders = append(orders, broken)

	snap := Compute(orders, Filter{Year: 2024, Cities: []string{"Berlin", "Munich"}})
	assert.Equal(t, 4, snap.KPIs.TotalOrders)
	assert.InDelta(t, 9500.0, snap.KPIs.TotalRevenue, 1e-9)
	assert.Equal(t, int64(35), snap.KPIs.TotalParticipants)
}

func TestComputePareto_Boundaries(t *testing.T) {
	t.Run("single training above 80% yields empty dominant set", func(t *testing.T) {
		p := computePareto([]SeriesPoint{{Label: "Only", Revenue: 1000}})
		assert.Empty(t, p.DominantSet)
		assert.Equal(t, 1, p.TotalTrainings)
		assert.Zero(t, p.DominantSharePct)
	})

	t.Run("zero revenue", func(t *testing.T) {
		p := computePareto([]SeriesPoint{{Label: "A", Revenue: 0}})
		assert.Empty(t, p.DominantSet)
	})

	t.Run("exactly 80% stays in the set", func(t *testing.T) {
		p := computePareto([]SeriesPoint{
			{Label: "A", Revenue: 80},
			{Label: "B", Revenue: 20},
		})
		require.Len(t, p.DominantSet, 1)
		assert.InDelta(t, 80.0, p.DominantSharePct, 1e-9)
	})
}

func TestAssessRisk_Levels(t *testing.T) {
	tests := []struct {
		name      string
		mom       float64
		topShare  float64
		pareto    Pareto
		wantScore int
		wantLevel RiskLevel
	}{
		{
			name: "all clear", mom: 5, topShare: 20,
			pareto:    Pareto{DominantSet: make([]ParetoEntry, 4), TotalTrainings: 10},
			wantScore: 0, wantLevel: RiskLow,
		},
		{
			name: "one signal", mom: -1, topShare: 20,
			pareto:    Pareto{DominantSet: make([]ParetoEntry, 4), TotalTrainings: 10},
			wantScore: 1, wantLevel: RiskModerate,
		},
		{
			name: "all signals", mom: -1, topShare: 55,
			pareto:    Pareto{DominantSet: make([]ParetoEntry, 2), TotalTrainings: 10},
			wantScore: 3, wantLevel: RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := assessRisk(tt.mom, ClientConcentration{TopClientSharePct: tt.topShare}, tt.pareto)
			assert.Equal(t, tt.wantScore, r.Score)
			assert.Equal(t, tt.wantLevel, r.Level)
		})
	}
}
