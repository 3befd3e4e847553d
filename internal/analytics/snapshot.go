package analytics

import (
	"time"

	"trainpulse/pkg/contracts/domain"
)

// Compute runs the full metrics engine over the enriched order set for
// one filter application and returns a read-only snapshot. It never
// fails: an empty filtered set yields a zero-valued snapshot with Empty
// set, and every ratio defaults to 0 rather than faulting.
func Compute(orders []domain.EnrichedOrder, f Filter) *Snapshot {
	snap := &Snapshot{
		Filter:      f,
		GeneratedAt: time.Now().UTC(),
	}

	filtered := f.apply(orders)
	if len(filtered) == 0 {
		snap.Empty = true
		snap.Risk.Level = RiskLow
		return snap
	}

	monthly := bucketRevenue(filtered, func(e *domain.EnrichedOrder) string { return e.Month })
	byTraining := groupRevenue(filtered, func(e *domain.EnrichedOrder) string { return e.TrainingName })
	byCity := groupRevenue(filtered, cityOf)

	totalRevenue := sumRevenue(filtered)
	totalOrders := len(filtered)
	totalParticipants := sumParticipants(filtered)
	momGrowth := latestMoMGrowth(monthly)

	snap.KPIs = KPISet{
		TotalRevenue:          totalRevenue,
		TotalOrders:           totalOrders,
		TotalParticipants:     totalParticipants,
		AvgOrderValue:         safeDiv(totalRevenue, float64(totalOrders)),
		RevenuePerParticipant: safeDiv(totalRevenue, float64(totalParticipants)),
		YoYGrowthPct:          yoyGrowth(f.applyCities(orders), f.Year),
		LatestMoMGrowthPct:    momGrowth,
	}

	clients := aggregateClients(filtered)

	snap.Pareto = computePareto(byTraining)
	snap.Clients = computeClientConcentration(clients)
	snap.Risk = assessRisk(momGrowth, snap.Clients, snap.Pareto)
	snap.ClientUpsell = clientUpsellCandidates(clients)
	snap.TrainingUpsell = trainingUpsellCandidates(filtered)
	snap.UpsellScores = upsellScores(clients)
	snap.MonthlyRevenue = monthly
	snap.RevenueByCity = byCity
	snap.RevenueByTraining = byTraining

	return snap
}
