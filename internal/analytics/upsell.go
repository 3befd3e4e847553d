package analytics

import (
	"sort"

	"trainpulse/pkg/contracts/domain"
)

// clientUpsellCandidates selects clients whose revenue is at or above
// the 60th percentile but whose buying pattern is thin: order count at
// or below the median, or two or fewer distinct trainings purchased.
// Already ranked by revenue descending from the aggregation.
func clientUpsellCandidates(clients []clientAggregate) []ClientUpsellCandidate {
	if len(clients) == 0 {
		return nil
	}

	revenues := make([]float64, len(clients))
	orderCounts := make([]float64, len(clients))
	for i, c := range clients {
		revenues[i] = c.Revenue
		orderCounts[i] = float64(c.Orders)
	}
	revFloor := percentile(revenues, 60)
	medianOrders := median(orderCounts)

	var out []ClientUpsellCandidate
	for _, c := range clients {
		if c.Revenue >= revFloor && (float64(c.Orders) <= medianOrders || c.DistinctTrainings <= 2) {
			out = append(out, ClientUpsellCandidate{
				CompanyName:       c.CompanyName,
				Revenue:           c.Revenue,
				Orders:            c.Orders,
				DistinctTrainings: c.DistinctTrainings,
			})
		}
	}
	return out
}

// trainingAggregate is the per-training rollup for upsell selection.
type trainingAggregate struct {
	TrainingName string
	Revenue      float64
	Orders       int
	Participants int64
}

// trainingUpsellCandidates selects trainings earning at or above the
// 60th revenue percentile from at-or-below-median order counts with
// at-or-above-median participation: few but well-filled sessions.
func trainingUpsellCandidates(orders []domain.EnrichedOrder) []TrainingUpsellCandidate {
	byName := make(map[string]*trainingAggregate)
	names := make([]string, 0)
	for i := range orders {
		o := &orders[i]
		if o.TrainingName == "" {
			continue
		}
		agg, ok := byName[o.TrainingName]
		if !ok {
			agg = &trainingAggregate{TrainingName: o.TrainingName}
			byName[o.TrainingName] = agg
			names = append(names, o.TrainingName)
		}
		agg.Orders++
		if o.TotalRevenue.Valid {
			agg.Revenue += o.TotalRevenue.Value
		}
		if o.Qty.Valid {
			agg.Participants += o.Qty.Value
		}
	}
	if len(names) == 0 {
		return nil
	}

	aggs := make([]trainingAggregate, 0, len(names))
	for _, name := range names {
		aggs = append(aggs, *byName[name])
	}
	sort.SliceStable(aggs, func(i, j int) bool {
		if aggs[i].Revenue != aggs[j].Revenue {
			return aggs[i].Revenue > aggs[j].Revenue
		}
		return aggs[i].TrainingName < aggs[j].TrainingName
	})

	revenues := make([]float64, len(aggs))
	orderCounts := make([]float64, len(aggs))
	participants := make([]float64, len(aggs))
	for i, a := range aggs {
		revenues[i] = a.Revenue
		orderCounts[i] = float64(a.Orders)
		participants[i] = float64(a.Participants)
	}
	revFloor := percentile(revenues, 60)
	medianOrders := median(orderCounts)
	medianParticipants := median(participants)

	var out []TrainingUpsellCandidate
	for _, a := range aggs {
		if a.Revenue >= revFloor && float64(a.Orders) <= medianOrders && float64(a.Participants) >= medianParticipants {
			out = append(out, TrainingUpsellCandidate{
				TrainingName: a.TrainingName,
				Revenue:      a.Revenue,
				Orders:       a.Orders,
				Participants: a.Participants,
			})
		}
	}
	return out
}

// upsellScores blends the percentile ranks of client revenue and client
// participation half-and-half, descending. A high score marks a client
// that is big on both axes relative to peers.
func upsellScores(clients []clientAggregate) []UpsellScore {
	if len(clients) == 0 {
		return nil
	}

	revenues := make([]float64, len(clients))
	participants := make([]float64, len(clients))
	for i, c := range clients {
		revenues[i] = c.Revenue
		participants[i] = float64(c.Participants)
	}
	revRanks := rankPct(revenues)
	paxRanks := rankPct(participants)

	out := make([]UpsellScore, len(clients))
	for i, c := range clients {
		out[i] = UpsellScore{
			CompanyName: c.CompanyName,
			Score:       0.5*revRanks[i] + 0.5*paxRanks[i],
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CompanyName < out[j].CompanyName
	})
	return out
}
