package analytics

import (
	"sort"

	"trainpulse/pkg/contracts/domain"
)

// clientAggregate is the per-client rollup feeding concentration and
// upsell analysis. Orders without a company name (unmatched customers)
// are excluded, matching dataframe group-bys that drop null keys.
type clientAggregate struct {
	CompanyName       string
	Revenue           float64
	Orders            int
	Participants      int64
	DistinctTrainings int
}

// aggregateClients rolls the filtered orders up per company, ranked by
// revenue descending with company name as the deterministic tie-break.
func aggregateClients(orders []domain.EnrichedOrder) []clientAggregate {
	byName := make(map[string]*clientAggregate)
	trainings := make(map[string]map[string]bool)
	names := make([]string, 0)

	for i := range orders {
		o := &orders[i]
		if o.CompanyName == "" {
			continue
		}
		agg, ok := byName[o.CompanyName]
		if !ok {
			agg = &clientAggregate{CompanyName: o.CompanyName}
			byName[o.CompanyName] = agg
			trainings[o.CompanyName] = make(map[string]bool)
			names = append(names, o.CompanyName)
		}
		agg.Orders++
		if o.TotalRevenue.Valid {
			agg.Revenue += o.TotalRevenue.Value
		}
		if o.Qty.Valid {
			agg.Participants += o.Qty.Value
		}
		if o.TrainingName != "" {
			trainings[o.CompanyName][o.TrainingName] = true
		}
	}

	out := make([]clientAggregate, 0, len(names))
	for _, name := range names {
		agg := byName[name]
		agg.DistinctTrainings = len(trainings[name])
		out = append(out, *agg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].CompanyName < out[j].CompanyName
	})
	return out
}

// computeClientConcentration measures the top client's share of the
// total revenue across all clients. Zero clients report a zero share.
func computeClientConcentration(clients []clientAggregate) ClientConcentration {
	cc := ClientConcentration{Clients: len(clients)}
	if len(clients) == 0 {
		return cc
	}
	var total float64
	for _, c := range clients {
		total += c.Revenue
	}
	cc.TopClient = clients[0].CompanyName
	cc.TopClientSharePct = safeDiv(clients[0].Revenue, total) * 100
	return cc
}
