package analytics

import (
	"sort"

	"trainpulse/pkg/contracts/domain"
)

// groupRevenue sums valid revenue per key and returns the buckets ranked
// by revenue descending. Ties break on key ascending so the ranking is
// deterministic. Empty keys are skipped, matching dataframe group-bys
// that drop null keys.
func groupRevenue(orders []domain.EnrichedOrder, key func(*domain.EnrichedOrder) string) []SeriesPoint {
	sums := make(map[string]float64)
	order := make([]string, 0)
	for i := range orders {
		k := key(&orders[i])
		if k == "" {
			continue
		}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		if orders[i].TotalRevenue.Valid {
			sums[k] += orders[i].TotalRevenue.Value
		}
	}

	points := make([]SeriesPoint, 0, len(order))
	for _, k := range order {
		points = append(points, SeriesPoint{Label: k, Revenue: sums[k]})
	}
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Revenue != points[j].Revenue {
			return points[i].Revenue > points[j].Revenue
		}
		return points[i].Label < points[j].Label
	})
	return points
}

// bucketRevenue sums valid revenue per key and returns the buckets in
// ascending label order, for time series.
func bucketRevenue(orders []domain.EnrichedOrder, key func(*domain.EnrichedOrder) string) []SeriesPoint {
	points := groupRevenue(orders, key)
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })
	return points
}

// sumRevenue totals the valid revenue values.
func sumRevenue(orders []domain.EnrichedOrder) float64 {
	var total float64
	for i := range orders {
		if orders[i].TotalRevenue.Valid {
			total += orders[i].TotalRevenue.Value
		}
	}
	return total
}

// sumParticipants totals the valid qty values.
func sumParticipants(orders []domain.EnrichedOrder) int64 {
	var total int64
	for i := range orders {
		if orders[i].Qty.Valid {
			total += orders[i].Qty.Value
		}
	}
	return total
}
