package analytics

import (
	"trainpulse/pkg/contracts/domain"
)

// yoyGrowth computes year-over-year revenue growth for the selected year
// from the city-filtered (but not year-filtered) order set. A year with
// no prior year in the series, or a zero prior year, reports 0.
func yoyGrowth(cityFiltered []domain.EnrichedOrder, year int) float64 {
	yearly := make(map[int]float64)
	for i := range cityFiltered {
		if cityFiltered[i].TotalRevenue.Valid {
			yearly[cityFiltered[i].Year] += cityFiltered[i].TotalRevenue.Value
		}
	}
	prev, ok := yearly[year-1]
	if !ok {
		return 0
	}
	return pctChange(prev, yearly[year])
}

// latestMoMGrowth computes month-over-month growth between the two most
// recent buckets of an ascending monthly series. Fewer than two months
// of data report 0.
func latestMoMGrowth(monthly []SeriesPoint) float64 {
	if len(monthly) < 2 {
		return 0
	}
	prev := monthly[len(monthly)-2].Revenue
	cur := monthly[len(monthly)-1].Revenue
	return pctChange(prev, cur)
}
