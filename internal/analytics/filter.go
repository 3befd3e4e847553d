package analytics

import (
	"trainpulse/pkg/contracts/domain"
)

// cityOf maps an enriched order to its filterable city bucket. Orders
// whose customer did not match during the join have no city and fall in
// the UnknownCity bucket.
func cityOf(e *domain.EnrichedOrder) string {
	if !e.CustomerMatched || e.City == "" {
		return UnknownCity
	}
	return e.City
}

// citySet builds a membership set from the filter's cities.
func (f Filter) citySet() map[string]bool {
	set := make(map[string]bool, len(f.Cities))
	for _, c := range f.Cities {
		set[c] = true
	}
	return set
}

// Matches reports whether the order falls inside the filter: exact year
// match and city membership. UnknownCity must be explicitly selected for
// unmatched-customer orders to be included.
func (f Filter) Matches(e *domain.EnrichedOrder) bool {
	return e.Year == f.Year && f.citySet()[cityOf(e)]
}

// apply returns the orders matching the filter, preserving input order.
func (f Filter) apply(orders []domain.EnrichedOrder) []domain.EnrichedOrder {
	set := f.citySet()
	out := make([]domain.EnrichedOrder, 0, len(orders))
	for i := range orders {
		if orders[i].Year == f.Year && set[cityOf(&orders[i])] {
			out = append(out, orders[i])
		}
	}
	return out
}

// applyCities filters by city only, keeping all years. The YoY series is
// built from this set so a year filter cannot hide its own baseline.
func (f Filter) applyCities(orders []domain.EnrichedOrder) []domain.EnrichedOrder {
	set := f.citySet()
	out := make([]domain.EnrichedOrder, 0, len(orders))
	for i := range orders {
		if set[cityOf(&orders[i])] {
			out = append(out, orders[i])
		}
	}
	return out
}
