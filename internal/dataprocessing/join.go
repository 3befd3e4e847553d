package dataprocessing

import (
	"log/slog"

	"trainpulse/pkg/contracts/domain"
)

// JoinStats counts referential gaps observed while enriching. Gaps are
// not errors: unmatched records keep missing enrichment fields.
type JoinStats struct {
	Orders            int `json:"orders"`
	UnmatchedCatalog  int `json:"unmatched_catalog"`
	UnmatchedCustomer int `json:"unmatched_customer"`
}

// Enrich left-joins the normalized orders with the catalog (on
// training_name) and the customers (on customer_id), and derives the
// year/month/quarter time features once per record.
//
// The join is by display name rather than training_id because legacy
// order exports carry only the name. Every order survives regardless of
// join matches: len(result) == len(orders) always.
func Enrich(orders []domain.Order, catalog []domain.TrainingCatalogEntry, customers []domain.Customer, logger *slog.Logger) ([]domain.EnrichedOrder, JoinStats) {
	stats := JoinStats{Orders: len(orders)}

	// First occurrence wins on duplicate keys, mirroring dedup order.
	byTraining := make(map[string]*domain.TrainingCatalogEntry, len(catalog))
	for i := range catalog {
		if _, ok := byTraining[catalog[i].TrainingName]; !ok {
			byTraining[catalog[i].TrainingName] = &catalog[i]
		}
	}
	byCustomer := make(map[string]*domain.Customer, len(customers))
	for i := range customers {
		if _, ok := byCustomer[customers[i].CustomerID]; !ok {
			byCustomer[customers[i].CustomerID] = &customers[i]
		}
	}

	enriched := make([]domain.EnrichedOrder, 0, len(orders))
	for _, o := range orders {
		e := domain.EnrichedOrder{
			Order:   o,
			Year:    o.OrderDate.Year(),
			Month:   domain.MonthLabel(o.OrderDate),
			Quarter: domain.QuarterLabel(o.OrderDate),
		}

		if c, ok := byTraining[o.TrainingName]; ok {
			e.CatalogMatched = true
			e.TrainingID = c.TrainingID
			e.Trainer = c.Trainer
			e.CatalogPrice = c.PricePerPax
			e.MaxPax = c.MaxPax
			e.DurationDays = c.DurationDays
			e.Category = c.Category
		} else {
			stats.UnmatchedCatalog++
		}

		if cu, ok := byCustomer[o.CustomerID]; ok {
			e.CustomerMatched = true
			e.CompanyName = cu.CompanyName
			e.Industry = cu.Industry
			e.City = cu.City
		} else {
			stats.UnmatchedCustomer++
		}

		enriched = append(enriched, e)
	}

	if logger != nil {
		logger.Info("orders enriched",
			slog.Int("orders", stats.Orders),
			slog.Int("unmatched_catalog", stats.UnmatchedCatalog),
			slog.Int("unmatched_customer", stats.UnmatchedCustomer),
		)
	}

	return enriched, stats
}
