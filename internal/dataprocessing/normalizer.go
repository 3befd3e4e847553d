package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trainpulse/pkg/contracts/domain"
)

// CustomerKey selects the natural key used to deduplicate customers.
// The sources disagree: some exports are keyed by customer_id, legacy
// ones by company_name. customer_id is canonical.
type CustomerKey string

const (
	CustomerKeyID      CustomerKey = "customer_id"
	CustomerKeyCompany CustomerKey = "company_name"
)

// SchemaError reports required columns absent from a source table after
// header normalization. It aborts the refresh for that table.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s: missing required column(s): %s", e.Table, strings.Join(e.Missing, ", "))
}

// CleanStats counts the values coerced to missing and the records dropped
// while cleaning one table. Callers assert on these to catch data quality
// regressions at the source.
type CleanStats struct {
	Table            string `json:"table"`
	Rows             int    `json:"rows"`
	Kept             int    `json:"kept"`
	CoercedValues    int    `json:"coerced_values"`
	DroppedNoDate    int    `json:"dropped_no_date"`
	DroppedDuplicate int    `json:"dropped_duplicate"`
}

// dayFirstLayouts are tried in order when parsing source dates. The
// sources use day-first convention: 31/01/2024 is January 31st.
var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02/01/2006 15:04:05",
	"2006-01-02",
}

// parseDayFirstDate parses a source date string with day-first
// convention. The ok result is false for empty or unparsable input.
func parseDayFirstDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeCatalog cleans the training catalog table: numeric coercion on
// the price and capacity columns, dedup by training_id keeping the first
// occurrence.
func NormalizeCatalog(t *domain.RawTable, logger *slog.Logger) ([]domain.TrainingCatalogEntry, CleanStats, error) {
	stats := CleanStats{Table: t.Name, Rows: len(t.Rows)}

	required := []string{"training_id", "training_name"}
	if missing := t.MissingColumns(required); len(missing) > 0 {
		return nil, stats, &SchemaError{Table: t.Name, Missing: missing}
	}

	idCol := t.ColumnIndex("training_id")
	nameCol := t.ColumnIndex("training_name")
	trainerCol := t.ColumnIndex("trainer")
	priceCol := t.ColumnIndex("price_per_pax")
	maxPaxCol := t.ColumnIndex("max_pax")
	durationCol := t.ColumnIndex("duration_days")
	categoryCol := t.ColumnIndex("category")

	seen := make(map[string]bool, len(t.Rows))
	entries := make([]domain.TrainingCatalogEntry, 0, len(t.Rows))

	for _, row := range t.Rows {
		id := t.Cell(row, idCol)
		if seen[id] {
			stats.DroppedDuplicate++
			continue
		}
		seen[id] = true

		entry := domain.TrainingCatalogEntry{
			TrainingID:   id,
			TrainingName: t.Cell(row, nameCol),
			Trainer:      t.Cell(row, trainerCol),
			PricePerPax:  coerceFloat(t.Cell(row, priceCol), &stats),
			MaxPax:       coerceFloat(t.Cell(row, maxPaxCol), &stats),
			DurationDays: coerceFloat(t.Cell(row, durationCol), &stats),
			Category:     t.Cell(row, categoryCol),
		}
		entries = append(entries, entry)
	}

	stats.Kept = len(entries)
	logCleanStats(logger, stats)
	return entries, stats, nil
}

// NormalizeCustomers cleans the customers table, deduplicating by the
// configured natural key.
func NormalizeCustomers(t *domain.RawTable, key CustomerKey, logger *slog.Logger) ([]domain.Customer, CleanStats, error) {
	stats := CleanStats{Table: t.Name, Rows: len(t.Rows)}

	if key == "" {
		key = CustomerKeyID
	}
	required := []string{"customer_id", "company_name"}
	if missing := t.MissingColumns(required); len(missing) > 0 {
		return nil, stats, &SchemaError{Table: t.Name, Missing: missing}
	}

	idCol := t.ColumnIndex("customer_id")
	companyCol := t.ColumnIndex("company_name")
	industryCol := t.ColumnIndex("industry")
	cityCol := t.ColumnIndex("city")
	contractCol := t.ColumnIndex("contract_start")

	seen := make(map[string]bool, len(t.Rows))
	customers := make([]domain.Customer, 0, len(t.Rows))

	for _, row := range t.Rows {
		c := domain.Customer{
			CustomerID:  t.Cell(row, idCol),
			CompanyName: t.Cell(row, companyCol),
			Industry:    t.Cell(row, industryCol),
			City:        t.Cell(row, cityCol),
		}

		dedupValue := c.CustomerID
		if key == CustomerKeyCompany {
			dedupValue = c.CompanyName
		}
		if seen[dedupValue] {
			stats.DroppedDuplicate++
			continue
		}
		seen[dedupValue] = true

		if contract, ok := parseDayFirstDate(t.Cell(row, contractCol)); ok {
			c.ContractStart = contract
			c.HasContractStart = true
		} else if t.Cell(row, contractCol) != "" {
			stats.CoercedValues++
		}

		customers = append(customers, c)
	}

	stats.Kept = len(customers)
	logCleanStats(logger, stats)
	return customers, stats, nil
}

// NormalizeOrders cleans the orders table: numeric coercion on qty and
// price, day-first date parsing, drop of records without a parsable
// order_date, dedup by order_id, and unconditional recomputation of
// total_revenue as qty * price_per_pax with missing-propagation.
func NormalizeOrders(t *domain.RawTable, logger *slog.Logger) ([]domain.Order, CleanStats, error) {
	stats := CleanStats{Table: t.Name, Rows: len(t.Rows)}

	required := []string{"order_id", "order_date", "training_name", "customer_id", "qty", "price_per_pax"}
	if missing := t.MissingColumns(required); len(missing) > 0 {
		return nil, stats, &SchemaError{Table: t.Name, Missing: missing}
	}

	idCol := t.ColumnIndex("order_id")
	dateCol := t.ColumnIndex("order_date")
	trainingCol := t.ColumnIndex("training_name")
	customerCol := t.ColumnIndex("customer_id")
	qtyCol := t.ColumnIndex("qty")
	priceCol := t.ColumnIndex("price_per_pax")

	seen := make(map[string]bool, len(t.Rows))
	orders := make([]domain.Order, 0, len(t.Rows))

	for _, row := range t.Rows {
		date, ok := parseDayFirstDate(t.Cell(row, dateCol))
		if !ok {
			// Partial orders are not retained with a null date.
			stats.DroppedNoDate++
			continue
		}

		id := t.Cell(row, idCol)
		if seen[id] {
			stats.DroppedDuplicate++
			continue
		}
		seen[id] = true

		qty := coerceInt(t.Cell(row, qtyCol), &stats)
		price := coerceFloat(t.Cell(row, priceCol), &stats)

		orders = append(orders, domain.Order{
			OrderID:      id,
			OrderDate:    date,
			TrainingName: t.Cell(row, trainingCol),
			CustomerID:   t.Cell(row, customerCol),
			Qty:          qty,
			PricePerPax:  price,
			TotalRevenue: qty.Float().Mul(price),
		})
	}

	stats.Kept = len(orders)
	logCleanStats(logger, stats)
	return orders, stats, nil
}

func coerceFloat(s string, stats *CleanStats) domain.Float {
	f := domain.ParseFloat(s)
	if !f.Valid && s != "" {
		stats.CoercedValues++
	}
	return f
}

func coerceInt(s string, stats *CleanStats) domain.Int {
	i := domain.ParseInt(s)
	if !i.Valid && s != "" {
		stats.CoercedValues++
	}
	return i
}

func logCleanStats(logger *slog.Logger, stats CleanStats) {
	if logger == nil {
		return
	}
	logger.Info("table cleaned",
		slog.String("table", stats.Table),
		slog.Int("rows", stats.Rows),
		slog.Int("kept", stats.Kept),
		slog.Int("coerced_values", stats.CoercedValues),
		slog.Int("dropped_no_date", stats.DroppedNoDate),
		slog.Int("dropped_duplicate", stats.DroppedDuplicate),
	)
}
