package domain

import (
	"fmt"
	"time"
)

// TrainingCatalogEntry is one row of the training catalog sheet,
// deduplicated by TrainingID.
type TrainingCatalogEntry struct {
	TrainingID   string `json:"training_id"`
	TrainingName string `json:"training_name"`
	Trainer      string `json:"trainer"`
	PricePerPax  Float  `json:"price_per_pax"`
	MaxPax       Float  `json:"max_pax"`
	DurationDays Float  `json:"duration_days"`
	Category     string `json:"category"`
}

// Customer is one row of the customers sheet. The dedup key is
// configurable (customer_id or company_name, see config.Sources).
type Customer struct {
	CustomerID    string    `json:"customer_id"`
	CompanyName   string    `json:"company_name"`
	Industry      string    `json:"industry"`
	City          string    `json:"city"`
	ContractStart time.Time `json:"contract_start"`
	// HasContractStart distinguishes an unparsable contract date from a
	// real zero time. Customers are never dropped for a bad date.
	HasContractStart bool `json:"has_contract_start"`
}

// Order is one cleaned row of the orders sheet, deduplicated by OrderID.
// TotalRevenue is always recomputed as Qty * PricePerPax; the revenue
// column in the source is treated as corrupt and ignored.
type Order struct {
	OrderID      string    `json:"order_id"`
	OrderDate    time.Time `json:"order_date"`
	TrainingName string    `json:"training_name"`
	CustomerID   string    `json:"customer_id"`
	Qty          Int       `json:"qty"`
	PricePerPax  Float     `json:"price_per_pax"`
	TotalRevenue Float     `json:"total_revenue"`
}

// EnrichedOrder is an Order left-joined with its catalog entry and
// customer, plus eagerly derived time features. It is rebuilt wholesale
// on every refresh and never mutated in place.
type EnrichedOrder struct {
	Order

	// Catalog enrichment; CatalogMatched is false when the training name
	// had no exact catalog match and the fields below are zero-valued.
	CatalogMatched bool   `json:"catalog_matched"`
	TrainingID     string `json:"training_id,omitempty"`
	Trainer        string `json:"trainer,omitempty"`
	CatalogPrice   Float  `json:"catalog_price"`
	MaxPax         Float  `json:"max_pax"`
	DurationDays   Float  `json:"duration_days"`
	Category       string `json:"category,omitempty"`

	// Customer enrichment.
	CustomerMatched bool   `json:"customer_matched"`
	CompanyName     string `json:"company_name,omitempty"`
	Industry        string `json:"industry,omitempty"`
	City            string `json:"city,omitempty"`

	// Time features derived from OrderDate.
	Year    int    `json:"year"`
	Month   string `json:"month"`   // YYYY-MM
	Quarter string `json:"quarter"` // YYYY-Q#
}

// MonthLabel formats t as a YYYY-MM bucket label.
func MonthLabel(t time.Time) string {
	return t.Format("2006-01")
}

// QuarterLabel formats t as a YYYY-Q# bucket label.
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}
